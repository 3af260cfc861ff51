package events

import (
	"context"
	"encoding/json"
	"sync"

	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const TopicProgress = "context.progress"

// ProgressPublisher reports the steps of a long-running action.
type ProgressPublisher interface {
	PublishProgress(ctx context.Context, progress entity.Progress)
}

// WatermillPublisher puts progress events on the in-process bus.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    logger.ILogger
}

func NewWatermillPublisher(publisher message.Publisher, topic string, log logger.ILogger) *WatermillPublisher {
	if topic == "" {
		topic = TopicProgress
	}
	return &WatermillPublisher{publisher: publisher, topic: topic, logger: log}
}

// PublishProgress never fails the caller; a lost progress event is only logged.
func (p *WatermillPublisher) PublishProgress(ctx context.Context, progress entity.Progress) {
	if p.publisher == nil {
		return
	}

	payload, err := json.Marshal(progress)
	if err != nil {
		p.logger.Error("Events", "Failed to marshal progress event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error("Events", "Failed to publish progress event", map[string]interface{}{
			"error": err.Error(),
			"step":  progress.Step,
		})
	}
}

type NopPublisher struct{}

func (NopPublisher) PublishProgress(context.Context, entity.Progress) {}

// RecordingPublisher keeps every event in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []entity.Progress
}

func (r *RecordingPublisher) PublishProgress(_ context.Context, progress entity.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, progress)
}

func (r *RecordingPublisher) Events() []entity.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Progress, len(r.events))
	copy(out, r.events)
	return out
}

func (r *RecordingPublisher) Steps() []string {
	events := r.Events()
	steps := make([]string, 0, len(events))
	for _, e := range events {
		steps = append(steps, e.Step)
	}
	return steps
}
