package service

import (
	"context"
	"encoding/json"

	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ProgressSink delivers a serialized event to the connections of one session.
type ProgressSink interface {
	SendToSession(sessionID string, payload []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	sink       ProgressSink
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	sink ProgressSink,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		sink:       sink,
		logger:     log,
	}
}

// Consume relays progress events to the websocket hub until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	defer msg.Ack()

	var progress entity.Progress
	if err := json.Unmarshal(msg.Payload, &progress); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to unmarshal progress event", map[string]interface{}{"error": err.Error()})
		return
	}
	if progress.SessionID == "" {
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"type": "progress",
		"data": progress,
	})
	if err != nil {
		return
	}
	cs.sink.SendToSession(progress.SessionID, data)
}
