package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu   sync.Mutex
	sent map[string][][]byte
}

func (s *recordingSink) SendToSession(sessionID string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = map[string][][]byte{}
	}
	s.sent[sessionID] = append(s.sent[sessionID], payload)
}

func (s *recordingSink) count(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent[sessionID])
}

func (s *recordingSink) first(sessionID string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[sessionID][0]
}

func TestConsumerService_RelaysProgress(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	consumer := NewConsumerService(pubSub, events.TopicProgress, sink, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	pub := events.NewWatermillPublisher(pubSub, events.TopicProgress, logger.NewNopLogger())
	pub.PublishProgress(ctx, entity.Progress{SessionID: "s1", Step: "aggregate", Message: "running"})

	require.Eventually(t, func() bool { return sink.count("s1") == 1 }, time.Second, 5*time.Millisecond)

	var envelope struct {
		Type string          `json:"type"`
		Data entity.Progress `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sink.first("s1"), &envelope))
	assert.Equal(t, "progress", envelope.Type)
	assert.Equal(t, "aggregate", envelope.Data.Step)
}

func TestConsumerService_KeepsOrderWhenPublishWaitsForAck(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	require.NoError(t, NewConsumerService(pubSub, events.TopicProgress, sink, logger.NewNopLogger()).Consume(ctx))

	pub := events.NewWatermillPublisher(pubSub, events.TopicProgress, logger.NewNopLogger())
	for i := 1; i <= 20; i++ {
		pub.PublishProgress(ctx, entity.Progress{SessionID: "s1", Step: "parse", Current: i, Total: 20})
	}
	pub.PublishProgress(ctx, entity.Progress{Step: "orphan"})

	require.Equal(t, 20, sink.count("s1"))
	sink.mu.Lock()
	defer sink.mu.Unlock()
	for i, raw := range sink.sent["s1"] {
		var envelope struct {
			Data entity.Progress `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &envelope))
		assert.Equal(t, i+1, envelope.Data.Current)
	}
}
