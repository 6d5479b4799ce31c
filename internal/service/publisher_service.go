package service

import (
	"context"
	"encoding/json"
	"time"

	"stewardship-be/internal/pkg/logger"
	"stewardship-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// GivingEventsTopic is the in-process topic the giving engine publishes
// to and the consumer subscribes on.
const GivingEventsTopic = "giving.events"

// IEventPublisher is implemented by the watermill publisher below and by
// the NATS bridge in pkg/nats.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type eventEnvelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type publisherService struct {
	publisher message.Publisher
	topic     string
	log       logger.ILogger
}

func NewPublisherService(publisher message.Publisher, topic string, log logger.ILogger) IEventPublisher {
	return &publisherService{
		publisher: publisher,
		topic:     topic,
		log:       log,
	}
}

func (s *publisherService) Publish(_ context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return err
	}
	envelope, err := json.Marshal(eventEnvelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       data,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), envelope)
	if err := s.publisher.Publish(s.topic, msg); err != nil {
		s.log.Error("PublisherService", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// fanoutPublisher forwards each event to every registered publisher.
// Delivery is best-effort: one failing sink does not block the others.
type fanoutPublisher struct {
	sinks []IEventPublisher
	log   logger.ILogger
}

func NewFanoutPublisher(log logger.ILogger, sinks ...IEventPublisher) IEventPublisher {
	return &fanoutPublisher{sinks: sinks, log: log}
}

func (f *fanoutPublisher) Publish(ctx context.Context, event events.Event) error {
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			f.log.Warn("FanoutPublisher", "Event sink failed", map[string]interface{}{
				"event_type": event.EventType(),
				"error":      err.Error(),
			})
		}
	}
	return nil
}
