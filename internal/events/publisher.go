package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// PublisherConfig selects the broker. With no brokers the publisher runs an
// in-process gochannel pub/sub.
type PublisherConfig struct {
	Brokers []string
	Topic   string
}

// WatermillEventPublisher publishes events through watermill
type WatermillEventPublisher struct {
	publisher message.Publisher
	// set only for the in-process pub/sub
	goChannel *gochannel.GoChannel
	topic     string
	logger    *slog.Logger
}

func NewWatermillEventPublisher(cfg PublisherConfig, logger *slog.Logger) (*WatermillEventPublisher, error) {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	wmLogger := watermill.NewSlogLogger(logger)

	p := &WatermillEventPublisher{topic: topic, logger: logger}
	if len(cfg.Brokers) > 0 {
		publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		p.publisher = publisher
		logger.Info("Event publisher connected to kafka", "brokers", cfg.Brokers, "topic", topic)
		return p, nil
	}

	p.goChannel = gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
	p.publisher = p.goChannel
	logger.Info("Event publisher using in-process pub/sub", "topic", topic)
	return p, nil
}

// Publish sends the event with op and seq metadata when it carries a ledger entry
func (p *WatermillEventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", event.Type)
	if entry, ok := event.Data.(LedgerEntryEvent); ok {
		msg.Metadata.Set("op", string(entry.Op))
		msg.Metadata.Set("seq", strconv.FormatUint(entry.Seq, 10))
	}

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	return nil
}

// Subscribe is only available for the in-process pub/sub
func (p *WatermillEventPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	if p.goChannel == nil {
		return nil, fmt.Errorf("subscribe is not supported by the kafka publisher")
	}
	return p.goChannel.Subscribe(ctx, p.topic)
}

func (p *WatermillEventPublisher) Topic() string {
	return p.topic
}

func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}
