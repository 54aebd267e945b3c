package events

import (
	"context"
	"encoding/json"

	"github.com/Astemirdum/book-catalog/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

type Publisher interface {
	Publish(ctx context.Context, ev kafka.CatalogEvent) error
	Close() error
}

func NewPublisher(producer sarama.SyncProducer, topic string) Publisher {
	if topic == "" {
		topic = kafka.CatalogTopic
	}
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
	}
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func (p *kafkaPublisher) Publish(_ context.Context, ev kafka.CatalogEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.ISBN),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err = p.producer.SendMessage(msg); err != nil {
		return errors.Wrap(err, "kafka send")
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, kafka.CatalogEvent) error { return nil }

func (Nop) Close() error { return nil }
