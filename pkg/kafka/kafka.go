package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const CatalogTopic = "catalog-events"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"KAFKA_TOPIC" default:"catalog-events"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

type EventType string

const (
	EventAdded    EventType = "added"
	EventRemoved  EventType = "removed"
	EventBorrowed EventType = "borrowed"
	EventReturned EventType = "returned"
)

type CatalogEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Library   string    `json:"library"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
}
