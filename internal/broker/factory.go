package broker

import (
	"context"
	"fmt"

	"clinicq/internal/config"
	"clinicq/internal/logger"
	"clinicq/pkg/models"
)

func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case "kafka":
		return NewKafkaProducer(cfg.Kafka, log), nil
	case "":
		// Change events are optional, the console works without a broker.
		return NopProducer{}, nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}

type NopProducer struct{}

func (NopProducer) Publish(ctx context.Context, topic string, event models.ChangeEvent) error {
	return nil
}

func (NopProducer) Close() error { return nil }
