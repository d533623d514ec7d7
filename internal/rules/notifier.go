package rules

import (
	"context"
	"time"

	"clinicq/internal/broker"
	"clinicq/internal/constants"
	"clinicq/internal/logger"
	"clinicq/pkg/metrics"
	"clinicq/pkg/models"
	"clinicq/pkg/retry"
)

// ChangeEventProducer tells queue displays that a queue's message
// configuration changed. Publishing is best effort: a failed event is
// logged and counted, it never rolls back the saved change.
type ChangeEventProducer struct {
	producer broker.Producer
	topic    string
	policy   retry.Policy
	logger   logger.Logger
}

func NewChangeEventProducer(producer broker.Producer, topic string, policy retry.Policy, log logger.Logger) *ChangeEventProducer {
	return &ChangeEventProducer{
		producer: producer,
		topic:    topic,
		policy:   policy,
		logger:   log,
	}
}

func (p *ChangeEventProducer) PublishRuleEvent(ctx context.Context, action, ruleID, queueID, changedBy string) error {
	event := models.ChangeEvent{
		EventType:  models.EventTypeRuleUpdated,
		EntityType: constants.EntityTypeRule,
		EntityID:   ruleID,
		QueueID:    queueID,
		Action:     action,
		Timestamp:  time.Now(),
		ChangedBy:  changedBy,
	}
	return p.publishEvent(ctx, event)
}

func (p *ChangeEventProducer) PublishTemplateEvent(ctx context.Context, action, templateID, queueID, changedBy string) error {
	event := models.ChangeEvent{
		EventType:  models.EventTypeTemplateUpdated,
		EntityType: constants.EntityTypeTemplate,
		EntityID:   templateID,
		QueueID:    queueID,
		Action:     action,
		Timestamp:  time.Now(),
		ChangedBy:  changedBy,
	}
	return p.publishEvent(ctx, event)
}

func (p *ChangeEventProducer) publishEvent(ctx context.Context, event models.ChangeEvent) error {
	if p.producer == nil || p.topic == "" {
		return nil
	}

	err := retry.Retry(ctx, p.policy, func() error {
		return p.producer.Publish(ctx, p.topic, event)
	})

	if err != nil {
		metrics.ChangeEventsTotal.WithLabelValues("failure").Inc()
		p.logger.ErrorwCtx(ctx, "Failed to publish change event",
			"error", err,
			"event_type", event.EventType,
			"queue_id", event.QueueID,
			"action", event.Action,
		)
		return err
	}

	metrics.ChangeEventsTotal.WithLabelValues("success").Inc()
	return nil
}
