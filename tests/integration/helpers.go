package integration

import (
	"time"

	"clinicq/internal/rules"
	"clinicq/internal/templates"
)

const (
	containerStartupTimeout = 60
	timestampDelay          = 10 * time.Millisecond
)

func i64(v int64) *int64 {
	return &v
}

func createTestRule(templateID, queueID, operator string) *rules.ConditionRule {
	return &rules.ConditionRule{
		TemplateID: templateID,
		QueueID:    queueID,
		Operator:   operator,
		Enabled:    true,
	}
}

func createEqualRule(templateID, queueID string, value int64) *rules.ConditionRule {
	rule := createTestRule(templateID, queueID, "EQUAL")
	rule.Value = i64(value)
	return rule
}

func createRangeRule(templateID, queueID string, min, max int64) *rules.ConditionRule {
	rule := createTestRule(templateID, queueID, "RANGE")
	rule.MinValue = i64(min)
	rule.MaxValue = i64(max)
	return rule
}

func createRuleRequest(templateID, queueID, operator string) rules.CreateRuleRequest {
	return rules.CreateRuleRequest{
		TemplateID: templateID,
		QueueID:    queueID,
		Operator:   operator,
	}
}

func createTemplateRequest(queueID, title, body string) templates.CreateTemplateRequest {
	return templates.CreateTemplateRequest{
		QueueID: queueID,
		Title:   title,
		Body:    body,
	}
}
