package rules

import (
	"fmt"

	"clinicq/pkg/condition"
)

func ValidateCreateRule(req CreateRuleRequest) error {
	if req.TemplateID == "" {
		return fmt.Errorf("template_id is required")
	}
	if req.QueueID == "" {
		return fmt.Errorf("queue_id is required")
	}
	return validateCondition(req.Operator, req.Value, req.MinValue, req.MaxValue)
}

func ValidateUpdateRule(req UpdateRuleRequest) error {
	if req.Operator == nil {
		if req.Value != nil || req.MinValue != nil || req.MaxValue != nil {
			return fmt.Errorf("operator is required when condition values change")
		}
		return nil
	}
	return validateCondition(*req.Operator, req.Value, req.MinValue, req.MaxValue)
}

func ValidateConflictCheck(req ConflictCheckRequest) error {
	return validateCondition(req.Operator, req.Value, req.MinValue, req.MaxValue)
}

// validateCondition classifies the operator and resolves its interval, so an
// invalid token or missing operand fails the same way everywhere.
func validateCondition(operator string, value, minValue, maxValue *int64) error {
	rule, err := condition.Classify("", "", "", operator, value, minValue, maxValue)
	if err != nil {
		return err
	}

	if _, err := condition.Resolve(rule); err != nil {
		return err
	}

	return nil
}
