package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinicq/pkg/condition"
)

func i64(v int64) *int64 {
	return &v
}

func strp(s string) *string {
	return &s
}

func TestValidateCreateRule(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateRuleRequest
		wantError error
	}{
		{
			name: "valid equal rule",
			req:  CreateRuleRequest{TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(5)},
		},
		{
			name: "valid range rule",
			req:  CreateRuleRequest{TemplateID: "t1", QueueID: "q1", Operator: "RANGE", MinValue: i64(3), MaxValue: i64(10)},
		},
		{
			name: "valid default rule without operands",
			req:  CreateRuleRequest{TemplateID: "t1", QueueID: "q1", Operator: "DEFAULT"},
		},
		{
			name:      "missing template",
			req:       CreateRuleRequest{QueueID: "q1", Operator: "EQUAL", Value: i64(5)},
			wantError: errAny,
		},
		{
			name:      "missing queue",
			req:       CreateRuleRequest{TemplateID: "t1", Operator: "EQUAL", Value: i64(5)},
			wantError: errAny,
		},
		{
			name:      "unknown operator",
			req:       CreateRuleRequest{TemplateID: "t1", QueueID: "q1", Operator: "BETWEEN", Value: i64(5)},
			wantError: condition.ErrInvalidOperator,
		},
		{
			name:      "equal without value",
			req:       CreateRuleRequest{TemplateID: "t1", QueueID: "q1", Operator: "EQUAL"},
			wantError: condition.ErrIncompleteRule,
		},
		{
			name:      "equal with non-positive value",
			req:       CreateRuleRequest{TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(0)},
			wantError: condition.ErrIncompleteRule,
		},
		{
			name:      "range missing max",
			req:       CreateRuleRequest{TemplateID: "t1", QueueID: "q1", Operator: "RANGE", MinValue: i64(3)},
			wantError: condition.ErrIncompleteRule,
		},
		{
			name:      "range with min above max",
			req:       CreateRuleRequest{TemplateID: "t1", QueueID: "q1", Operator: "RANGE", MinValue: i64(10), MaxValue: i64(3)},
			wantError: condition.ErrIncompleteRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateRule(tt.req)
			switch tt.wantError {
			case nil:
				assert.NoError(t, err)
			case errAny:
				assert.Error(t, err)
			default:
				assert.ErrorIs(t, err, tt.wantError)
			}
		})
	}
}

func TestValidateUpdateRule(t *testing.T) {
	tests := []struct {
		name      string
		req       UpdateRuleRequest
		wantError bool
	}{
		{
			name: "empty update is allowed",
			req:  UpdateRuleRequest{},
		},
		{
			name: "enabled toggle only",
			req:  UpdateRuleRequest{Enabled: boolp(false)},
		},
		{
			name: "operator switch with operands",
			req:  UpdateRuleRequest{Operator: strp("GREATER"), Value: i64(7)},
		},
		{
			name:      "operands without operator",
			req:       UpdateRuleRequest{Value: i64(7)},
			wantError: true,
		},
		{
			name:      "operator switch missing operands",
			req:       UpdateRuleRequest{Operator: strp("RANGE"), MinValue: i64(3)},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdateRule(tt.req)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateConflictCheck(t *testing.T) {
	assert.NoError(t, ValidateConflictCheck(ConflictCheckRequest{Operator: "LESS", Value: i64(20)}))
	assert.ErrorIs(t, ValidateConflictCheck(ConflictCheckRequest{Operator: "LESS"}), condition.ErrIncompleteRule)
	assert.ErrorIs(t, ValidateConflictCheck(ConflictCheckRequest{Operator: "nope"}), condition.ErrInvalidOperator)
}

// errAny marks table entries that only assert an error happened.
var errAny = assert.AnError

func boolp(b bool) *bool {
	return &b
}
