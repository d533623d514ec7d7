package rules

import "time"

// ConditionRule binds one message template to a queue-length condition.
// Operand columns mirror pkg/condition: Value for EQUAL/GREATER/LESS,
// MinValue and MaxValue for RANGE, none for DEFAULT/UNCONDITIONED.
type ConditionRule struct {
	ID         string    `json:"id" db:"id"`
	TemplateID string    `json:"template_id" db:"template_id"`
	QueueID    string    `json:"queue_id" db:"queue_id"`
	Operator   string    `json:"operator" db:"operator"`
	Value      *int64    `json:"value,omitempty" db:"value"`
	MinValue   *int64    `json:"min_value,omitempty" db:"min_value"`
	MaxValue   *int64    `json:"max_value,omitempty" db:"max_value"`
	Enabled    bool      `json:"enabled" db:"enabled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type CreateRuleRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
	QueueID    string `json:"queue_id" binding:"required"`
	Operator   string `json:"operator" binding:"required"`
	Value      *int64 `json:"value"`
	MinValue   *int64 `json:"min_value"`
	MaxValue   *int64 `json:"max_value"`
	Enabled    *bool  `json:"enabled"`

	// AcknowledgeConflicts lets the operator save anyway after the console
	// showed the conflict dialog.
	AcknowledgeConflicts bool `json:"acknowledge_conflicts"`
}

// UpdateRuleRequest replaces the condition as a whole when Operator is set:
// operand fields are taken from the request, not merged with stored ones, so
// a switch from RANGE to EQUAL cannot leave stale bounds behind.
type UpdateRuleRequest struct {
	Operator *string `json:"operator"`
	Value    *int64  `json:"value"`
	MinValue *int64  `json:"min_value"`
	MaxValue *int64  `json:"max_value"`
	Enabled  *bool   `json:"enabled"`

	AcknowledgeConflicts bool `json:"acknowledge_conflicts"`
}

// ConflictCheckRequest is a dry run for the rule editor: the draft condition
// is checked against the queue's saved rules without persisting anything.
// ExcludeRuleID skips the rule being edited so it does not conflict with its
// own previous version.
type ConflictCheckRequest struct {
	TemplateID    string `json:"template_id"`
	Operator      string `json:"operator" binding:"required"`
	Value         *int64 `json:"value"`
	MinValue      *int64 `json:"min_value"`
	MaxValue      *int64 `json:"max_value"`
	ExcludeRuleID string `json:"exclude_rule_id"`
}

type ConflictPair struct {
	FirstRuleID       string `json:"first_rule_id"`
	SecondRuleID      string `json:"second_rule_id"`
	FirstTemplateID   string `json:"first_template_id"`
	SecondTemplateID  string `json:"second_template_id"`
	Description       string `json:"description"`
	DuplicateDefaults bool   `json:"duplicate_defaults,omitempty"`
}

type ConflictReport struct {
	QueueID   string         `json:"queue_id"`
	Conflicts []ConflictPair `json:"conflicts"`
}

// HasConflicts reports whether the queue needs a warning badge.
func (r *ConflictReport) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

func (r *ConflictReport) Descriptions() []string {
	if len(r.Conflicts) == 0 {
		return nil
	}
	descriptions := make([]string, len(r.Conflicts))
	for i, c := range r.Conflicts {
		descriptions[i] = c.Description
	}
	return descriptions
}
