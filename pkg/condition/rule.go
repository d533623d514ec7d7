package condition

import "fmt"

// Rule is one template selection condition, scoped to a queue. Value is set
// for EQUAL/GREATER/LESS, MinValue and MaxValue for RANGE, none for the
// sentinel kinds.
type Rule struct {
	ID         string
	TemplateID string
	QueueID    string
	Kind       Kind
	Value      *int64
	MinValue   *int64
	MaxValue   *int64
}

// Classify builds a Rule from a raw operator token and optional numeric
// fields as they arrive from a form payload.
func Classify(id, templateID, queueID, operator string, value, minValue, maxValue *int64) (Rule, error) {
	kind, err := ParseKind(operator)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		ID:         id,
		TemplateID: templateID,
		QueueID:    queueID,
		Kind:       kind,
		Value:      value,
		MinValue:   minValue,
		MaxValue:   maxValue,
	}, nil
}

// Describe renders the operator and its bounds for display, e.g. "GREATER 5"
// or "RANGE 3-10".
func (r Rule) Describe() string {
	switch r.Kind {
	case KindEqual, KindGreater, KindLess:
		if r.Value == nil {
			return string(r.Kind)
		}
		return fmt.Sprintf("%s %d", r.Kind, *r.Value)
	case KindRange:
		if r.MinValue == nil || r.MaxValue == nil {
			return string(r.Kind)
		}
		return fmt.Sprintf("%s %d-%d", r.Kind, *r.MinValue, *r.MaxValue)
	default:
		return string(r.Kind)
	}
}
