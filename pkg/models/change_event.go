package models

import "time"

// ChangeEvent notifies downstream queue displays that the message
// configuration of a queue changed and should be re-fetched.
type ChangeEvent struct {
	EventType  string                 `json:"event_type"` // "rule_updated", "template_updated"
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id,omitempty"`
	QueueID    string                 `json:"queue_id"`
	Action     string                 `json:"action"` // "create", "update", "delete", "promote"
	Timestamp  time.Time              `json:"timestamp"`
	ChangedBy  string                 `json:"changed_by,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventTypeRuleUpdated     = "rule_updated"
	EventTypeTemplateUpdated = "template_updated"
)

const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionPromote = "promote"
)
