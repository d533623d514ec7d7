package rules

import (
	"context"

	"clinicq/pkg/condition"
)

type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (*ConditionRule, error)
	ListRules(ctx context.Context, queueID string) ([]ConditionRule, error)
	GetRule(ctx context.Context, id string) (*ConditionRule, error)
	UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*ConditionRule, error)
	DeleteRule(ctx context.Context, id string) error
	PromoteDefault(ctx context.Context, id string) (*ConditionRule, error)

	CheckQueueConflicts(ctx context.Context, queueID string) (*ConflictReport, error)
	CheckDraftConflicts(ctx context.Context, queueID string, req ConflictCheckRequest) (*ConflictReport, error)

	GetRuleVersions(ctx context.Context, ruleID string) ([]RuleVersion, error)
	GetAuditLogs(ctx context.Context, ruleID *string, entityType string, limit int) ([]AuditLog, error)
}

type Repository interface {
	CreateRule(ctx context.Context, rule *ConditionRule) error
	ListRules(ctx context.Context, queueID string) ([]ConditionRule, error)
	GetRule(ctx context.Context, id string) (*ConditionRule, error)
	UpdateRule(ctx context.Context, rule *ConditionRule) error
	DeleteRule(ctx context.Context, id string) error

	// PromoteDefault atomically demotes the queue's current DEFAULT rule to
	// UNCONDITIONED and makes the given rule the DEFAULT.
	PromoteDefault(ctx context.Context, id, queueID string) error

	CountRules(ctx context.Context) (int64, error)
}

// TemplateLookup resolves template titles for conflict descriptions and
// checks that a rule's template actually exists on the queue.
type TemplateLookup interface {
	TitlesByID(ctx context.Context, queueID string) (map[string]condition.TemplateInfo, error)
}
