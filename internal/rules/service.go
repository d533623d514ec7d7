package rules

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"clinicq/internal/constants"
	"clinicq/pkg/condition"
	pkgerrors "clinicq/pkg/errors"
	"clinicq/pkg/metrics"
	"clinicq/pkg/models"
)

type service struct {
	repo           Repository
	versioningRepo VersioningRepository
	templates      TemplateLookup
	cache          *ConflictCache
	events         *ChangeEventProducer
	auditEnabled   bool
}

type ServiceOption func(*service)

func WithVersioning(versioningRepo VersioningRepository) ServiceOption {
	return func(s *service) {
		s.versioningRepo = versioningRepo
		s.auditEnabled = true
	}
}

func WithTemplates(templates TemplateLookup) ServiceOption {
	return func(s *service) {
		s.templates = templates
	}
}

func WithConflictCache(cache *ConflictCache) ServiceOption {
	return func(s *service) {
		s.cache = cache
	}
}

func WithChangeEvents(events *ChangeEventProducer) ServiceOption {
	return func(s *service) {
		s.events = events
	}
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:         repo,
		auditEnabled: false,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.versioningRepo != nil {
		s.auditEnabled = true
	}

	return s
}

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest) (*ConditionRule, error) {
	if err := ValidateCreateRule(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	if err := s.checkTemplateExists(ctx, req.QueueID, req.TemplateID); err != nil {
		return nil, err
	}

	rule := &ConditionRule{
		TemplateID: req.TemplateID,
		QueueID:    req.QueueID,
		Operator:   req.Operator,
		Value:      req.Value,
		MinValue:   req.MinValue,
		MaxValue:   req.MaxValue,
		Enabled:    getEnabledValue(req.Enabled),
	}

	if !req.AcknowledgeConflicts {
		if err := s.rejectConflicting(ctx, rule, ""); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		if pkgerrors.IsConflict(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.RuleMutationsTotal.WithLabelValues("create").Inc()
	s.updateActiveRules(ctx)
	s.createVersionAndAudit(ctx, rule, models.ActionCreate, nil)
	s.invalidateCache(ctx, rule.QueueID)
	s.publishRuleEvent(ctx, models.ActionCreate, rule.ID, rule.QueueID)

	return s.copyRule(rule), nil
}

func (s *service) ListRules(ctx context.Context, queueID string) ([]ConditionRule, error) {
	domainRules, err := s.repo.ListRules(ctx, queueID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	out := make([]ConditionRule, len(domainRules))
	copy(out, domainRules)
	return out, nil
}

func (s *service) GetRule(ctx context.Context, id string) (*ConditionRule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	if rule == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return s.copyRule(rule), nil
}

func (s *service) UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*ConditionRule, error) {
	if err := ValidateUpdateRule(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	if rule == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	oldValue, _ := s.ruleToMap(rule)
	applyRuleUpdate(rule, req)

	if !req.AcknowledgeConflicts && rule.Enabled {
		if err := s.rejectConflicting(ctx, rule, rule.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		if pkgerrors.IsConflict(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.RuleMutationsTotal.WithLabelValues("update").Inc()
	s.createVersionAndAudit(ctx, rule, models.ActionUpdate, oldValue)
	s.invalidateCache(ctx, rule.QueueID)
	s.publishRuleEvent(ctx, models.ActionUpdate, rule.ID, rule.QueueID)

	return s.copyRule(rule), nil
}

func (s *service) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return s.handleNotFoundError(err, id)
	}
	if rule == nil {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	oldValue, _ := s.ruleToMap(rule)

	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.RuleMutationsTotal.WithLabelValues("delete").Inc()
	s.updateActiveRules(ctx)

	if s.auditEnabled && s.versioningRepo != nil {
		auditLog := s.buildAuditLog(id, models.ActionDelete, oldValue, nil, getChangedBy(ctx))
		_ = s.versioningRepo.CreateAuditLog(ctx, auditLog)
	}

	s.invalidateCache(ctx, rule.QueueID)
	s.publishRuleEvent(ctx, models.ActionDelete, id, rule.QueueID)
	return nil
}

// PromoteDefault makes the rule its queue's DEFAULT; the queue's previous
// DEFAULT rule, if any, is demoted to UNCONDITIONED in the same transaction.
func (s *service) PromoteDefault(ctx context.Context, id string) (*ConditionRule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	if rule == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	oldValue, _ := s.ruleToMap(rule)

	if err := s.repo.PromoteDefault(ctx, id, rule.QueueID); err != nil {
		return nil, s.handleNotFoundError(err, id)
	}

	promoted, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.RuleMutationsTotal.WithLabelValues("promote").Inc()
	s.createVersionAndAudit(ctx, promoted, models.ActionPromote, oldValue)
	s.invalidateCache(ctx, promoted.QueueID)
	s.publishRuleEvent(ctx, models.ActionPromote, promoted.ID, promoted.QueueID)

	return s.copyRule(promoted), nil
}

// CheckQueueConflicts computes the warning badge set for one queue. Results
// are served from the cache when fresh.
func (s *service) CheckQueueConflicts(ctx context.Context, queueID string) (*ConflictReport, error) {
	if queueID == "" {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "queue id is required")
	}

	if s.cache != nil {
		if report, ok := s.cache.Get(ctx, queueID); ok {
			return report, nil
		}
	}

	start := time.Now()

	stored, err := s.repo.ListRules(ctx, queueID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	report, err := s.buildReport(ctx, queueID, s.toConditionRules(stored))
	if err != nil {
		return nil, err
	}

	result := "clean"
	if report.HasConflicts() {
		result = "conflict"
	}
	metrics.ConflictChecksTotal.WithLabelValues(result).Inc()
	metrics.ObserveConflictCheckDuration(time.Since(start), result)

	if s.cache != nil {
		_ = s.cache.Set(ctx, report)
	}

	return report, nil
}

// CheckDraftConflicts dry-runs an unsaved condition against the queue's
// stored rules. Nothing is persisted and the cache is not touched.
func (s *service) CheckDraftConflicts(ctx context.Context, queueID string, req ConflictCheckRequest) (*ConflictReport, error) {
	if queueID == "" {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "queue id is required")
	}
	if err := ValidateConflictCheck(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	start := time.Now()

	stored, err := s.repo.ListRules(ctx, queueID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	candidates := make([]condition.Rule, 0, len(stored)+1)
	for _, r := range stored {
		if r.ID == req.ExcludeRuleID || !r.Enabled {
			continue
		}
		candidates = append(candidates, toConditionRule(r))
	}

	draft, err := condition.Classify("draft", req.TemplateID, queueID, req.Operator, req.Value, req.MinValue, req.MaxValue)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}
	candidates = append(candidates, draft)

	report, err := s.buildReport(ctx, queueID, candidates)
	if err != nil {
		return nil, err
	}

	// Only pairs involving the draft matter to the editor.
	filtered := report.Conflicts[:0]
	for _, c := range report.Conflicts {
		if c.FirstRuleID == "draft" || c.SecondRuleID == "draft" {
			filtered = append(filtered, c)
		}
	}
	report.Conflicts = filtered

	result := "clean"
	if report.HasConflicts() {
		result = "conflict"
	}
	metrics.ConflictChecksTotal.WithLabelValues(result).Inc()
	metrics.ObserveConflictCheckDuration(time.Since(start), result)

	return report, nil
}

func (s *service) GetRuleVersions(ctx context.Context, ruleID string) ([]RuleVersion, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "versioning not enabled")
	}
	versions, err := s.versioningRepo.GetVersions(ctx, ruleID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return versions, nil
}

func (s *service) GetAuditLogs(ctx context.Context, ruleID *string, entityType string, limit int) ([]AuditLog, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "audit logging not enabled")
	}
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}
	logs, err := s.versioningRepo.GetAuditLogs(ctx, ruleID, entityType, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return logs, nil
}

// rejectConflicting blocks the save when the rule overlaps an existing rule
// on the same queue and the operator has not acknowledged the dialog.
func (s *service) rejectConflicting(ctx context.Context, rule *ConditionRule, excludeID string) error {
	stored, err := s.repo.ListRules(ctx, rule.QueueID)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	candidates := make([]condition.Rule, 0, len(stored)+1)
	for _, r := range stored {
		if r.ID == excludeID || !r.Enabled {
			continue
		}
		candidates = append(candidates, toConditionRule(r))
	}
	candidate := toConditionRule(*rule)
	candidates = append(candidates, candidate)

	report, err := s.buildReport(ctx, rule.QueueID, candidates)
	if err != nil {
		return err
	}

	// Conflicts between stored rules were acknowledged when those rules were
	// saved; only pairs involving this rule can block it. A new rule has no
	// ID yet, which still distinguishes it from every stored rule.
	involved := report.Conflicts[:0]
	for _, c := range report.Conflicts {
		if c.FirstRuleID == candidate.ID || c.SecondRuleID == candidate.ID {
			involved = append(involved, c)
		}
	}
	report.Conflicts = involved

	if report.HasConflicts() {
		return pkgerrors.ErrConflict.
			WithDetail("message", "rule conflicts with existing rules").
			WithDetail("conflicts", report.Descriptions())
	}

	return nil
}

// buildReport runs overlap and duplicate-default detection and renders
// operator-facing descriptions.
func (s *service) buildReport(ctx context.Context, queueID string, candidates []condition.Rule) (*ConflictReport, error) {
	overlaps := condition.DetectOverlaps(candidates)
	duplicates := condition.DetectDuplicateDefaults(candidates)

	titles := map[string]condition.TemplateInfo{}
	if s.templates != nil && (len(overlaps) > 0 || len(duplicates) > 0) {
		lookup, err := s.templates.TitlesByID(ctx, queueID)
		if err == nil {
			titles = lookup
		}
		// A failed lookup degrades to placeholder titles.
	}

	report := &ConflictReport{QueueID: queueID}

	descriptions := condition.DescribeOverlaps(overlaps, titles)
	for i, o := range overlaps {
		report.Conflicts = append(report.Conflicts, ConflictPair{
			FirstRuleID:      o.First.ID,
			SecondRuleID:     o.Second.ID,
			FirstTemplateID:  o.First.TemplateID,
			SecondTemplateID: o.Second.TemplateID,
			Description:      descriptions[i],
		})
	}

	dupDescriptions := condition.DescribeOverlaps(duplicates, titles)
	for i, o := range duplicates {
		report.Conflicts = append(report.Conflicts, ConflictPair{
			FirstRuleID:       o.First.ID,
			SecondRuleID:      o.Second.ID,
			FirstTemplateID:   o.First.TemplateID,
			SecondTemplateID:  o.Second.TemplateID,
			Description:       dupDescriptions[i],
			DuplicateDefaults: true,
		})
	}

	return report, nil
}

func (s *service) checkTemplateExists(ctx context.Context, queueID, templateID string) error {
	if s.templates == nil {
		return nil
	}

	titles, err := s.templates.TitlesByID(ctx, queueID)
	if err != nil {
		// Template store being down must not block rule editing.
		return nil
	}
	if _, ok := titles[templateID]; !ok {
		return pkgerrors.ErrValidation.WithDetail("message", "template does not exist on this queue").WithDetail("template_id", templateID)
	}
	return nil
}

func (s *service) toConditionRules(stored []ConditionRule) []condition.Rule {
	out := make([]condition.Rule, 0, len(stored))
	for _, r := range stored {
		if !r.Enabled {
			continue
		}
		out = append(out, toConditionRule(r))
	}
	return out
}

func toConditionRule(r ConditionRule) condition.Rule {
	return condition.Rule{
		ID:         r.ID,
		TemplateID: r.TemplateID,
		QueueID:    r.QueueID,
		Kind:       condition.Kind(strings.ToUpper(r.Operator)),
		Value:      r.Value,
		MinValue:   r.MinValue,
		MaxValue:   r.MaxValue,
	}
}

func applyRuleUpdate(rule *ConditionRule, req UpdateRuleRequest) {
	if req.Operator != nil {
		rule.Operator = *req.Operator
		rule.Value = req.Value
		rule.MinValue = req.MinValue
		rule.MaxValue = req.MaxValue
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
}

func (s *service) handleNotFoundError(err error, id string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "not found") {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
}

func (s *service) createVersionAndAudit(ctx context.Context, rule *ConditionRule, action string, oldValue map[string]interface{}) {
	if !s.auditEnabled || s.versioningRepo == nil {
		return
	}

	ruleJSON, err := json.Marshal(rule)
	if err != nil {
		return
	}

	version := s.buildVersion(ctx, rule, string(ruleJSON))
	if err := s.versioningRepo.CreateVersion(ctx, version); err != nil {
		return
	}

	newValue, err := s.ruleToMap(rule)
	if err != nil {
		return
	}

	auditLog := s.buildAuditLog(rule.ID, action, oldValue, newValue, getChangedBy(ctx))
	_ = s.versioningRepo.CreateAuditLog(ctx, auditLog)
}

func (s *service) buildVersion(ctx context.Context, rule *ConditionRule, ruleJSON string) *RuleVersion {
	version := 1
	if s.versioningRepo != nil {
		if nextVersion, err := s.versioningRepo.GetNextVersion(ctx, rule.ID); err == nil {
			version = nextVersion
		}
	}

	return &RuleVersion{
		RuleID:     rule.ID,
		EntityType: constants.EntityTypeRule,
		RuleData:   ruleJSON,
		Version:    version,
		ChangedBy:  getChangedBy(ctx),
	}
}

func (s *service) buildAuditLog(ruleID, action string, oldValue, newValue map[string]interface{}, changedBy string) *AuditLog {
	return &AuditLog{
		RuleID:     &ruleID,
		EntityType: constants.EntityTypeRule,
		Action:     action,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  changedBy,
	}
}

func (s *service) ruleToMap(rule *ConditionRule) (map[string]interface{}, error) {
	ruleData, err := json.Marshal(rule)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(ruleData, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) publishRuleEvent(ctx context.Context, action, ruleID, queueID string) {
	if s.events != nil {
		_ = s.events.PublishRuleEvent(ctx, action, ruleID, queueID, getChangedBy(ctx))
	}
}

func (s *service) invalidateCache(ctx context.Context, queueID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, queueID)
	}
}

func (s *service) updateActiveRules(ctx context.Context) {
	if count, err := s.repo.CountRules(ctx); err == nil {
		metrics.SetActiveRules(int(count))
	}
}

func (s *service) copyRule(rule *ConditionRule) *ConditionRule {
	out := *rule
	return &out
}

func getEnabledValue(reqEnabled *bool) bool {
	if reqEnabled == nil {
		return true
	}
	return *reqEnabled
}

func getChangedBy(ctx context.Context) string {
	if userID := ctx.Value("user_id"); userID != nil {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return "system"
}
