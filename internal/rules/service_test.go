package rules

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicq/pkg/condition"
	pkgerrors "clinicq/pkg/errors"
)

type fakeRepository struct {
	rules  map[string]*ConditionRule
	nextID int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rules: make(map[string]*ConditionRule)}
}

func (r *fakeRepository) CreateRule(ctx context.Context, rule *ConditionRule) error {
	if rule.ID == "" {
		r.nextID++
		rule.ID = fmt.Sprintf("r%d", r.nextID)
	}
	for _, existing := range r.rules {
		if existing.TemplateID == rule.TemplateID {
			return pkgerrors.ErrConflict.WithDetail("message", "template already has a rule")
		}
		if existing.QueueID == rule.QueueID &&
			existing.Operator == string(condition.KindDefault) &&
			rule.Operator == string(condition.KindDefault) {
			return pkgerrors.ErrConflict.WithDetail("message", "queue already has a DEFAULT rule")
		}
	}
	cp := *rule
	r.rules[rule.ID] = &cp
	return nil
}

func (r *fakeRepository) ListRules(ctx context.Context, queueID string) ([]ConditionRule, error) {
	var out []ConditionRule
	for i := 1; i <= r.nextID; i++ {
		rule, ok := r.rules[fmt.Sprintf("r%d", i)]
		if !ok {
			continue
		}
		if queueID == "" || rule.QueueID == queueID {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *fakeRepository) GetRule(ctx context.Context, id string) (*ConditionRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule not found")
	}
	cp := *rule
	return &cp, nil
}

func (r *fakeRepository) UpdateRule(ctx context.Context, rule *ConditionRule) error {
	if _, ok := r.rules[rule.ID]; !ok {
		return fmt.Errorf("rule not found")
	}
	cp := *rule
	r.rules[rule.ID] = &cp
	return nil
}

func (r *fakeRepository) DeleteRule(ctx context.Context, id string) error {
	if _, ok := r.rules[id]; !ok {
		return fmt.Errorf("rule not found")
	}
	delete(r.rules, id)
	return nil
}

func (r *fakeRepository) PromoteDefault(ctx context.Context, id, queueID string) error {
	target, ok := r.rules[id]
	if !ok || target.QueueID != queueID {
		return fmt.Errorf("rule not found")
	}
	for _, rule := range r.rules {
		if rule.QueueID == queueID && rule.Operator == string(condition.KindDefault) && rule.ID != id {
			rule.Operator = string(condition.KindUnconditioned)
			rule.Value, rule.MinValue, rule.MaxValue = nil, nil, nil
		}
	}
	target.Operator = string(condition.KindDefault)
	target.Value, target.MinValue, target.MaxValue = nil, nil, nil
	return nil
}

func (r *fakeRepository) CountRules(ctx context.Context) (int64, error) {
	return int64(len(r.rules)), nil
}

type fakeTemplates struct {
	titles map[string]condition.TemplateInfo
}

func (f *fakeTemplates) TitlesByID(ctx context.Context, queueID string) (map[string]condition.TemplateInfo, error) {
	return f.titles, nil
}

func testTemplates() *fakeTemplates {
	return &fakeTemplates{titles: map[string]condition.TemplateInfo{
		"t1": {ID: "t1", Title: "Almost there"},
		"t2": {ID: "t2", Title: "Please come in"},
		"t3": {ID: "t3", Title: "Long wait ahead"},
		"t4": {ID: "t4", Title: "Nearly your turn"},
	}}
}

func newTestService(repo Repository) Service {
	return NewService(repo, WithTemplates(testTemplates()))
}

func mustCreate(t *testing.T, svc Service, req CreateRuleRequest) *ConditionRule {
	t.Helper()
	rule, err := svc.CreateRule(context.Background(), req)
	require.NoError(t, err)
	return rule
}

func TestCreateRule(t *testing.T) {
	svc := newTestService(newFakeRepository())

	rule := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1",
		QueueID:    "q1",
		Operator:   "EQUAL",
		Value:      i64(5),
	})

	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, "EQUAL", rule.Operator)
	assert.True(t, rule.Enabled)
}

func TestCreateRule_RejectsUnknownTemplate(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		TemplateID: "missing",
		QueueID:    "q1",
		Operator:   "DEFAULT",
	})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCreateRule_RejectsOverlapWithoutAcknowledgement(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "GREATER", Value: i64(5),
	})

	_, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "RANGE", MinValue: i64(3), MaxValue: i64(10),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	descriptions, ok := appErr.Details["conflicts"].([]string)
	require.True(t, ok)
	require.Len(t, descriptions, 1)
	assert.Contains(t, descriptions[0], "Almost there")
	assert.Contains(t, descriptions[0], "Please come in")
}

func TestCreateRule_AcknowledgedConflictIsSaved(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "GREATER", Value: i64(5),
	})

	rule, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "RANGE", MinValue: i64(3), MaxValue: i64(10),
		AcknowledgeConflicts: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
}

func TestCreateRule_AcknowledgedPairDoesNotBlockLaterRules(t *testing.T) {
	svc := newTestService(newFakeRepository())

	// The queue already holds an acknowledged conflicting pair.
	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(5),
	})
	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "RANGE", MinValue: i64(1), MaxValue: i64(10),
		AcknowledgeConflicts: true,
	})

	// A rule disjoint from both saves without another acknowledgement.
	rule, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		TemplateID: "t3", QueueID: "q1", Operator: "EQUAL", Value: i64(100),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)

	// One that overlaps the new rule is still gated.
	_, err = svc.CreateRule(context.Background(), CreateRuleRequest{
		TemplateID: "t4", QueueID: "q1", Operator: "GREATER", Value: i64(50),
	})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestCreateRule_DisjointRulesDoNotConflict(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(5),
	})

	_, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "GREATER", Value: i64(5),
	})
	assert.NoError(t, err)
}

func TestCreateRule_OtherQueueNeverConflicts(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(5),
	})

	_, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		TemplateID: "t2", QueueID: "q2", Operator: "EQUAL", Value: i64(5),
	})
	assert.NoError(t, err)
}

func TestCreateRule_SecondDefaultRejectedByStore(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "DEFAULT",
	})

	// Duplicate DEFAULT surfaces as a conflict even when acknowledged, the
	// store's partial unique index has the last word.
	_, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "DEFAULT",
		AcknowledgeConflicts: true,
	})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestUpdateRule_ReplacesConditionWholesale(t *testing.T) {
	svc := newTestService(newFakeRepository())

	rule := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "RANGE", MinValue: i64(3), MaxValue: i64(10),
	})

	updated, err := svc.UpdateRule(context.Background(), rule.ID, UpdateRuleRequest{
		Operator: strp("EQUAL"),
		Value:    i64(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "EQUAL", updated.Operator)
	require.NotNil(t, updated.Value)
	assert.EqualValues(t, 4, *updated.Value)
	assert.Nil(t, updated.MinValue)
	assert.Nil(t, updated.MaxValue)
}

func TestUpdateRule_DoesNotConflictWithItself(t *testing.T) {
	svc := newTestService(newFakeRepository())

	rule := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(5),
	})

	// Same condition again: the stored version of the rule is excluded.
	_, err := svc.UpdateRule(context.Background(), rule.ID, UpdateRuleRequest{
		Operator: strp("EQUAL"),
		Value:    i64(5),
	})
	assert.NoError(t, err)
}

func TestUpdateRule_RejectsNewOverlap(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(10),
	})
	rule := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "EQUAL", Value: i64(20),
	})

	_, err := svc.UpdateRule(context.Background(), rule.ID, UpdateRuleRequest{
		Operator: strp("LESS"),
		Value:    i64(20),
	})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestUpdateRule_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.UpdateRule(context.Background(), "missing", UpdateRuleRequest{Enabled: boolp(false)})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDeleteRule(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	rule := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "DEFAULT",
	})

	require.NoError(t, svc.DeleteRule(context.Background(), rule.ID))

	_, err := svc.GetRule(context.Background(), rule.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPromoteDefault_DemotesPreviousDefault(t *testing.T) {
	svc := newTestService(newFakeRepository())

	oldDefault := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "DEFAULT",
	})
	other := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "EQUAL", Value: i64(5),
	})

	promoted, err := svc.PromoteDefault(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, string(condition.KindDefault), promoted.Operator)
	assert.Nil(t, promoted.Value)

	demoted, err := svc.GetRule(context.Background(), oldDefault.ID)
	require.NoError(t, err)
	assert.Equal(t, string(condition.KindUnconditioned), demoted.Operator)
}

func TestCheckQueueConflicts(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(10),
	})
	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "EQUAL", Value: i64(10),
		AcknowledgeConflicts: true,
	})
	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t3", QueueID: "q1", Operator: "LESS", Value: i64(20),
		AcknowledgeConflicts: true,
	})

	report, err := svc.CheckQueueConflicts(context.Background(), "q1")
	require.NoError(t, err)
	assert.True(t, report.HasConflicts())
	// Three mutually overlapping rules form three pairs.
	require.Len(t, report.Conflicts, 3)
	assert.Equal(t, [2]string{report.Conflicts[0].FirstRuleID, report.Conflicts[0].SecondRuleID}, [2]string{"r1", "r2"})
	assert.Equal(t, [2]string{report.Conflicts[1].FirstRuleID, report.Conflicts[1].SecondRuleID}, [2]string{"r1", "r3"})
	assert.Equal(t, [2]string{report.Conflicts[2].FirstRuleID, report.Conflicts[2].SecondRuleID}, [2]string{"r2", "r3"})
}

func TestCheckQueueConflicts_CleanQueue(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(5),
	})
	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "GREATER", Value: i64(5),
	})

	report, err := svc.CheckQueueConflicts(context.Background(), "q1")
	require.NoError(t, err)
	assert.False(t, report.HasConflicts())
	assert.Empty(t, report.Conflicts)
}

func TestCheckQueueConflicts_DisabledRulesIgnored(t *testing.T) {
	svc := newTestService(newFakeRepository())

	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(10),
	})
	mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t2", QueueID: "q1", Operator: "EQUAL", Value: i64(10),
		Enabled:              boolp(false),
		AcknowledgeConflicts: true,
	})

	report, err := svc.CheckQueueConflicts(context.Background(), "q1")
	require.NoError(t, err)
	assert.False(t, report.HasConflicts())
}

func TestCheckDraftConflicts(t *testing.T) {
	svc := newTestService(newFakeRepository())

	saved := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "GREATER", Value: i64(5),
	})

	report, err := svc.CheckDraftConflicts(context.Background(), "q1", ConflictCheckRequest{
		TemplateID: "t2",
		Operator:   "RANGE",
		MinValue:   i64(3),
		MaxValue:   i64(10),
	})
	require.NoError(t, err)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, saved.ID, report.Conflicts[0].FirstRuleID)
	assert.Equal(t, "draft", report.Conflicts[0].SecondRuleID)
	assert.Contains(t, report.Conflicts[0].Description, "Almost there (GREATER 5)")
	assert.Contains(t, report.Conflicts[0].Description, "Please come in (RANGE 3-10)")
}

func TestCheckDraftConflicts_ExcludesEditedRule(t *testing.T) {
	svc := newTestService(newFakeRepository())

	saved := mustCreate(t, svc, CreateRuleRequest{
		TemplateID: "t1", QueueID: "q1", Operator: "EQUAL", Value: i64(5),
	})

	report, err := svc.CheckDraftConflicts(context.Background(), "q1", ConflictCheckRequest{
		TemplateID:    "t1",
		Operator:      "EQUAL",
		Value:         i64(5),
		ExcludeRuleID: saved.ID,
	})
	require.NoError(t, err)
	assert.False(t, report.HasConflicts())
}

func TestCheckDraftConflicts_InvalidDraft(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.CheckDraftConflicts(context.Background(), "q1", ConflictCheckRequest{
		Operator: "EQUAL",
	})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestGetRuleVersions_RequiresVersioning(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.GetRuleVersions(context.Background(), "r1")
	assert.Error(t, err)
}
