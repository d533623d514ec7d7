package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicq/internal/rules"
	"clinicq/internal/templates"
	"clinicq/pkg/condition"
	pkgerrors "clinicq/pkg/errors"
)

func setupRulesService(t *testing.T, infra *TestInfra) (rules.Service, templates.Service) {
	t.Helper()

	templateService := templates.NewService(templates.NewRepository(infra.MongoDB))

	opts := []rules.ServiceOption{
		rules.WithVersioning(rules.NewVersioningRepository(infra.PostgresDB)),
		rules.WithTemplates(templateService),
	}
	if infra.RedisClient != nil {
		opts = append(opts, rules.WithConflictCache(rules.NewConflictCache(infra.RedisClient, time.Minute)))
	}

	return rules.NewService(rules.NewRepository(infra.PostgresDB), opts...), templateService
}

func seedTemplate(t *testing.T, svc templates.Service, queueID, title string) string {
	t.Helper()

	tmpl, err := svc.CreateTemplate(context.Background(), createTemplateRequest(queueID, title, "You are number {position} in the queue."))
	require.NoError(t, err)
	return tmpl.ID
}

func TestRulesService_CreateRule(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)

	svc, templateSvc := setupRulesService(t, infra)
	ctx := context.Background()

	tmplID := seedTemplate(t, templateSvc, "queue-1", "Almost there")

	req := createRuleRequest(tmplID, "queue-1", "GREATER")
	req.Value = i64(5)

	rule, err := svc.CreateRule(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, tmplID, rule.TemplateID)
	assert.True(t, rule.Enabled)
}

func TestRulesService_CreateRule_UnknownTemplate(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)

	svc, _ := setupRulesService(t, infra)

	req := createRuleRequest("missing-template", "queue-1", "DEFAULT")

	_, err := svc.CreateRule(context.Background(), req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestRulesService_ConflictRejectionAndAcknowledge(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)

	svc, templateSvc := setupRulesService(t, infra)
	ctx := context.Background()

	firstID := seedTemplate(t, templateSvc, "queue-1", "Almost there")
	secondID := seedTemplate(t, templateSvc, "queue-1", "Please come in")

	first := createRuleRequest(firstID, "queue-1", "GREATER")
	first.Value = i64(5)
	_, err := svc.CreateRule(ctx, first)
	require.NoError(t, err)

	second := createRuleRequest(secondID, "queue-1", "RANGE")
	second.MinValue = i64(3)
	second.MaxValue = i64(10)

	_, err = svc.CreateRule(ctx, second)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	descriptions, ok := appErr.Details["conflicts"].([]string)
	require.True(t, ok)
	require.Len(t, descriptions, 1)
	assert.Contains(t, descriptions[0], "Almost there")
	assert.Contains(t, descriptions[0], "Please come in")

	second.AcknowledgeConflicts = true
	rule, err := svc.CreateRule(ctx, second)
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
}

func TestRulesService_CheckQueueConflicts_UsesCache(t *testing.T) {
	infra := SetupTestInfra(t)

	svc, templateSvc := setupRulesService(t, infra)
	ctx := context.Background()

	firstID := seedTemplate(t, templateSvc, "queue-1", "Almost there")
	secondID := seedTemplate(t, templateSvc, "queue-1", "Please come in")

	first := createRuleRequest(firstID, "queue-1", "EQUAL")
	first.Value = i64(5)
	_, err := svc.CreateRule(ctx, first)
	require.NoError(t, err)

	second := createRuleRequest(secondID, "queue-1", "LESS")
	second.Value = i64(10)
	second.AcknowledgeConflicts = true
	_, err = svc.CreateRule(ctx, second)
	require.NoError(t, err)

	report, err := svc.CheckQueueConflicts(ctx, "queue-1")
	require.NoError(t, err)
	require.Len(t, report.Conflicts, 1)
	assert.Contains(t, report.Conflicts[0].Description, "EQUAL 5")
	assert.Contains(t, report.Conflicts[0].Description, "LESS 10")

	exists, err := infra.RedisClient.Exists(ctx, "conflicts:queue-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	cached, err := svc.CheckQueueConflicts(ctx, "queue-1")
	require.NoError(t, err)
	assert.Equal(t, report.Conflicts, cached.Conflicts)
}

func TestRulesService_MutationInvalidatesConflictCache(t *testing.T) {
	infra := SetupTestInfra(t)

	svc, templateSvc := setupRulesService(t, infra)
	ctx := context.Background()

	tmplID := seedTemplate(t, templateSvc, "queue-1", "Almost there")

	req := createRuleRequest(tmplID, "queue-1", "EQUAL")
	req.Value = i64(5)
	rule, err := svc.CreateRule(ctx, req)
	require.NoError(t, err)

	_, err = svc.CheckQueueConflicts(ctx, "queue-1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRule(ctx, rule.ID))

	exists, err := infra.RedisClient.Exists(ctx, "conflicts:queue-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestRulesService_CheckDraftConflicts(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)

	svc, templateSvc := setupRulesService(t, infra)
	ctx := context.Background()

	firstID := seedTemplate(t, templateSvc, "queue-1", "Almost there")
	secondID := seedTemplate(t, templateSvc, "queue-1", "Please come in")

	existing := createRuleRequest(firstID, "queue-1", "GREATER")
	existing.Value = i64(5)
	_, err := svc.CreateRule(ctx, existing)
	require.NoError(t, err)

	draft := rules.ConflictCheckRequest{
		TemplateID: secondID,
		Operator:   string(condition.KindRange),
		MinValue:   i64(3),
		MaxValue:   i64(10),
	}

	report, err := svc.CheckDraftConflicts(ctx, "queue-1", draft)
	require.NoError(t, err)
	require.Len(t, report.Conflicts, 1)
	assert.Contains(t, report.Conflicts[0].Description, "Almost there")
}

func TestRulesService_PromoteDefault(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)

	svc, templateSvc := setupRulesService(t, infra)
	ctx := context.Background()

	firstID := seedTemplate(t, templateSvc, "queue-1", "Almost there")
	secondID := seedTemplate(t, templateSvc, "queue-1", "Please come in")

	first := createRuleRequest(firstID, "queue-1", "DEFAULT")
	oldDefault, err := svc.CreateRule(ctx, first)
	require.NoError(t, err)

	second := createRuleRequest(secondID, "queue-1", "EQUAL")
	second.Value = i64(5)
	candidate, err := svc.CreateRule(ctx, second)
	require.NoError(t, err)

	promoted, err := svc.PromoteDefault(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, "DEFAULT", promoted.Operator)

	demoted, err := svc.GetRule(ctx, oldDefault.ID)
	require.NoError(t, err)
	assert.Equal(t, "UNCONDITIONED", demoted.Operator)
}

func TestRulesService_VersionHistoryAndAudit(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)

	svc, templateSvc := setupRulesService(t, infra)
	ctx := context.Background()

	tmplID := seedTemplate(t, templateSvc, "queue-1", "Almost there")

	req := createRuleRequest(tmplID, "queue-1", "EQUAL")
	req.Value = i64(5)
	rule, err := svc.CreateRule(ctx, req)
	require.NoError(t, err)

	update := rules.UpdateRuleRequest{
		Operator: strPtr("GREATER"),
		Value:    i64(8),
	}
	_, err = svc.UpdateRule(ctx, rule.ID, update)
	require.NoError(t, err)

	versions, err := svc.GetRuleVersions(ctx, rule.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, 1, versions[1].Version)

	logs, err := svc.GetAuditLogs(ctx, &rule.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "update", logs[0].Action)
	assert.Equal(t, "create", logs[1].Action)
}

func strPtr(s string) *string {
	return &s
}
