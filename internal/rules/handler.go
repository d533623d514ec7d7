package rules

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clinicq/internal/constants"
	"clinicq/internal/logger"
	"clinicq/pkg/errors"
)

type Handler struct {
	service Service
	logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		rules := v1.Group("/rules")
		{
			rules.GET("", h.ListRules)
			rules.POST("", h.CreateRule)
			rules.GET("/:id", h.GetRule)
			rules.PUT("/:id", h.UpdateRule)
			rules.DELETE("/:id", h.DeleteRule)
			rules.PUT("/:id/default", h.PromoteDefault)
			rules.GET("/:id/versions", h.GetRuleVersions)
			rules.GET("/:id/audit", h.GetRuleAuditLogs)
		}

		queues := v1.Group("/queues")
		{
			queues.GET("/:queueId/conflicts", h.GetQueueConflicts)
			queues.POST("/:queueId/conflicts/check", h.CheckDraftConflicts)
		}

		audit := v1.Group("/audit")
		{
			audit.GET("/logs", h.GetAuditLogs)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

// ListRules godoc
// @Summary      List condition rules
// @Description  Get all condition rules, optionally filtered by queue
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        queue_id  query     string  false  "Filter by queue ID"
// @Success      200       {array}   ConditionRule
// @Failure      500       {object}  errors.ErrorResponse
// @Router       /rules [get]
func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.service.ListRules(c.Request.Context(), c.Query("queue_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// CreateRule godoc
// @Summary      Create a condition rule
// @Description  Create a new condition rule. Conflicting rules are rejected with 409 unless acknowledge_conflicts is set.
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        rule  body      CreateRuleRequest  true  "Rule data"
// @Success      201   {object}  ConditionRule
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      409   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /rules [post]
func (h *Handler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// GetRule godoc
// @Summary      Get a condition rule by ID
// @Description  Get a specific condition rule by its ID
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  ConditionRule
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/{id} [get]
func (h *Handler) GetRule(c *gin.Context) {
	rule, err := h.service.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// UpdateRule godoc
// @Summary      Update a condition rule
// @Description  Update an existing condition rule. Conflicting changes are rejected with 409 unless acknowledge_conflicts is set.
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Rule ID"
// @Param        rule  body      UpdateRuleRequest  true  "Updated rule data"
// @Success      200   {object}  ConditionRule
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Failure      409   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /rules/{id} [put]
func (h *Handler) UpdateRule(c *gin.Context) {
	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	rule, err := h.service.UpdateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule godoc
// @Summary      Delete a condition rule
// @Description  Delete a condition rule by ID
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id   path  string  true  "Rule ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/{id} [delete]
func (h *Handler) DeleteRule(c *gin.Context) {
	if err := h.service.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PromoteDefault godoc
// @Summary      Make a rule its queue's default
// @Description  Promote the rule to DEFAULT; the queue's current default rule is demoted to UNCONDITIONED
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  ConditionRule
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/{id}/default [put]
func (h *Handler) PromoteDefault(c *gin.Context) {
	rule, err := h.service.PromoteDefault(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// GetQueueConflicts godoc
// @Summary      Get a queue's conflict badge set
// @Description  Get conflicting rule pairs for a queue, with operator-readable descriptions
// @Tags         conflicts
// @Accept       json
// @Produce      json
// @Param        queueId  path      string  true  "Queue ID"
// @Success      200      {object}  ConflictReport
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /queues/{queueId}/conflicts [get]
func (h *Handler) GetQueueConflicts(c *gin.Context) {
	report, err := h.service.CheckQueueConflicts(c.Request.Context(), c.Param("queueId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CheckDraftConflicts godoc
// @Summary      Dry-run a draft rule against a queue
// @Description  Check an unsaved condition against the queue's rules without persisting anything
// @Tags         conflicts
// @Accept       json
// @Produce      json
// @Param        queueId  path      string                true  "Queue ID"
// @Param        draft    body      ConflictCheckRequest  true  "Draft condition"
// @Success      200      {object}  ConflictReport
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /queues/{queueId}/conflicts/check [post]
func (h *Handler) CheckDraftConflicts(c *gin.Context) {
	var req ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	report, err := h.service.CheckDraftConflicts(c.Request.Context(), c.Param("queueId"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetRuleVersions godoc
// @Summary      Get rule version history
// @Description  Get version history for a specific condition rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {array}   RuleVersion
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/{id}/versions [get]
func (h *Handler) GetRuleVersions(c *gin.Context) {
	versions, err := h.service.GetRuleVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

// GetRuleAuditLogs godoc
// @Summary      Get audit logs for a rule
// @Description  Get audit logs for a specific condition rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id     path      string  true   "Rule ID"
// @Param        limit  query     int     false  "Maximum number of logs to return (1-1000)" default(100)
// @Success      200    {array}   AuditLog
// @Failure      404    {object}  errors.ErrorResponse
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /rules/{id}/audit [get]
func (h *Handler) GetRuleAuditLogs(c *gin.Context) {
	id := c.Param("id")
	limit := parseLimit(c.Query("limit"))

	logs, err := h.service.GetAuditLogs(c.Request.Context(), &id, constants.EntityTypeRule, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetAuditLogs godoc
// @Summary      Get audit logs
// @Description  Get audit logs with optional filtering by rule ID and entity type
// @Tags         audit
// @Accept       json
// @Produce      json
// @Param        rule_id      query     string  false  "Filter by rule ID"
// @Param        entity_type  query     string  false  "Filter by entity type (condition_rule, message_template)"
// @Param        limit        query     int     false  "Maximum number of logs to return (1-1000)" default(100)
// @Success      200          {array}   AuditLog
// @Failure      500          {object}  errors.ErrorResponse
// @Router       /audit/logs [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	ruleID := c.Query("rule_id")
	entityType := c.Query("entity_type")
	limit := parseLimit(c.Query("limit"))

	var ruleIDPtr *string
	if ruleID != "" {
		ruleIDPtr = &ruleID
	}

	logs, err := h.service.GetAuditLogs(c.Request.Context(), ruleIDPtr, entityType, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func parseLimit(limitStr string) int {
	if limitStr == "" {
		return constants.DefaultLimit
	}
	parsed, err := strconv.Atoi(limitStr)
	if err != nil || parsed <= 0 || parsed > constants.MaxLimit {
		return constants.DefaultLimit
	}
	return parsed
}
