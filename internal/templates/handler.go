package templates

import (
	"net/http"

	"github.com/gin-gonic/gin"

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
		tmpls := v1.Group("/templates")
		{
			tmpls.GET("", h.ListTemplates)
			tmpls.POST("", h.CreateTemplate)
			tmpls.GET("/:id", h.GetTemplate)
			tmpls.PUT("/:id", h.UpdateTemplate)
			tmpls.DELETE("/:id", h.DeleteTemplate)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

// ListTemplates godoc
// @Summary      List message templates
// @Description  Get all message templates, optionally filtered by queue
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        queue_id  query     string  false  "Filter by queue ID"
// @Success      200       {array}   Template
// @Failure      500       {object}  errors.ErrorResponse
// @Router       /templates [get]
func (h *Handler) ListTemplates(c *gin.Context) {
	tmpls, err := h.service.ListTemplates(c.Request.Context(), c.Query("queue_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tmpls)
}

// CreateTemplate godoc
// @Summary      Create a message template
// @Description  Create a new message template for a queue
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        template  body      CreateTemplateRequest  true  "Template data"
// @Success      201       {object}  Template
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      500       {object}  errors.ErrorResponse
// @Router       /templates [post]
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	tmpl, err := h.service.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tmpl)
}

// GetTemplate godoc
// @Summary      Get a message template by ID
// @Description  Get a specific message template by its ID
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  Template
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /templates/{id} [get]
func (h *Handler) GetTemplate(c *gin.Context) {
	tmpl, err := h.service.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// UpdateTemplate godoc
// @Summary      Update a message template
// @Description  Update an existing message template by ID
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id        path      string                 true  "Template ID"
// @Param        template  body      UpdateTemplateRequest  true  "Updated template data"
// @Success      200       {object}  Template
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      404       {object}  errors.ErrorResponse
// @Failure      500       {object}  errors.ErrorResponse
// @Router       /templates/{id} [put]
func (h *Handler) UpdateTemplate(c *gin.Context) {
	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	tmpl, err := h.service.UpdateTemplate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// DeleteTemplate godoc
// @Summary      Delete a message template
// @Description  Delete a message template by ID
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id   path  string  true  "Template ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /templates/{id} [delete]
func (h *Handler) DeleteTemplate(c *gin.Context) {
	if err := h.service.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
