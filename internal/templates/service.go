package templates

import (
	"context"
	"strings"

	"clinicq/pkg/condition"
	pkgerrors "clinicq/pkg/errors"
	"clinicq/pkg/metrics"
	"clinicq/pkg/models"
)

// ChangeNotifier publishes template change events to the queue displays.
// Satisfied by rules.ChangeEventProducer, nil disables publishing.
type ChangeNotifier interface {
	PublishTemplateEvent(ctx context.Context, action, templateID, queueID, changedBy string) error
}

type Service interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error)
	ListTemplates(ctx context.Context, queueID string) ([]Template, error)
	GetTemplate(ctx context.Context, id string) (*Template, error)
	UpdateTemplate(ctx context.Context, id string, req UpdateTemplateRequest) (*Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// TitlesByID returns template lookup data for conflict descriptions.
	TitlesByID(ctx context.Context, queueID string) (map[string]condition.TemplateInfo, error)
}

type service struct {
	repo     Repository
	notifier ChangeNotifier
}

type ServiceOption func(*service)

func WithChangeNotifier(notifier ChangeNotifier) ServiceOption {
	return func(s *service) {
		s.notifier = notifier
	}
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{repo: repo}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error) {
	if err := ValidateTemplate(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	tmpl := &Template{
		QueueID: req.QueueID,
		Title:   strings.TrimSpace(req.Title),
		Body:    req.Body,
		Enabled: enabled,
	}

	if err := s.repo.CreateTemplate(ctx, tmpl); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.TemplateMutationsTotal.WithLabelValues("create").Inc()
	s.publishEvent(ctx, models.ActionCreate, tmpl.ID, tmpl.QueueID)

	return tmpl, nil
}

func (s *service) ListTemplates(ctx context.Context, queueID string) ([]Template, error) {
	tmpls, err := s.repo.ListTemplates(ctx, queueID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return tmpls, nil
}

func (s *service) GetTemplate(ctx context.Context, id string) (*Template, error) {
	tmpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if tmpl == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return tmpl, nil
}

func (s *service) UpdateTemplate(ctx context.Context, id string, req UpdateTemplateRequest) (*Template, error) {
	if err := ValidateUpdateTemplate(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	tmpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if tmpl == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	if req.Title != nil {
		tmpl.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		tmpl.Body = *req.Body
	}
	if req.Enabled != nil {
		tmpl.Enabled = *req.Enabled
	}

	if err := s.repo.UpdateTemplate(ctx, tmpl); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.TemplateMutationsTotal.WithLabelValues("update").Inc()
	s.publishEvent(ctx, models.ActionUpdate, tmpl.ID, tmpl.QueueID)

	return tmpl, nil
}

func (s *service) DeleteTemplate(ctx context.Context, id string) error {
	tmpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if tmpl == nil {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.TemplateMutationsTotal.WithLabelValues("delete").Inc()
	s.publishEvent(ctx, models.ActionDelete, id, tmpl.QueueID)

	return nil
}

func (s *service) TitlesByID(ctx context.Context, queueID string) (map[string]condition.TemplateInfo, error) {
	tmpls, err := s.repo.ListTemplates(ctx, queueID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	titles := make(map[string]condition.TemplateInfo, len(tmpls))
	for _, t := range tmpls {
		titles[t.ID] = condition.TemplateInfo{
			ID:    t.ID,
			Title: t.Title,
		}
	}
	return titles, nil
}

func (s *service) publishEvent(ctx context.Context, action, templateID, queueID string) {
	if s.notifier != nil {
		_ = s.notifier.PublishTemplateEvent(ctx, action, templateID, queueID, getChangedBy(ctx))
	}
}

func getChangedBy(ctx context.Context) string {
	if userID := ctx.Value("user_id"); userID != nil {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return "system"
}
