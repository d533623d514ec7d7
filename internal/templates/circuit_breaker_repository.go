package templates

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"clinicq/internal/config"
	"clinicq/pkg/circuitbreaker"
)

// CircuitBreakerRepository shields the console from a degraded MongoDB:
// rule editing keeps working while template lookups fail fast.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{
			repo: repo,
			cb:   nil,
		}
	}

	cbConfig := circuitbreaker.DefaultConfig("mongo-templates")
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 && cfg.MinRequests > 0 {
		cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
			if counts.Requests < uint32(cfg.MinRequests) {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		}
	}

	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(cbConfig),
	}
}

func (r *CircuitBreakerRepository) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	result, err := r.cb.ExecuteWithContext(ctx, fn)
	r.cb.RecordRequest(err == nil)

	if err != nil {
		if r.cb.IsOpen() {
			return nil, fmt.Errorf("circuit breaker is open for mongo-templates: %w", err)
		}
		return nil, err
	}

	return result, nil
}

func (r *CircuitBreakerRepository) CreateTemplate(ctx context.Context, tmpl *Template) error {
	if r.cb == nil {
		return r.repo.CreateTemplate(ctx, tmpl)
	}

	_, err := r.execute(ctx, func() (interface{}, error) {
		return nil, r.repo.CreateTemplate(ctx, tmpl)
	})
	return err
}

func (r *CircuitBreakerRepository) GetTemplate(ctx context.Context, id string) (*Template, error) {
	if r.cb == nil {
		return r.repo.GetTemplate(ctx, id)
	}

	result, err := r.execute(ctx, func() (interface{}, error) {
		return r.repo.GetTemplate(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	tmpl, ok := result.(*Template)
	if !ok {
		return nil, fmt.Errorf("repository returned invalid result type")
	}
	return tmpl, nil
}

func (r *CircuitBreakerRepository) ListTemplates(ctx context.Context, queueID string) ([]Template, error) {
	if r.cb == nil {
		return r.repo.ListTemplates(ctx, queueID)
	}

	result, err := r.execute(ctx, func() (interface{}, error) {
		return r.repo.ListTemplates(ctx, queueID)
	})
	if err != nil {
		return nil, err
	}

	tmpls, ok := result.([]Template)
	if !ok {
		return nil, fmt.Errorf("repository returned invalid result type")
	}
	return tmpls, nil
}

func (r *CircuitBreakerRepository) UpdateTemplate(ctx context.Context, tmpl *Template) error {
	if r.cb == nil {
		return r.repo.UpdateTemplate(ctx, tmpl)
	}

	_, err := r.execute(ctx, func() (interface{}, error) {
		return nil, r.repo.UpdateTemplate(ctx, tmpl)
	})
	return err
}

func (r *CircuitBreakerRepository) DeleteTemplate(ctx context.Context, id string) error {
	if r.cb == nil {
		return r.repo.DeleteTemplate(ctx, id)
	}

	_, err := r.execute(ctx, func() (interface{}, error) {
		return nil, r.repo.DeleteTemplate(ctx, id)
	})
	return err
}

func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}

func (r *CircuitBreakerRepository) IsOpen() bool {
	if r.cb == nil {
		return false
	}
	return r.cb.IsOpen()
}
