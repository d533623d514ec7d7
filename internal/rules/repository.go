package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"clinicq/pkg/condition"
	pkgerrors "clinicq/pkg/errors"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateRule(ctx context.Context, rule *ConditionRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := `
		INSERT INTO condition_rules (id, template_id, queue_id, operator, value, min_value, max_value, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.TemplateID, rule.QueueID, rule.Operator,
		rule.Value, rule.MinValue, rule.MaxValue,
		rule.Enabled, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if conflictErr := asConflictError(err, rule); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

func asConflictError(err error, rule *ConditionRule) error {
	var detail string
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		detail = conflictDetail(pqErr.Constraint, rule)
	} else if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
		detail = conflictDetail("", rule)
	}
	if detail == "" {
		return nil
	}
	return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", detail)
}

func conflictDetail(constraint string, rule *ConditionRule) string {
	if strings.Contains(constraint, "default") {
		return fmt.Sprintf("queue '%s' already has a DEFAULT rule", rule.QueueID)
	}
	return fmt.Sprintf("template '%s' already has a rule", rule.TemplateID)
}

func (r *PostgresRepository) GetRule(ctx context.Context, id string) (*ConditionRule, error) {
	query := `
		SELECT id, template_id, queue_id, operator, value, min_value, max_value, enabled, created_at, updated_at
		FROM condition_rules
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var rule ConditionRule
	err := row.Scan(
		&rule.ID, &rule.TemplateID, &rule.QueueID, &rule.Operator,
		&rule.Value, &rule.MinValue, &rule.MaxValue,
		&rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return &rule, nil
}

func (r *PostgresRepository) ListRules(ctx context.Context, queueID string) ([]ConditionRule, error) {
	query := `
		SELECT id, template_id, queue_id, operator, value, min_value, max_value, enabled, created_at, updated_at
		FROM condition_rules
	`
	var args []interface{}
	if queueID != "" {
		query += ` WHERE queue_id = $1`
		args = append(args, queueID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var out []ConditionRule
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		var rule ConditionRule
		if err := rows.Scan(
			&rule.ID, &rule.TemplateID, &rule.QueueID, &rule.Operator,
			&rule.Value, &rule.MinValue, &rule.MaxValue,
			&rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		out = append(out, rule)
	}

	return out, nil
}

func (r *PostgresRepository) UpdateRule(ctx context.Context, rule *ConditionRule) error {
	rule.UpdatedAt = time.Now()

	query := `
		UPDATE condition_rules
		SET operator = $1, value = $2, min_value = $3, max_value = $4, enabled = $5, updated_at = $6
		WHERE id = $7
	`

	res, err := r.db.ExecContext(ctx, query,
		rule.Operator, rule.Value, rule.MinValue, rule.MaxValue,
		rule.Enabled, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		if conflictErr := asConflictError(err, rule); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rule not found")
	}

	return nil
}

func (r *PostgresRepository) DeleteRule(ctx context.Context, id string) error {
	query := `DELETE FROM condition_rules WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rule not found")
	}

	return nil
}

// PromoteDefault runs demote-then-promote in one transaction so the partial
// unique index on (queue_id) WHERE operator = 'DEFAULT' never sees two
// defaults at once.
func (r *PostgresRepository) PromoteDefault(ctx context.Context, id, queueID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	demote := `
		UPDATE condition_rules
		SET operator = $1, value = NULL, min_value = NULL, max_value = NULL, updated_at = $2
		WHERE queue_id = $3 AND operator = $4 AND id <> $5
	`
	if _, err := tx.ExecContext(ctx, demote,
		string(condition.KindUnconditioned), now, queueID, string(condition.KindDefault), id,
	); err != nil {
		return fmt.Errorf("failed to demote current default: %w", err)
	}

	promote := `
		UPDATE condition_rules
		SET operator = $1, value = NULL, min_value = NULL, max_value = NULL, updated_at = $2
		WHERE id = $3 AND queue_id = $4
	`
	res, err := tx.ExecContext(ctx, promote, string(condition.KindDefault), now, id, queueID)
	if err != nil {
		return fmt.Errorf("failed to promote rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rule not found")
	}

	return tx.Commit()
}

func (r *PostgresRepository) CountRules(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM condition_rules`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return count, nil
}
