package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type JunkRuleRepository struct {
	DB *sql.DB
}

func NewJunkRuleRepository(db *sql.DB) *JunkRuleRepository {
	return &JunkRuleRepository{DB: db}
}

// Match busca uma regra pelo valor já normalizado. Sem regra: nil, nil.
func (r *JunkRuleRepository) Match(ctx context.Context, ruleType entity.JunkRuleType, value string) (*entity.JunkRule, error) {
	var (
		rule   entity.JunkRule
		t      string
		reason sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, rule_type, rule_value, reason, created_at
		FROM junk_rules
		WHERE rule_type = $1 AND rule_value = $2
		LIMIT 1
	`, string(ruleType), value).Scan(&rule.ID, &t, &rule.Value, &reason, &rule.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if isUndefinedTable(err) {
		return nil, entity.ErrStoreUnprovisioned
	}
	if err != nil {
		return nil, err
	}
	rule.Type = entity.JunkRuleType(t)
	rule.Reason = reason.String
	return &rule, nil
}

// Insert grava a regra; se ela já existir devolve ErrDuplicateJunkRule.
func (r *JunkRuleRepository) Insert(ctx context.Context, rule *entity.JunkRule) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO junk_rules (rule_type, rule_value, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (rule_type, rule_value) DO NOTHING
		RETURNING id, created_at
	`, string(rule.Type), rule.Value, nullString(rule.Reason)).Scan(&rule.ID, &rule.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return entity.ErrDuplicateJunkRule
	}
	if isUndefinedTable(err) {
		return entity.ErrStoreUnprovisioned
	}
	return err
}
