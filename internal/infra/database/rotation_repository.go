package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type RotationRepository struct {
	DB *sql.DB
}

func NewRotationRepository(db *sql.DB) *RotationRepository {
	return &RotationRepository{DB: db}
}

func (r *RotationRepository) FindByID(ctx context.Context, id int64) (*entity.Rotation, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+rotationColumns+`
		FROM round_robins
		WHERE id = $1
	`, id)
	rot, err := scanRotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRotationNotFound
	}
	return rot, err
}

// FindBySource acha a rotação lançada dona de uma origem ativa com url igual
// a sourceURL ou domínio igual a domain. URL exata tem prioridade.
func (r *RotationRepository) FindBySource(ctx context.Context, sourceURL, domain string) (*entity.Rotation, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT rr.id, rr.name, COALESCE(rr.description, ''), rr.is_launched, rr.current_position,
		       rr.total_leads, rr.created_at, rr.updated_at
		FROM round_robins rr
		JOIN lead_sources ls ON ls.round_robin_id = rr.id
		WHERE rr.is_launched = TRUE
		  AND ls.is_active = TRUE
		  AND (ls.url = $1 OR ls.domain = $2)
		ORDER BY (ls.url = $1) DESC, rr.id ASC
		LIMIT 1
	`, sourceURL, domain)
	rot, err := scanRotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRotationNotFound
	}
	return rot, err
}

func (r *RotationRepository) Launch(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE round_robins
		SET is_launched = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, entity.ErrRotationNotFound)
}

// ResetOutOfRangePointers volta current_position para 0 nas rotações cujo
// ponteiro passou do fim da fila ativa.
func (r *RotationRepository) ResetOutOfRangePointers(ctx context.Context) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		UPDATE round_robins rr
		SET current_position = 0, updated_at = NOW()
		WHERE rr.current_position > 0
		  AND rr.current_position >= (
		      SELECT COUNT(*) FROM rr_participants p
		      WHERE p.round_robin_id = rr.id AND p.is_active = TRUE
		  )
		RETURNING rr.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
