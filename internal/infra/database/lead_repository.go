package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	var (
		l            entity.Lead
		status       string
		sourceURL    sql.NullString
		sourceDomain sql.NullString
		statusReason sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, round_robin_id, participant_id, name, phone, email, source_url, source_domain,
		       status, status_reason, received_at
		FROM leads
		WHERE id = $1
	`, id).Scan(
		&l.ID,
		&l.RotationID,
		&l.SlotID,
		&l.Name,
		&l.Phone,
		&l.Email,
		&sourceURL,
		&sourceDomain,
		&status,
		&statusReason,
		&l.ReceivedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	l.Status = entity.LeadStatus(status)
	l.SourceURL = sourceURL.String
	l.SourceDomain = sourceDomain.String
	l.StatusReason = statusReason.String

	rows, err := r.DB.QueryContext(ctx, `
		SELECT field_key, field_value
		FROM lead_additional_data
		WHERE lead_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f entity.AdditionalField
		if err := rows.Scan(&f.Key, &f.Value); err != nil {
			return nil, err
		}
		l.AdditionalData = append(l.AdditionalData, f)
	}
	return &l, rows.Err()
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id int64, status entity.LeadStatus, reason string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET status = $1, status_reason = $2
		WHERE id = $3
	`, string(status), nullString(reason), id)
	if err != nil {
		return err
	}
	return expectOneRow(res, entity.ErrLeadNotFound)
}
