package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type scanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const rotationColumns = `id, name, COALESCE(description, ''), is_launched, current_position, total_leads, created_at, updated_at`

const slotColumns = `id, round_robin_id, participant_id, name, COALESCE(discord_name, ''), COALESCE(discord_webhook, ''),
	lead_limit, leads_received, COALESCE(queue_position, -1), is_active, is_paused, COALESCE(pause_reason, ''),
	is_external, created_at`

func scanRotation(s scanner) (*entity.Rotation, error) {
	var r entity.Rotation
	err := s.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.IsLaunched,
		&r.CurrentPosition,
		&r.TotalLeads,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanSlot(s scanner) (*entity.Slot, error) {
	var (
		sl            entity.Slot
		participantID sql.NullInt64
	)
	err := s.Scan(
		&sl.ID,
		&sl.RotationID,
		&participantID,
		&sl.Name,
		&sl.DiscordName,
		&sl.DiscordWebhook,
		&sl.LeadLimit,
		&sl.LeadsReceived,
		&sl.QueuePosition,
		&sl.IsActive,
		&sl.IsPaused,
		&sl.PauseReason,
		&sl.IsExternal,
		&sl.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if participantID.Valid {
		sl.ParticipantID = &participantID.Int64
	}
	return &sl, nil
}

func listSlots(ctx context.Context, q querier, rotationID int64) ([]entity.Slot, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+slotColumns+`
		FROM rr_participants
		WHERE round_robin_id = $1 AND is_active = TRUE
		ORDER BY queue_position ASC, id ASC
	`, rotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []entity.Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// lockRotation bloqueia a linha da rotação até o fim da transação.
func lockRotation(ctx context.Context, q querier, id int64) (*entity.Rotation, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+rotationColumns+`
		FROM round_robins
		WHERE id = $1
		FOR UPDATE
	`, id)
	rot, err := scanRotation(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrRotationNotFound
	}
	return rot, err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
