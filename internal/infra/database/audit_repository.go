package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type AuditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

const auditSelect = `
	SELECT ll.id, ll.lead_id, ll.round_robin_id, ll.participant_id, ll.event_type, ll.status,
	       COALESCE(ll.message, ''), ll.details, COALESCE(ll.error_details, ''),
	       COALESCE(ll.source_url, ''), COALESCE(ll.ip_address, ''), COALESCE(ll.user_agent, ''),
	       ll.response_time_ms, ll.created_at,
	       COALESCE(rr.name, ''), COALESCE(p.name, ''), COALESCE(l.name, '')
	FROM lead_logs ll
	LEFT JOIN round_robins rr ON rr.id = ll.round_robin_id
	LEFT JOIN rr_participants p ON p.id = ll.participant_id
	LEFT JOIN leads l ON l.id = ll.lead_id
`

func (r *AuditRepository) Insert(ctx context.Context, ev *entity.AuditEvent) (int64, error) {
	var details *string
	if len(ev.Details) > 0 {
		raw, err := json.Marshal(ev.Details)
		if err != nil {
			return 0, fmt.Errorf("erro ao serializar details: %w", err)
		}
		s := string(raw)
		details = &s
	}

	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO lead_logs (lead_id, round_robin_id, participant_id, event_type, status, message,
		                       details, error_details, source_url, ip_address, user_agent, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`,
		ev.LeadID,
		ev.RotationID,
		ev.SlotID,
		string(ev.EventType),
		string(ev.Status),
		nullString(ev.Message),
		details,
		nullString(ev.ErrorDetails),
		nullString(ev.SourceURL),
		nullString(ev.IPAddress),
		nullString(ev.UserAgent),
		ev.ResponseTimeMs,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return 0, err
	}
	return ev.ID, nil
}

func (r *AuditRepository) ListByLead(ctx context.Context, leadID int64, limit int) ([]entity.AuditEvent, error) {
	return r.list(ctx, auditSelect+`
		WHERE ll.lead_id = $1
		ORDER BY ll.created_at DESC, ll.id DESC
		LIMIT $2
	`, leadID, limit)
}

func (r *AuditRepository) ListByRotation(ctx context.Context, rotationID int64, since time.Time, limit int) ([]entity.AuditEvent, error) {
	return r.list(ctx, auditSelect+`
		WHERE ll.round_robin_id = $1 AND ll.created_at >= $2
		ORDER BY ll.created_at DESC, ll.id DESC
		LIMIT $3
	`, rotationID, since, limit)
}

func (r *AuditRepository) ListFailures(ctx context.Context, limit int) ([]entity.AuditEvent, error) {
	return r.list(ctx, auditSelect+`
		WHERE ll.status = 'failure'
		ORDER BY ll.created_at DESC, ll.id DESC
		LIMIT $1
	`, limit)
}

func (r *AuditRepository) NotificationStats(ctx context.Context, rotationID *int64, since time.Time) (*entity.NotificationStats, error) {
	var (
		stats entity.NotificationStats
		avg   sql.NullFloat64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE event_type = 'discord_success'),
			COUNT(*) FILTER (WHERE event_type = 'discord_failure'),
			AVG(response_time_ms) FILTER (WHERE event_type = 'discord_success')
		FROM lead_logs
		WHERE event_type IN ('discord_success', 'discord_failure')
		  AND created_at >= $1
		  AND ($2::bigint IS NULL OR round_robin_id = $2)
	`, since, rotationID).Scan(&stats.Successful, &stats.Failed, &avg)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		v := avg.Float64
		stats.AvgResponseTime = &v
	}
	return &stats, nil
}

func (r *AuditRepository) list(ctx context.Context, query string, args ...any) ([]entity.AuditEvent, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []entity.AuditEvent{}
	for rows.Next() {
		ev, err := scanAuditEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func scanAuditEvent(s scanner) (*entity.AuditEvent, error) {
	var (
		ev                         entity.AuditEvent
		leadID, rotationID, slotID sql.NullInt64
		responseTime               sql.NullInt64
		eventType, status          string
		details                    []byte
	)
	err := s.Scan(
		&ev.ID,
		&leadID,
		&rotationID,
		&slotID,
		&eventType,
		&status,
		&ev.Message,
		&details,
		&ev.ErrorDetails,
		&ev.SourceURL,
		&ev.IPAddress,
		&ev.UserAgent,
		&responseTime,
		&ev.CreatedAt,
		&ev.RotationName,
		&ev.ParticipantName,
		&ev.LeadName,
	)
	if err != nil {
		return nil, err
	}

	ev.EventType = entity.AuditEventType(eventType)
	ev.Status = entity.AuditStatus(status)
	ev.LeadID = nullInt64Ptr(leadID)
	ev.RotationID = nullInt64Ptr(rotationID)
	ev.SlotID = nullInt64Ptr(slotID)
	ev.ResponseTimeMs = nullInt64Ptr(responseTime)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &ev.Details); err != nil {
			return nil, fmt.Errorf("details inválido no evento %d: %w", ev.ID, err)
		}
	}
	return &ev, nil
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
