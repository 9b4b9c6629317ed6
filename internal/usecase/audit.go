package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	defaultLogLimit      = 100
	maxLogLimit          = 1000
	defaultStatsDays     = 7
	defaultRotationHours = 168
)

// AuditLogger grava a trilha de auditoria. Falhas de gravação nunca sobem
// para o chamador: são logadas e Record devolve nil.
type AuditLogger struct {
	repo AuditRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewAuditLogger(repo AuditRepository, log *slog.Logger) *AuditLogger {
	if log == nil {
		log = slog.Default()
	}
	return &AuditLogger{repo: repo, log: log, now: time.Now}
}

// Record grava ev e devolve o id, ou nil se a gravação falhou.
func (a *AuditLogger) Record(ctx context.Context, ev entity.AuditEvent) *int64 {
	if a == nil || a.repo == nil {
		return nil
	}
	if ev.Status == "" {
		ev.Status = entity.AuditInfo
	}
	id, err := a.repo.Insert(ctx, &ev)
	if err != nil {
		a.log.ErrorContext(ctx, "❌ erro ao gravar evento de auditoria",
			"event_type", ev.EventType, "error", err)
		return nil
	}

	a.log.Log(ctx, auditLevel(ev.Status), "📝 "+ev.Message,
		"event_type", ev.EventType,
		"event_id", id,
		"lead_id", optional(ev.LeadID),
		"round_robin_id", optional(ev.RotationID),
		"participant_id", optional(ev.SlotID),
	)
	return &id
}

func optional(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func auditLevel(status entity.AuditStatus) slog.Level {
	switch status {
	case entity.AuditFailure, entity.AuditWarning:
		return slog.LevelWarn
	case entity.AuditSuccess:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func (a *AuditLogger) WebhookReceived(ctx context.Context, rotationID int64, sourceURL string, meta RequestMeta, details map[string]any) *int64 {
	return a.Record(ctx, entity.AuditEvent{
		RotationID: entity.Int64Ptr(rotationID),
		EventType:  entity.EventWebhookReceived,
		Status:     entity.AuditInfo,
		Message:    "Webhook received",
		Details:    details,
		SourceURL:  sourceURL,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
}

func (a *AuditLogger) ValidationFailed(ctx context.Context, rotationID int64, sourceURL string, fields []ValidationError) *int64 {
	return a.Record(ctx, entity.AuditEvent{
		RotationID: entity.Int64Ptr(rotationID),
		EventType:  entity.EventValidationFailed,
		Status:     entity.AuditFailure,
		Message:    "Lead payload failed validation",
		Details:    map[string]any{"fields": fields},
		SourceURL:  sourceURL,
	})
}

func (a *AuditLogger) LeadAssigned(ctx context.Context, lead entity.Lead, slot entity.Slot, position int) *int64 {
	return a.Record(ctx, entity.AuditEvent{
		LeadID:     entity.Int64Ptr(lead.ID),
		RotationID: entity.Int64Ptr(lead.RotationID),
		SlotID:     entity.Int64Ptr(slot.ID),
		EventType:  entity.EventLeadAssigned,
		Status:     entity.AuditSuccess,
		Message:    "Lead assigned to " + slot.Name,
		Details: map[string]any{
			"position": position,
			"status":   lead.Status,
		},
		SourceURL: lead.SourceURL,
	})
}

func (a *AuditLogger) NotificationSkipped(ctx context.Context, lead entity.Lead, slot entity.Slot) *int64 {
	return a.Record(ctx, entity.AuditEvent{
		LeadID:     entity.Int64Ptr(lead.ID),
		RotationID: entity.Int64Ptr(lead.RotationID),
		SlotID:     entity.Int64Ptr(slot.ID),
		EventType:  entity.EventJunkSkipped,
		Status:     entity.AuditInfo,
		Message:    "Notification skipped: lead classified as junk",
		Details:    map[string]any{"reason": lead.StatusReason},
	})
}

func (a *AuditLogger) NotificationQueued(ctx context.Context, lead entity.Lead, slot entity.Slot, messageID string) *int64 {
	return a.Record(ctx, entity.AuditEvent{
		LeadID:     entity.Int64Ptr(lead.ID),
		RotationID: entity.Int64Ptr(lead.RotationID),
		SlotID:     entity.Int64Ptr(slot.ID),
		EventType:  entity.EventNotificationQueued,
		Status:     entity.AuditInfo,
		Message:    "Notification queued",
		Details:    map[string]any{"message_id": messageID},
	})
}

func (a *AuditLogger) DiscordAttempt(ctx context.Context, lead entity.Lead, slot entity.Slot) *int64 {
	return a.Record(ctx, entity.AuditEvent{
		LeadID:     entity.Int64Ptr(lead.ID),
		RotationID: entity.Int64Ptr(lead.RotationID),
		SlotID:     entity.Int64Ptr(slot.ID),
		EventType:  entity.EventDiscordAttempt,
		Status:     entity.AuditInfo,
		Message:    "Sending Discord notification to " + slot.DisplayName(),
	})
}

func (a *AuditLogger) DiscordSuccess(ctx context.Context, lead entity.Lead, slot entity.Slot, elapsed time.Duration) *int64 {
	return a.Record(ctx, entity.AuditEvent{
		LeadID:         entity.Int64Ptr(lead.ID),
		RotationID:     entity.Int64Ptr(lead.RotationID),
		SlotID:         entity.Int64Ptr(slot.ID),
		EventType:      entity.EventDiscordSuccess,
		Status:         entity.AuditSuccess,
		Message:        "Discord notification delivered",
		ResponseTimeMs: entity.Int64Ptr(elapsed.Milliseconds()),
	})
}

func (a *AuditLogger) DiscordFailure(ctx context.Context, lead entity.Lead, slot entity.Slot, status entity.AuditStatus, reason string, elapsed *time.Duration) *int64 {
	ev := entity.AuditEvent{
		LeadID:       entity.Int64Ptr(lead.ID),
		RotationID:   entity.Int64Ptr(lead.RotationID),
		SlotID:       entity.Int64Ptr(slot.ID),
		EventType:    entity.EventDiscordFailure,
		Status:       status,
		Message:      "Discord notification failed",
		ErrorDetails: reason,
	}
	if elapsed != nil {
		ev.ResponseTimeMs = entity.Int64Ptr(elapsed.Milliseconds())
	}
	return a.Record(ctx, ev)
}

func (a *AuditLogger) Error(ctx context.Context, rotationID *int64, message string, err error) *int64 {
	ev := entity.AuditEvent{
		RotationID: rotationID,
		EventType:  entity.EventError,
		Status:     entity.AuditFailure,
		Message:    message,
	}
	if err != nil {
		ev.ErrorDetails = err.Error()
		ev.Details = map[string]any{"code": ErrorCode(err)}
	}
	return a.Record(ctx, ev)
}

// ByLead lista os eventos do lead, mais recentes primeiro.
func (a *AuditLogger) ByLead(ctx context.Context, leadID int64, limit int) ([]entity.AuditEvent, error) {
	events, err := a.repo.ListByLead(ctx, leadID, clampLimit(limit))
	if err != nil {
		return nil, databaseError("erro ao consultar logs do lead", err)
	}
	return events, nil
}

// ByRotation lista os eventos da rotação nas últimas horas, mais recentes primeiro.
func (a *AuditLogger) ByRotation(ctx context.Context, rotationID int64, hours, limit int) ([]entity.AuditEvent, error) {
	if hours <= 0 {
		hours = defaultRotationHours
	}
	since := a.now().Add(-time.Duration(hours) * time.Hour)
	events, err := a.repo.ListByRotation(ctx, rotationID, since, clampLimit(limit))
	if err != nil {
		return nil, databaseError("erro ao consultar logs do round robin", err)
	}
	return events, nil
}

func (a *AuditLogger) Failures(ctx context.Context, limit int) ([]entity.AuditEvent, error) {
	events, err := a.repo.ListFailures(ctx, clampLimit(limit))
	if err != nil {
		return nil, databaseError("erro ao consultar falhas", err)
	}
	return events, nil
}

// NotificationStats agrega os resultados de notificação dos últimos dias,
// opcionalmente de uma rotação só. SuccessRate é percentual com duas casas.
func (a *AuditLogger) NotificationStats(ctx context.Context, rotationID *int64, days int) (*entity.NotificationStats, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	since := a.now().Add(-time.Duration(days) * 24 * time.Hour)
	stats, err := a.repo.NotificationStats(ctx, rotationID, since)
	if err != nil {
		return nil, databaseError("erro ao calcular estatísticas de notificação", err)
	}
	stats.Total = stats.Successful + stats.Failed
	stats.SuccessRate = 0
	if stats.Total > 0 {
		stats.SuccessRate = math.Round(float64(stats.Successful)/float64(stats.Total)*10000) / 100
	}
	return stats, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLogLimit
	}
	if limit > maxLogLimit {
		return maxLogLimit
	}
	return limit
}
