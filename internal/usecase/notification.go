package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/discord"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

const reasonNoWebhook = "No webhook configured"

var ErrNotificationFailed = errors.New("notificação não entregue")

// NotificationDispatcher envia o lead para o webhook de chat do participante
// e registra tentativa, sucesso e falha na auditoria.
type NotificationDispatcher struct {
	sender  ChatSender
	audit   *AuditLogger
	alerter FailureAlerter
	slots   SlotFinder
	log     *slog.Logger
	now     func() time.Time
}

func NewNotificationDispatcher(sender ChatSender, audit *AuditLogger, alerter FailureAlerter, log *slog.Logger) *NotificationDispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &NotificationDispatcher{
		sender:  sender,
		audit:   audit,
		alerter: alerter,
		log:     log,
		now:     time.Now,
	}
}

// WithSlots liga a releitura do participante usada por NotifyJob.
func (d *NotificationDispatcher) WithSlots(s SlotFinder) *NotificationDispatcher {
	d.slots = s
	return d
}

// Notify nunca devolve erro: falhas de entrega vão no resultado e na auditoria.
func (d *NotificationDispatcher) Notify(ctx context.Context, slot entity.Slot, lead entity.Lead) NotificationResult {
	d.audit.DiscordAttempt(ctx, lead, slot)

	if !slot.HasWebhook() {
		d.audit.DiscordFailure(ctx, lead, slot, entity.AuditWarning, reasonNoWebhook, nil)
		metrics.RecordNotification(metrics.NotificationNoWebhook, 0)
		return NotificationResult{Success: false, Reason: reasonNoWebhook}
	}

	start := d.now()
	err := d.sender.SendLeadMessage(ctx, slot.DiscordWebhook, discord.LeadMessage{
		RecipientName:  slot.Name,
		SenderName:     slot.DisplayName(),
		LeadName:       lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		AdditionalData: lead.AdditionalData,
	})
	elapsed := d.now().Sub(start)

	if err != nil {
		d.log.WarnContext(ctx, "❌ falha ao notificar participante",
			"lead_id", lead.ID, "participant_id", slot.ID, "error", err)
		d.audit.DiscordFailure(ctx, lead, slot, entity.AuditFailure, err.Error(), &elapsed)
		metrics.RecordNotification(metrics.NotificationFailure, elapsed)
		d.alert(lead, slot, err)
		return NotificationResult{Success: false, Reason: err.Error(), ResponseTimeMs: elapsed.Milliseconds()}
	}

	d.audit.DiscordSuccess(ctx, lead, slot, elapsed)
	metrics.RecordNotification(metrics.NotificationSuccess, elapsed)
	return NotificationResult{Success: true, ResponseTimeMs: elapsed.Milliseconds()}
}

// NotifyJob trata uma notificação tirada da fila. Falha de entrega volta como
// erro para a mensagem cair na DLQ.
func (d *NotificationDispatcher) NotifyJob(ctx context.Context, job queue.NotificationJob) error {
	slot := entity.Slot{
		ID:          job.SlotID,
		RotationID:  job.RotationID,
		Name:        job.SlotName,
		DiscordName: job.DiscordName,
	}
	if d.slots == nil {
		return errors.New("releitura de participante não configurada")
	}
	found, err := d.slots.FindByID(ctx, job.RotationID, job.SlotID)
	switch {
	case err == nil:
		slot = *found
	case errors.Is(err, entity.ErrSlotNotFound):
		// participante apagado: segue sem webhook e o job é descartado
		d.log.WarnContext(ctx, "⚠️ participante não existe mais", "participant_id", job.SlotID)
	default:
		return fmt.Errorf("erro ao reler participante %d: %w", job.SlotID, err)
	}
	lead := entity.Lead{
		ID:             job.LeadID,
		RotationID:     job.RotationID,
		SlotID:         job.SlotID,
		Name:           job.LeadName,
		Email:          job.Email,
		Phone:          job.Phone,
		AdditionalData: job.AdditionalData,
	}
	res := d.Notify(ctx, slot, lead)
	if !res.Success && res.Reason != reasonNoWebhook {
		return errors.Join(ErrNotificationFailed, errors.New(res.Reason))
	}
	return nil
}

func (d *NotificationDispatcher) alert(lead entity.Lead, slot entity.Slot, cause error) {
	if d.alerter == nil {
		return
	}
	alert := mail.NotificationFailureAlert{
		LeadID:          lead.ID,
		LeadName:        lead.Name,
		RotationID:      lead.RotationID,
		ParticipantID:   slot.ID,
		ParticipantName: slot.Name,
		Reason:          cause.Error(),
		OccurredAt:      d.now(),
	}
	go func() {
		if err := d.alerter.SendNotificationFailure(alert); err != nil {
			d.log.Warn("⚠️ erro ao enviar alerta por email", "lead_id", alert.LeadID, "error", err)
		}
	}()
}
