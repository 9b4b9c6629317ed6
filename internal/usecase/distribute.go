package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// DistributeLeadUseCase atribui cada lead ao próximo participante disponível
// da rotação. As duas portas de entrada (por id e por origem) usam o mesmo
// núcleo Distribute.
type DistributeLeadUseCase struct {
	store     DistributionStore
	rotations RotationRepository
	junk      *JunkFilter
	audit     *AuditLogger
	notifier  Notifier
	queue     NotificationQueue
	log       *slog.Logger
}

func NewDistributeLeadUseCase(
	store DistributionStore,
	rotations RotationRepository,
	junk *JunkFilter,
	audit *AuditLogger,
	notifier Notifier,
	log *slog.Logger,
) *DistributeLeadUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &DistributeLeadUseCase{
		store:     store,
		rotations: rotations,
		junk:      junk,
		audit:     audit,
		notifier:  notifier,
		log:       log,
	}
}

// WithQueue liga o modo fila. Se a publicação falhar, a notificação é
// enviada inline.
func (uc *DistributeLeadUseCase) WithQueue(q NotificationQueue) *DistributeLeadUseCase {
	uc.queue = q
	return uc
}

// ExecuteByID atende POST /api/webhook/lead/{roundRobinId}.
func (uc *DistributeLeadUseCase) ExecuteByID(ctx context.Context, input DistributeByIDInput) (*DistributionOutput, error) {
	if errs := ValidateDistributeByIDInput(input); len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	rot, err := uc.rotations.FindByID(ctx, input.RotationID)
	if errors.Is(err, entity.ErrRotationNotFound) {
		return nil, rotationNotFound(input.RotationID)
	}
	if err != nil {
		return nil, databaseError("erro ao buscar round robin", err)
	}
	if !rot.IsLaunched {
		return nil, rotationNotLaunched(rot.ID)
	}

	return uc.Distribute(ctx, rot.ID, LeadPayload{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		SourceURL: input.SourceURL,
	})
}

// ExecuteBySource acha a rotação pelo source_url (URL exata primeiro, depois
// domínio) e distribui o lead nela.
func (uc *DistributeLeadUseCase) ExecuteBySource(ctx context.Context, input DistributeBySourceInput, meta RequestMeta) (*DistributionOutput, error) {
	var rot *entity.Rotation
	sourceURL := strings.TrimSpace(input.SourceURL)
	if sourceURL != "" {
		found, err := uc.rotations.FindBySource(ctx, sourceURL, entity.ExtractDomain(sourceURL))
		switch {
		case err == nil:
			rot = found
		case errors.Is(err, entity.ErrRotationNotFound):
		default:
			return nil, databaseError("erro ao buscar round robin pela origem", err)
		}
	}

	if rot != nil {
		uc.audit.WebhookReceived(ctx, rot.ID, sourceURL, meta, map[string]any{
			"name":             input.Name,
			"email":            input.Email,
			"additional_count": len(input.AdditionalData),
			"request_id":       meta.RequestID,
		})
	}

	if errs := ValidateDistributeBySourceInput(input); len(errs) > 0 {
		if rot != nil {
			uc.audit.ValidationFailed(ctx, rot.ID, sourceURL, errs)
		}
		return nil, validationFailure(errs)
	}

	if rot == nil {
		return nil, newDomainError(CodeNoRotationForSource,
			fmt.Sprintf("nenhum round robin encontrado para a origem %s", sourceURL))
	}

	return uc.Distribute(ctx, rot.ID, LeadPayload{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.MobileNumber,
		SourceURL:      sourceURL,
		AdditionalData: input.AdditionalData,
		RequestID:      meta.RequestID,
	})
}

// Distribute classifica o lead e então executa a atribuição atômica: trava a
// rotação, carrega o roster, seleciona, insere o lead, incrementa contadores e
// avança o ponteiro. Nada é persistido se algum passo falhar. Auditoria e
// notificação rodam depois do commit e não desfazem a atribuição.
func (uc *DistributeLeadUseCase) Distribute(ctx context.Context, rotationID int64, payload LeadPayload) (*DistributionOutput, error) {
	var (
		lead     entity.Lead
		assigned entity.Slot
		rotName  string
		position int
		next     int
	)

	// Classificação fora da transação: a consulta usa outra conexão do pool
	// e não pode esperar atrás do lock da rotação.
	verdict, err := uc.junk.Classify(ctx, payload.Email, payload.Phone)
	if err != nil {
		uc.recordFailure(ctx, rotationID, err)
		return nil, err
	}

	err = uc.store.RunInTx(ctx, func(tx DistributionTx) error {
		rot, err := tx.LockRotation(ctx, rotationID)
		if errors.Is(err, entity.ErrRotationNotFound) {
			return rotationNotFound(rotationID)
		}
		if err != nil {
			return databaseError("erro ao bloquear round robin", err)
		}
		if !rot.IsLaunched {
			return rotationNotLaunched(rot.ID)
		}

		roster, err := tx.ListActiveSlots(ctx, rot.ID)
		if err != nil {
			return databaseError("erro ao carregar participantes", err)
		}
		if len(roster) == 0 {
			return newDomainError(CodeEmptyRoster,
				fmt.Sprintf("round robin %d não tem participantes ativos", rot.ID))
		}

		slot, pos, ok := SelectNext(roster, rot.StartPosition(len(roster)))
		if !ok {
			return &DomainError{
				Code:      CodeNoAvailableParticipant,
				Message:   fmt.Sprintf("todos os participantes do round robin %d estão pausados", rot.ID),
				Retryable: true,
			}
		}

		lead = entity.Lead{
			RotationID:     rot.ID,
			SlotID:         slot.ID,
			Name:           strings.TrimSpace(payload.Name),
			Phone:          strings.TrimSpace(payload.Phone),
			Email:          strings.TrimSpace(payload.Email),
			SourceURL:      payload.SourceURL,
			SourceDomain:   entity.ExtractDomain(payload.SourceURL),
			Status:         entity.LeadStatusSent,
			AdditionalData: entity.CompactFields(payload.AdditionalData),
		}
		if verdict.IsJunk {
			lead.Status = entity.LeadStatusJunk
			lead.StatusReason = verdict.Reason
		}

		if err := tx.InsertLead(ctx, &lead); err != nil {
			return databaseError("erro ao salvar lead", err)
		}
		if err := tx.IncrementSlotLeads(ctx, slot.ID); err != nil {
			return databaseError("erro ao atualizar contador do participante", err)
		}
		next = NextPosition(pos, len(roster))
		if err := tx.AdvanceRotation(ctx, rot.ID, next); err != nil {
			return databaseError("erro ao avançar ponteiro da rotação", err)
		}

		assigned = *slot
		assigned.LeadsReceived++
		rotName = rot.Name
		position = pos
		return nil
	})
	if err != nil {
		uc.recordFailure(ctx, rotationID, err)
		return nil, err
	}

	metrics.RecordLeadDistributed(string(lead.Status))
	uc.log.InfoContext(ctx, "✅ lead distribuído",
		"lead_id", lead.ID,
		"round_robin_id", lead.RotationID,
		"participant_id", assigned.ID,
		"position", position,
		"status", lead.Status,
		"email", lead.Email,
	)

	out := &DistributionOutput{
		LeadID:       lead.ID,
		RotationID:   lead.RotationID,
		RotationName: rotName,
		SlotID:       assigned.ID,
		AssignedTo:   assigned.Name,
		Position:     position,
		NextPosition: next,
		Status:       lead.Status,
		StatusReason: lead.StatusReason,
	}

	// O lead já foi commitado; um cliente que desconecta não cancela o resto.
	post := context.WithoutCancel(ctx)
	steps := NewAfterCommit(uc.log)
	steps.AddOperation("audit_assignment", func(ctx context.Context) error {
		if uc.audit.LeadAssigned(ctx, lead, assigned, position) == nil {
			return errors.New("evento lead_assigned não gravado")
		}
		return nil
	})
	steps.AddOperation("notify", func(ctx context.Context) error {
		out.Notification = uc.notify(ctx, assigned, lead)
		return nil
	})
	steps.Execute(post)

	return out, nil
}

func (uc *DistributeLeadUseCase) notify(ctx context.Context, slot entity.Slot, lead entity.Lead) NotificationResult {
	if lead.IsJunk() {
		uc.audit.NotificationSkipped(ctx, lead, slot)
		metrics.RecordNotification(metrics.NotificationSkipped, 0)
		return NotificationResult{Success: false, Skipped: true, Reason: "lead classified as junk"}
	}

	if uc.queue != nil {
		job := queue.NotificationJob{
			MessageID:      uuid.NewString(),
			LeadID:         lead.ID,
			RotationID:     lead.RotationID,
			SlotID:         slot.ID,
			SlotName:       slot.Name,
			DiscordName:    slot.DiscordName,
			LeadName:       lead.Name,
			Email:          lead.Email,
			Phone:          lead.Phone,
			AdditionalData: lead.AdditionalData,
		}
		err := uc.queue.PublishNotification(ctx, job)
		if err == nil {
			uc.audit.NotificationQueued(ctx, lead, slot, job.MessageID)
			metrics.RecordNotification(metrics.NotificationQueued, 0)
			return NotificationResult{Success: true, Queued: true}
		}
		uc.log.WarnContext(ctx, "⚠️ falha ao publicar notificação, enviando inline",
			"lead_id", lead.ID, "error", err)
	}

	if uc.notifier == nil {
		return NotificationResult{Success: false, Reason: "notifier not configured"}
	}
	return uc.notifier.Notify(ctx, slot, lead)
}

func (uc *DistributeLeadUseCase) recordFailure(ctx context.Context, rotationID int64, err error) {
	code := ErrorCode(err)
	metrics.RecordDistributionError(code)

	if code == CodeRotationNotFound {
		return
	}
	if IsTechnicalError(err) {
		uc.log.ErrorContext(ctx, "❌ erro na distribuição", "round_robin_id", rotationID, "error", err)
	} else {
		uc.log.WarnContext(ctx, "⚠️ lead rejeitado", "round_robin_id", rotationID, "code", code, "error", err)
	}
	uc.audit.Error(context.WithoutCancel(ctx), entity.Int64Ptr(rotationID), "Lead distribution failed", err)
}

func rotationNotFound(id int64) *DomainError {
	return newDomainError(CodeRotationNotFound, fmt.Sprintf("round robin %d não encontrado", id))
}

func rotationNotLaunched(id int64) *DomainError {
	return newDomainError(CodeRotationNotLaunched, fmt.Sprintf("round robin %d não está lançado", id))
}
