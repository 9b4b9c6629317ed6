package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// RosterUseCase cuida da ordem, pausa e remoção dos participantes.
type RosterUseCase struct {
	rotations RotationRepository
	slots     SlotRepository
	audit     *AuditLogger
	log       *slog.Logger
}

func NewRosterUseCase(rotations RotationRepository, slots SlotRepository, audit *AuditLogger, log *slog.Logger) *RosterUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &RosterUseCase{rotations: rotations, slots: slots, audit: audit, log: log}
}

// ListOrdered lista os participantes ativos por queue_position.
func (uc *RosterUseCase) ListOrdered(ctx context.Context, rotationID int64) ([]entity.Slot, error) {
	if _, err := uc.findRotation(ctx, rotationID); err != nil {
		return nil, err
	}
	slots, err := uc.slots.ListOrdered(ctx, rotationID)
	if err != nil {
		return nil, databaseError("erro ao listar participantes", err)
	}
	return slots, nil
}

// Reorder grava as posições 0..N-1 na ordem de slotIDs, que precisa ser uma
// permutação dos participantes ativos. O ponteiro não muda.
func (uc *RosterUseCase) Reorder(ctx context.Context, rotationID int64, slotIDs []int64) error {
	current, err := uc.ListOrdered(ctx, rotationID)
	if err != nil {
		return err
	}
	if errs := validatePermutation(current, slotIDs); len(errs) > 0 {
		return &DomainError{
			Code:    CodeInvalidOrder,
			Message: "ordem inválida: " + strings.Join(errs, ", "),
		}
	}

	err = uc.slots.Reorder(ctx, rotationID, slotIDs)
	if errors.Is(err, entity.ErrSlotNotFound) {
		return newDomainError(CodeInvalidOrder, "ordem inválida: participantes mudaram durante a reordenação")
	}
	if err != nil {
		return databaseError("erro ao reordenar participantes", err)
	}
	uc.log.InfoContext(ctx, "🔀 fila reordenada", "round_robin_id", rotationID, "participants", len(slotIDs))
	return nil
}

func validatePermutation(current []entity.Slot, ids []int64) []string {
	var errs []string
	if len(ids) != len(current) {
		errs = append(errs, fmt.Sprintf("esperados %d participantes, recebidos %d", len(current), len(ids)))
	}
	known := make(map[int64]bool, len(current))
	for _, s := range current {
		known[s.ID] = true
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			errs = append(errs, fmt.Sprintf("participante %d repetido", id))
		}
		seen[id] = true
		if !known[id] {
			errs = append(errs, fmt.Sprintf("participante %d não pertence à rotação", id))
		}
	}
	return errs
}

// SetPaused pausa ou retoma um participante. Pausado mantém a posição e é
// pulado pelo seletor.
func (uc *RosterUseCase) SetPaused(ctx context.Context, rotationID, slotID int64, paused bool, reason string) (*entity.Slot, error) {
	if _, err := uc.findRotation(ctx, rotationID); err != nil {
		return nil, err
	}
	if !paused {
		reason = ""
	}
	slot, err := uc.slots.SetPaused(ctx, rotationID, slotID, paused, strings.TrimSpace(reason))
	if errors.Is(err, entity.ErrSlotNotFound) {
		return nil, slotNotFound(rotationID, slotID)
	}
	if err != nil {
		return nil, databaseError("erro ao pausar participante", err)
	}

	ev := entity.AuditEvent{
		RotationID: entity.Int64Ptr(rotationID),
		SlotID:     entity.Int64Ptr(slot.ID),
		EventType:  entity.EventParticipantUnpaused,
		Status:     entity.AuditInfo,
		Message:    slot.Name + " resumed",
	}
	if paused {
		ev.EventType = entity.EventParticipantPaused
		ev.Message = slot.Name + " paused"
		ev.Details = map[string]any{"reason": slot.PauseReason}
	}
	uc.audit.Record(ctx, ev)
	return slot, nil
}

// TogglePause inverte a pausa do participante.
func (uc *RosterUseCase) TogglePause(ctx context.Context, rotationID, slotID int64, reason string) (*entity.Slot, error) {
	slots, err := uc.ListOrdered(ctx, rotationID)
	if err != nil {
		return nil, err
	}
	for _, s := range slots {
		if s.ID == slotID {
			return uc.SetPaused(ctx, rotationID, slotID, !s.IsPaused, reason)
		}
	}
	return nil, slotNotFound(rotationID, slotID)
}

// RemoveSlot apaga quem nunca recebeu lead e desativa quem já recebeu. As
// posições restantes são recompactadas e o ponteiro continua válido.
func (uc *RosterUseCase) RemoveSlot(ctx context.Context, rotationID, slotID int64) (bool, error) {
	if _, err := uc.findRotation(ctx, rotationID); err != nil {
		return false, err
	}
	hard, err := uc.slots.Remove(ctx, rotationID, slotID)
	if errors.Is(err, entity.ErrSlotNotFound) {
		return false, slotNotFound(rotationID, slotID)
	}
	if err != nil {
		return false, databaseError("erro ao remover participante", err)
	}
	uc.log.InfoContext(ctx, "🗑️ participante removido",
		"round_robin_id", rotationID, "participant_id", slotID, "hard_delete", hard)
	return hard, nil
}

// Launch libera a rotação para receber leads. Lançar de novo não faz nada.
func (uc *RosterUseCase) Launch(ctx context.Context, rotationID int64) (*entity.Rotation, error) {
	rot, err := uc.findRotation(ctx, rotationID)
	if err != nil {
		return nil, err
	}
	if rot.IsLaunched {
		return rot, nil
	}
	if err := uc.rotations.Launch(ctx, rotationID); err != nil {
		if errors.Is(err, entity.ErrRotationNotFound) {
			return nil, rotationNotFound(rotationID)
		}
		return nil, databaseError("erro ao lançar round robin", err)
	}
	rot.IsLaunched = true
	uc.log.InfoContext(ctx, "🚀 round robin lançado", "round_robin_id", rotationID)
	return rot, nil
}

func (uc *RosterUseCase) findRotation(ctx context.Context, id int64) (*entity.Rotation, error) {
	rot, err := uc.rotations.FindByID(ctx, id)
	if errors.Is(err, entity.ErrRotationNotFound) {
		return nil, rotationNotFound(id)
	}
	if err != nil {
		return nil, databaseError("erro ao buscar round robin", err)
	}
	return rot, nil
}

func slotNotFound(rotationID, slotID int64) *DomainError {
	return newDomainError(CodeSlotNotFound,
		fmt.Sprintf("participante %d não encontrado no round robin %d", slotID, rotationID))
}
