package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

type SlotRepository struct {
	DB *sql.DB
}

func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{DB: db}
}

func (r *SlotRepository) ListOrdered(ctx context.Context, rotationID int64) ([]entity.Slot, error) {
	return listSlots(ctx, r.DB, rotationID)
}

// FindByID não filtra is_active: um lead já atribuído ainda é notificado
// mesmo que o participante tenha sido desativado depois.
func (r *SlotRepository) FindByID(ctx context.Context, rotationID, slotID int64) (*entity.Slot, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+slotColumns+`
		FROM rr_participants
		WHERE id = $1 AND round_robin_id = $2
	`, slotID, rotationID)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSlotNotFound
	}
	return slot, err
}

// Reorder grava queue_position = índice em slotIDs. slotIDs precisa conter
// exatamente os participantes ativos; caso contrário ErrSlotNotFound.
func (r *SlotRepository) Reorder(ctx context.Context, rotationID int64, slotIDs []int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao abrir transação: %w", err)
	}
	defer tx.Rollback()

	if _, err := lockRotation(ctx, tx, rotationID); err != nil {
		return err
	}

	var matched, total int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE id = ANY($2::bigint[])), COUNT(*)
		FROM rr_participants
		WHERE round_robin_id = $1 AND is_active = TRUE
	`, rotationID, pq.Array(slotIDs)).Scan(&matched, &total)
	if err != nil {
		return err
	}
	if matched != len(slotIDs) || total != len(slotIDs) {
		return entity.ErrSlotNotFound
	}

	for pos, id := range slotIDs {
		_, err := tx.ExecContext(ctx, `
			UPDATE rr_participants
			SET queue_position = $1
			WHERE id = $2 AND round_robin_id = $3
		`, pos, id, rotationID)
		if err != nil {
			return fmt.Errorf("erro ao mover participante %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func (r *SlotRepository) SetPaused(ctx context.Context, rotationID, slotID int64, paused bool, reason string) (*entity.Slot, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE rr_participants
		SET is_paused = $1, pause_reason = $2
		WHERE id = $3 AND round_robin_id = $4 AND is_active = TRUE
		RETURNING `+slotColumns,
		paused, nullString(reason), slotID, rotationID)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSlotNotFound
	}
	return slot, err
}

// Remove apaga o participante se ele nunca recebeu lead; senão só desativa,
// preservando o histórico. Depois as posições são recompactadas e o ponteiro
// ajustado para continuar apontando para o mesmo próximo participante.
func (r *SlotRepository) Remove(ctx context.Context, rotationID, slotID int64) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("erro ao abrir transação: %w", err)
	}
	defer tx.Rollback()

	rot, err := lockRotation(ctx, tx, rotationID)
	if err != nil {
		return false, err
	}

	var removedPos sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT queue_position
		FROM rr_participants
		WHERE id = $1 AND round_robin_id = $2 AND is_active = TRUE
	`, slotID, rotationID).Scan(&removedPos)
	if errors.Is(err, sql.ErrNoRows) {
		return false, entity.ErrSlotNotFound
	}
	if err != nil {
		return false, err
	}

	var leadCount int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE participant_id = $1`, slotID).Scan(&leadCount); err != nil {
		return false, err
	}

	hard := leadCount == 0
	if hard {
		_, err = tx.ExecContext(ctx, `DELETE FROM rr_participants WHERE id = $1`, slotID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE rr_participants
			SET is_active = FALSE, queue_position = NULL
			WHERE id = $1
		`, slotID)
	}
	if err != nil {
		return false, fmt.Errorf("erro ao remover participante: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE rr_participants p
		SET queue_position = o.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY queue_position, id) AS rn
			FROM rr_participants
			WHERE round_robin_id = $1 AND is_active = TRUE
		) o
		WHERE p.id = o.id
	`, rotationID)
	if err != nil {
		return false, fmt.Errorf("erro ao recompactar posições: %w", err)
	}

	var remaining int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rr_participants WHERE round_robin_id = $1 AND is_active = TRUE
	`, rotationID).Scan(&remaining); err != nil {
		return false, err
	}

	next := adjustPointer(rot.CurrentPosition, int(removedPos.Int64), removedPos.Valid, remaining)
	if next != rot.CurrentPosition {
		_, err := tx.ExecContext(ctx, `
			UPDATE round_robins SET current_position = $1, updated_at = NOW() WHERE id = $2
		`, next, rotationID)
		if err != nil {
			return false, fmt.Errorf("erro ao ajustar ponteiro: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("erro ao commitar remoção: %w", err)
	}
	return hard, nil
}

// adjustPointer mantém o ponteiro no mesmo próximo participante depois que a
// posição removed saiu da fila, limitado ao novo tamanho.
func adjustPointer(current, removed int, hadPosition bool, remaining int) int {
	if hadPosition && removed < current {
		current--
	}
	if current < 0 || current >= remaining {
		return 0
	}
	return current
}
