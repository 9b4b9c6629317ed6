package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// DistributionStore executa a distribuição de um lead numa única transação.
// O SELECT ... FOR UPDATE em round_robins serializa distribuições
// concorrentes da mesma rotação.
type DistributionStore struct {
	DB *sql.DB
}

func NewDistributionStore(db *sql.DB) *DistributionStore {
	return &DistributionStore{DB: db}
}

func (s *DistributionStore) RunInTx(ctx context.Context, fn func(tx usecase.DistributionTx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao abrir transação: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&distributionTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro ao commitar distribuição: %w", err)
	}
	return nil
}

type distributionTx struct {
	tx *sql.Tx
}

func (t *distributionTx) LockRotation(ctx context.Context, rotationID int64) (*entity.Rotation, error) {
	return lockRotation(ctx, t.tx, rotationID)
}

func (t *distributionTx) ListActiveSlots(ctx context.Context, rotationID int64) ([]entity.Slot, error) {
	return listSlots(ctx, t.tx, rotationID)
}

func (t *distributionTx) InsertLead(ctx context.Context, lead *entity.Lead) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO leads (round_robin_id, participant_id, name, phone, email, source_url, source_domain, status, status_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, received_at
	`,
		lead.RotationID,
		lead.SlotID,
		lead.Name,
		lead.Phone,
		lead.Email,
		nullString(lead.SourceURL),
		nullString(lead.SourceDomain),
		string(lead.Status),
		nullString(lead.StatusReason),
	).Scan(&lead.ID, &lead.ReceivedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir lead: %w", err)
	}

	for _, f := range lead.AdditionalData {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO lead_additional_data (lead_id, field_key, field_value)
			VALUES ($1, $2, $3)
		`, lead.ID, f.Key, f.Value)
		if err != nil {
			return fmt.Errorf("erro ao inserir dado adicional %q: %w", f.Key, err)
		}
	}
	return nil
}

func (t *distributionTx) IncrementSlotLeads(ctx context.Context, slotID int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE rr_participants
		SET leads_received = leads_received + 1
		WHERE id = $1
	`, slotID)
	if err != nil {
		return err
	}
	return expectOneRow(res, entity.ErrSlotNotFound)
}

func (t *distributionTx) AdvanceRotation(ctx context.Context, rotationID int64, nextPosition int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE round_robins
		SET current_position = $1, total_leads = total_leads + 1, updated_at = NOW()
		WHERE id = $2
	`, nextPosition, rotationID)
	if err != nil {
		return err
	}
	return expectOneRow(res, entity.ErrRotationNotFound)
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
