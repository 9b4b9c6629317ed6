package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/discord"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// DistributionStore abre a transação atômica da distribuição.
// Se fn retornar erro, nada é persistido.
type DistributionStore interface {
	RunInTx(ctx context.Context, fn func(tx DistributionTx) error) error
}

// DistributionTx são as operações dentro da transação de distribuição.
// LockRotation segura a linha da rotação até o commit; distribuições
// concorrentes na mesma rotação ficam em fila.
type DistributionTx interface {
	LockRotation(ctx context.Context, rotationID int64) (*entity.Rotation, error)
	ListActiveSlots(ctx context.Context, rotationID int64) ([]entity.Slot, error)
	InsertLead(ctx context.Context, lead *entity.Lead) error
	IncrementSlotLeads(ctx context.Context, slotID int64) error
	AdvanceRotation(ctx context.Context, rotationID int64, nextPosition int) error
}

type RotationRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Rotation, error)
	FindBySource(ctx context.Context, sourceURL, domain string) (*entity.Rotation, error)
	Launch(ctx context.Context, id int64) error
}

type SlotRepository interface {
	ListOrdered(ctx context.Context, rotationID int64) ([]entity.Slot, error)
	Reorder(ctx context.Context, rotationID int64, slotIDs []int64) error
	SetPaused(ctx context.Context, rotationID, slotID int64, paused bool, reason string) (*entity.Slot, error)
	Remove(ctx context.Context, rotationID, slotID int64) (hardDeleted bool, err error)
}

// SlotFinder relê um participante, inclusive desativado.
type SlotFinder interface {
	FindByID(ctx context.Context, rotationID, slotID int64) (*entity.Slot, error)
}

type LeadRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Lead, error)
	UpdateStatus(ctx context.Context, id int64, status entity.LeadStatus, reason string) error
}

type JunkRuleRepository interface {
	// Match devolve nil, nil quando nenhuma regra casa.
	Match(ctx context.Context, ruleType entity.JunkRuleType, value string) (*entity.JunkRule, error)
	Insert(ctx context.Context, rule *entity.JunkRule) error
}

type AuditRepository interface {
	Insert(ctx context.Context, ev *entity.AuditEvent) (int64, error)
	ListByLead(ctx context.Context, leadID int64, limit int) ([]entity.AuditEvent, error)
	ListByRotation(ctx context.Context, rotationID int64, since time.Time, limit int) ([]entity.AuditEvent, error)
	ListFailures(ctx context.Context, limit int) ([]entity.AuditEvent, error)
	NotificationStats(ctx context.Context, rotationID *int64, since time.Time) (*entity.NotificationStats, error)
}

// ChatSender entrega a mensagem do lead no webhook do participante.
type ChatSender interface {
	SendLeadMessage(ctx context.Context, webhookURL string, msg discord.LeadMessage) error
}

type FailureAlerter interface {
	SendNotificationFailure(alert mail.NotificationFailureAlert) error
}

type Notifier interface {
	Notify(ctx context.Context, slot entity.Slot, lead entity.Lead) NotificationResult
}

type NotificationQueue interface {
	PublishNotification(ctx context.Context, job queue.NotificationJob) error
}
