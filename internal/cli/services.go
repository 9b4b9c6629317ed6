package cli

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/logger"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type RosterService interface {
	ListOrdered(ctx context.Context, rotationID int64) ([]entity.Slot, error)
	Reorder(ctx context.Context, rotationID int64, slotIDs []int64) error
	SetPaused(ctx context.Context, rotationID, slotID int64, paused bool, reason string) (*entity.Slot, error)
	RemoveSlot(ctx context.Context, rotationID, slotID int64) (bool, error)
	Launch(ctx context.Context, rotationID int64) (*entity.Rotation, error)
}

type JunkService interface {
	AddRule(ctx context.Context, t entity.JunkRuleType, value, reason string) (*entity.JunkRule, bool, error)
	MarkLeadAsJunk(ctx context.Context, leadID int64, reason string) (*usecase.MarkJunkOutput, error)
}

type AuditService interface {
	ByLead(ctx context.Context, leadID int64, limit int) ([]entity.AuditEvent, error)
	ByRotation(ctx context.Context, rotationID int64, hours, limit int) ([]entity.AuditEvent, error)
	Failures(ctx context.Context, limit int) ([]entity.AuditEvent, error)
	NotificationStats(ctx context.Context, rotationID *int64, days int) (*entity.NotificationStats, error)
}

// Services é o que os subcomandos usam. Close libera a conexão.
type Services struct {
	Roster  RosterService
	Junk    JunkService
	Audit   AuditService
	Migrate func(ctx context.Context) error
	Close   func() error
}

// Opener monta os Services.
type Opener func(ctx context.Context) (*Services, error)

// OpenFromConfig conecta no banco descrito pela configuração padrão.
func OpenFromConfig(ctx context.Context) (*Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL, 2)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	audit := usecase.NewAuditLogger(database.NewAuditRepository(db), log)
	rotations := database.NewRotationRepository(db)
	return &Services{
		Roster: usecase.NewRosterUseCase(rotations, database.NewSlotRepository(db), audit, log),
		Junk:   usecase.NewJunkFilter(database.NewJunkRuleRepository(db), database.NewLeadRepository(db), audit, log),
		Audit:  audit,
		Migrate: func(ctx context.Context) error {
			return database.Migrate(ctx, db)
		},
		Close: db.Close,
	}, nil
}
