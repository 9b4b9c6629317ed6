package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
)

// PointerResetter zera ponteiros que ficaram além do fim da fila ativa.
type PointerResetter interface {
	ResetOutOfRangePointers(ctx context.Context) ([]int64, error)
}

// PointerReconciler corrige de tempos em tempos os ponteiros que ficaram fora
// do intervalo depois de edições na fila. A distribuição já limita na leitura;
// aqui o valor gravado é corrigido.
type PointerReconciler struct {
	repo         PointerResetter
	tickInterval time.Duration
	log          *slog.Logger
}

func NewPointerReconciler(repo PointerResetter, interval time.Duration, log *slog.Logger) *PointerReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &PointerReconciler{repo: repo, tickInterval: interval, log: log}
}

func (w *PointerReconciler) Start(ctx context.Context) {
	w.log.Info("🕒 reconciliador de ponteiros iniciado", "interval", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("⚠️ reconciliador de ponteiros encerrado")
			return
		case <-ticker.C:
			w.reconcile(ctx)
		}
	}
}

func (w *PointerReconciler) reconcile(ctx context.Context) int {
	ids, err := w.repo.ResetOutOfRangePointers(ctx)
	if err != nil {
		w.log.Error("❌ erro ao reconciliar ponteiros", "error", err)
		return 0
	}
	if len(ids) > 0 {
		metrics.RecordPointerResets(len(ids))
		w.log.Info("✅ ponteiros reiniciados", "count", len(ids), "round_robin_ids", ids)
	}
	return len(ids)
}
