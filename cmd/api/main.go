package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/discord"
	"github.com/xavierca1/ligue-leads/internal/infra/logger"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"github.com/xavierca1/ligue-leads/internal/infra/worker"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// redisPinger adapta o cliente Redis ao health check.
type redisPinger struct{ c *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.c.Ping(ctx).Err()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("❌ configuração inválida", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		log.Error("❌ erro ao conectar no banco", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Error("❌ erro ao aplicar schema", "error", err)
		os.Exit(1)
	}

	// 1. Repositórios
	rotationRepo := database.NewRotationRepository(db)
	slotRepo := database.NewSlotRepository(db)
	leadRepo := database.NewLeadRepository(db)
	junkRepo := database.NewJunkRuleRepository(db)
	auditRepo := database.NewAuditRepository(db)
	store := database.NewDistributionStore(db)

	// 2. Adapters
	chat := discord.NewClient(cfg.NotifyTimeout(), cfg.NotifyPhonePrefix)

	var alerter usecase.FailureAlerter
	if cfg.AlertsEnabled() {
		alerter = mail.NewAlertSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
			cfg.AlertEmailFrom, cfg.AlertEmailTo)
	}

	// 3. UseCases
	audit := usecase.NewAuditLogger(auditRepo, log)
	junk := usecase.NewJunkFilter(junkRepo, leadRepo, audit, log)
	dispatcher := usecase.NewNotificationDispatcher(chat, audit, alerter, log).WithSlots(slotRepo)
	distributeUC := usecase.NewDistributeLeadUseCase(store, rotationRepo, junk, audit, dispatcher, log)
	rosterUC := usecase.NewRosterUseCase(rotationRepo, slotRepo, audit, log)

	// 4. Fila (opcional)
	var broker handlers.BrokerHealth
	if cfg.NotifyMode == config.NotifyModeQueued {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Error("❌ erro ao conectar no RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		broker = rabbitMQ

		distributeUC.WithQueue(queue.NewProducer(rabbitMQ.Ch))

		consumer := queue.NewWorker(rabbitMQ.Ch, dispatcher, log)
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				log.Error("❌ worker de notificações parou", "error", err)
			}
		}()
	}

	// 5. Rate limit: Redis se configurado, senão memória local
	var (
		limiter     middleware.Limiter
		redisHealth handlers.Pinger
	)
	window := time.Minute
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("❌ REDIS_URL inválida", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMin, window)
		redisHealth = redisPinger{c: rdb}
	} else {
		mem := middleware.NewMemoryLimiter(cfg.RateLimitPerMin, window)
		go mem.Cleanup(ctx, window)
		limiter = mem
	}

	go worker.NewPointerReconciler(rotationRepo, cfg.ReconcileInterval(), log).Start(ctx)

	// 6. Router
	router := newRouter(routerDeps{
		Webhook:      handlers.NewWebhookHandler(distributeUC, log),
		Admin:        handlers.NewAdminHandler(rosterUC, junk, log),
		Logs:         handlers.NewLogsHandler(audit, log),
		Health:       handlers.NewHealthHandler(db, broker, redisHealth),
		Limiter:      limiter,
		WebhookToken: cfg.WebhookToken,
		AdminToken:   cfg.AdminToken,
		CORSOrigins:  cfg.CORSOrigins,
		TrustProxy:   cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🔥 Lead router rodando", "port", cfg.HTTPPort, "notify_mode", cfg.NotifyMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("❌ erro no servidor HTTP", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("🛑 desligando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("❌ erro no shutdown", "error", err)
	}
}
