package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/subledger/subledger/internal/api"
	v1 "github.com/subledger/subledger/internal/api/v1"
	"github.com/subledger/subledger/internal/cache"
	"github.com/subledger/subledger/internal/config"
	"github.com/subledger/subledger/internal/custody"
	"github.com/subledger/subledger/internal/domain/oracle"
	"github.com/subledger/subledger/internal/domain/payment"
	"github.com/subledger/subledger/internal/domain/platform"
	"github.com/subledger/subledger/internal/domain/subscription"
	"github.com/subledger/subledger/internal/domain/tokenaccount"
	"github.com/subledger/subledger/internal/email"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/publisher"
	"github.com/subledger/subledger/internal/repository"
	"github.com/subledger/subledger/internal/service"
)

func main() {
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			providePostgresClient,
			cache.Initialize,
			repository.NewSubscriptionRepository,
			repository.NewOracleRepository,
			repository.NewPlatformRepository,
			repository.NewReceiptRepository,
			repository.NewTokenAccountRepository,
			custody.NewLedgerCustody,
			publisher.NewPublisher,
			email.NewEmailClient,
			provideEmailService,
			provideServiceParams,
			service.NewSubscriptionService,
			service.NewPaymentService,
			service.NewOracleService,
			service.NewPlatformService,
			service.NewNotificationService,
			v1.NewHealthHandler,
			v1.NewSubscriptionHandler,
			v1.NewPaymentHandler,
			v1.NewOracleHandler,
			v1.NewPlatformHandler,
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			initSentry,
			migrate,
			startNotifications,
			startServer,
		),
	)

	app.Run()
}

func providePostgresClient(cfg *config.Configuration, log *logger.Logger) (postgres.IClient, *postgres.Client, error) {
	client, err := postgres.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}

func provideEmailService(client *email.EmailClient, log *logger.Logger) *email.Email {
	return email.NewEmail(client, log.SugaredLogger)
}

func provideServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	db postgres.IClient,
	subRepo subscription.Repository,
	oracleRepo oracle.Repository,
	platformRepo platform.Repository,
	receiptRepo payment.Repository,
	tokenAccountRepo tokenaccount.Repository,
	custodyAdapter custody.Adapter,
	eventPublisher publisher.Publisher,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:           log,
		Config:           cfg,
		DB:               db,
		SubRepo:          subRepo,
		OracleRepo:       oracleRepo,
		PlatformRepo:     platformRepo,
		ReceiptRepo:      receiptRepo,
		TokenAccountRepo: tokenAccountRepo,
		Custody:          custodyAdapter,
		EventPublisher:   eventPublisher,
	}
}

func provideHandlers(
	health *v1.HealthHandler,
	sub *v1.SubscriptionHandler,
	pay *v1.PaymentHandler,
	oracle *v1.OracleHandler,
	platform *v1.PlatformHandler,
) api.Handlers {
	return api.Handlers{
		Health:       health,
		Subscription: sub,
		Payment:      pay,
		Oracle:       oracle,
		Platform:     platform,
	}
}

func initSentry(cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
		return err
	}
	return nil
}

func migrate(cfg *config.Configuration, client *postgres.Client, log *logger.Logger) error {
	if !cfg.Postgres.AutoMigrate {
		return nil
	}

	log.Info("running schema migration")
	return client.AutoMigrate(
		&subscription.Subscription{},
		&oracle.PriceOracle{},
		&platform.Config{},
		&payment.Receipt{},
		&tokenaccount.TokenAccount{},
	)
}

func startNotifications(lc fx.Lifecycle, notifications *service.NotificationService, bus publisher.Publisher, log *logger.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return notifications.Run(ctx)
		},
		OnStop: func(context.Context) error {
			cancel()
			return bus.Close()
		},
	})
}

func startServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
}
