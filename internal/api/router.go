package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/subledger/subledger/internal/api/v1"
	"github.com/subledger/subledger/internal/config"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/rest/middleware"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Subscription *v1.SubscriptionHandler
	Payment      *v1.PaymentHandler
	Oracle       *v1.OracleHandler
	Platform     *v1.PlatformHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(log),
		middleware.LoggingMiddleware(log),
	)

	router.GET("/health", handlers.Health.Health)

	private := router.Group("/v1")
	private.Use(
		middleware.AuthenticateMiddleware(cfg),
		middleware.TenantMiddleware,
		middleware.SentryTenantContextMiddleware,
	)

	subscriptions := private.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/pause", handlers.Subscription.PauseSubscription)
		subscriptions.POST("/:id/resume", handlers.Subscription.ResumeSubscription)
		subscriptions.POST("/:id/cancel", handlers.Subscription.CancelSubscription)
		subscriptions.POST("/:id/deposit", handlers.Subscription.Deposit)
		subscriptions.POST("/:id/payments", handlers.Payment.ProcessPayment)
		subscriptions.GET("/:id/payments", handlers.Payment.ListReceipts)
	}

	receipts := private.Group("/receipts")
	{
		receipts.GET("/:id", handlers.Payment.GetReceipt)
	}

	oracle := private.Group("/oracle")
	{
		oracle.GET("/price", handlers.Oracle.GetPrice)
		oracle.PUT("/price", handlers.Oracle.SetPrice)
	}

	platform := private.Group("/platform")
	{
		platform.POST("/config", handlers.Platform.InitConfig)
		platform.GET("/config", handlers.Platform.GetConfig)
		platform.PUT("/fee-wallet", handlers.Platform.UpdateFeeWallet)
	}

	return router
}
