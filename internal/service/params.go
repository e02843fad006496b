package service

import (
	"github.com/subledger/subledger/internal/config"
	"github.com/subledger/subledger/internal/custody"
	"github.com/subledger/subledger/internal/domain/oracle"
	"github.com/subledger/subledger/internal/domain/payment"
	"github.com/subledger/subledger/internal/domain/platform"
	"github.com/subledger/subledger/internal/domain/subscription"
	"github.com/subledger/subledger/internal/domain/tokenaccount"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/publisher"
)

// ServiceParams bundles the dependencies shared by all services.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	SubRepo          subscription.Repository
	OracleRepo       oracle.Repository
	PlatformRepo     platform.Repository
	ReceiptRepo      payment.Repository
	TokenAccountRepo tokenaccount.Repository

	Custody        custody.Adapter
	EventPublisher publisher.Publisher
}
