package repository

import (
	"github.com/subledger/subledger/internal/cache"
	"github.com/subledger/subledger/internal/domain/oracle"
	"github.com/subledger/subledger/internal/domain/payment"
	"github.com/subledger/subledger/internal/domain/platform"
	"github.com/subledger/subledger/internal/domain/subscription"
	"github.com/subledger/subledger/internal/domain/tokenaccount"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	gormrepo "github.com/subledger/subledger/internal/repository/gorm"
)

func NewSubscriptionRepository(client postgres.IClient, log *logger.Logger, cache cache.Cache) subscription.Repository {
	return gormrepo.NewSubscriptionRepository(client, log, cache)
}

func NewOracleRepository(client postgres.IClient, log *logger.Logger, cache cache.Cache) oracle.Repository {
	return gormrepo.NewOracleRepository(client, log, cache)
}

func NewPlatformRepository(client postgres.IClient, log *logger.Logger) platform.Repository {
	return gormrepo.NewPlatformRepository(client, log)
}

func NewReceiptRepository(client postgres.IClient, log *logger.Logger) payment.Repository {
	return gormrepo.NewReceiptRepository(client, log)
}

func NewTokenAccountRepository(client postgres.IClient, log *logger.Logger) tokenaccount.Repository {
	return gormrepo.NewTokenAccountRepository(client, log)
}
