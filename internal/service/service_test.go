package service

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/subledger/subledger/internal/config"
	"github.com/subledger/subledger/internal/custody"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/testutil"
	"github.com/subledger/subledger/internal/types"
)

type Stores struct {
	SubscriptionRepo *testutil.InMemorySubscriptionStore
	OracleRepo       *testutil.InMemoryOracleStore
	PlatformRepo     *testutil.InMemoryPlatformStore
	ReceiptRepo      *testutil.InMemoryReceiptStore
	TokenAccountRepo *testutil.InMemoryTokenAccountStore
}

// BaseServiceTestSuite provides common functionality for all service tests:
// in-memory stores behind the repository interfaces, a no-op transaction
// client and a recording event publisher.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	db        postgres.IClient
	publisher *testutil.InMemoryPublisher
	logger    *logger.Logger
	config    *config.Configuration
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
}

func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	ctx := context.Background()
	ctx = types.SetTenantID(ctx, types.DefaultTenantID)
	ctx = types.SetEnvironmentID(ctx, types.DefaultEnvironmentID)
	s.ctx = ctx
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubscriptionRepo: testutil.NewInMemorySubscriptionStore(),
		OracleRepo:       testutil.NewInMemoryOracleStore(),
		PlatformRepo:     testutil.NewInMemoryPlatformStore(),
		ReceiptRepo:      testutil.NewInMemoryReceiptStore(),
		TokenAccountRepo: testutil.NewInMemoryTokenAccountStore(),
	}
	s.db = testutil.NewMockPostgresClient()
	s.publisher = testutil.NewInMemoryPublisher()
	s.logger = logger.GetLogger()
	s.config = config.GetDefaultConfig()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.SubscriptionRepo.Clear()
	s.stores.OracleRepo.Clear()
	s.stores.PlatformRepo.Clear()
	s.stores.ReceiptRepo.Clear()
	s.stores.TokenAccountRepo.Clear()
	s.publisher.Clear()
}

// GetContext returns the test context scoped to the given caller.
func (s *BaseServiceTestSuite) GetContext(callerID string) context.Context {
	return types.SetCallerID(s.ctx, callerID)
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetPublisher() *testutil.InMemoryPublisher {
	return s.publisher
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// ServiceParams assembles the shared dependencies over the in-memory stores,
// with real ledger custody so transfers move balances between accounts.
func (s *BaseServiceTestSuite) ServiceParams() ServiceParams {
	return ServiceParams{
		Logger:           s.logger,
		Config:           s.config,
		DB:               s.db,
		SubRepo:          s.stores.SubscriptionRepo,
		OracleRepo:       s.stores.OracleRepo,
		PlatformRepo:     s.stores.PlatformRepo,
		ReceiptRepo:      s.stores.ReceiptRepo,
		TokenAccountRepo: s.stores.TokenAccountRepo,
		Custody:          custody.NewLedgerCustody(s.stores.TokenAccountRepo, s.logger),
		EventPublisher:   s.publisher,
	}
}
