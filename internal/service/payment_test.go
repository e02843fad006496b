package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/subledger/subledger/internal/api/dto"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/publisher"
)

type PaymentServiceSuite struct {
	BaseServiceTestSuite
	service       PaymentService
	subscriptions SubscriptionService
	oracle        OracleService
	platform      PlatformService
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.ServiceParams()
	s.service = NewPaymentService(params)
	s.subscriptions = NewSubscriptionService(params)
	s.oracle = NewOracleService(params)
	s.platform = NewPlatformService(params)
}

// setupSubscription creates a funded, active subscription for user_1:
// monthly period, 0.02 native fee, 2,000,000 stable units in escrow and an
// oracle rate of 50 stable per native.
func (s *PaymentServiceSuite) setupSubscription() *dto.SubscriptionResponse {
	ctx := s.GetContext("user_1")

	sub, err := s.subscriptions.CreateSubscription(ctx, &dto.CreateSubscriptionRequest{
		FeeDestination:  "merchant_wallet",
		PeriodSeconds:   2592000,
		NativeFeeAmount: "20000000",
	})
	s.Require().NoError(err)

	account, err := s.GetStores().TokenAccountRepo.GetOrCreate(ctx, "user_1")
	s.Require().NoError(err)
	account.Balance = decimal.NewFromInt(2000000)
	_, err = s.GetStores().TokenAccountRepo.Update(ctx, account)
	s.Require().NoError(err)

	_, err = s.subscriptions.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: "2000000"})
	s.Require().NoError(err)

	s.setRate("50.0")
	return sub
}

func (s *PaymentServiceSuite) setRate(rate string) {
	_, err := s.oracle.SetPrice(s.GetContext("oracle_authority_test"), &dto.SetPriceRequest{Rate: rate})
	s.Require().NoError(err)
}

func (s *PaymentServiceSuite) accountBalance(ctx context.Context, address string) string {
	account, err := s.GetStores().TokenAccountRepo.Get(ctx, address)
	s.Require().NoError(err)
	return account.Balance.String()
}

func (s *PaymentServiceSuite) TestProcessPayment() {
	sub := s.setupSubscription()
	ctx := s.GetContext("user_1")

	// 0.02 native at 50 stable per native is exactly 1 stable unit, i.e.
	// 1,000,000 smallest units.
	receipt, err := s.service.ProcessPayment(ctx, sub.ID)
	s.NoError(err)
	s.Equal("1000000", receipt.AmountDue.String())
	s.Equal("50", receipt.Rate.String())
	s.True(receipt.PlatformFee.IsZero())

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal("1000000", stored.EscrowBalance.String())
	s.NotZero(stored.LastPaidAt)

	// The full amount settled to the fee destination.
	s.Equal("1000000", s.accountBalance(ctx, "merchant_wallet"))
	s.Equal("1000000", s.accountBalance(ctx, sub.EscrowAccountID))

	events := s.GetPublisher().Events(publisher.TopicPaymentProcessed)
	s.Len(events, 1)
}

func (s *PaymentServiceSuite) TestProcessPaymentNotDueOnRetry() {
	sub := s.setupSubscription()
	ctx := s.GetContext("user_1")

	_, err := s.service.ProcessPayment(ctx, sub.ID)
	s.NoError(err)

	// The period has not elapsed, so an immediate retry is rejected and
	// nothing changes.
	_, err = s.service.ProcessPayment(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal("1000000", stored.EscrowBalance.String())
}

func (s *PaymentServiceSuite) TestProcessPaymentDueAgainAfterPeriod() {
	sub := s.setupSubscription()
	ctx := s.GetContext("user_1")

	_, err := s.service.ProcessPayment(ctx, sub.ID)
	s.NoError(err)

	// Age the record past the billing period.
	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	stored.LastPaidAt = time.Now().UTC().Add(-2592001 * time.Second).Unix()
	_, err = s.GetStores().SubscriptionRepo.Update(ctx, stored)
	s.NoError(err)

	receipt, err := s.service.ProcessPayment(ctx, sub.ID)
	s.NoError(err)
	s.Equal("1000000", receipt.AmountDue.String())

	stored, err = s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.True(stored.EscrowBalance.IsZero())
}

func (s *PaymentServiceSuite) TestProcessPaymentWithPlatformFee() {
	// Bootstrap the platform config so the flat fee applies.
	_, err := s.platform.InitConfig(s.GetContext("admin_1"), &dto.InitPlatformConfigRequest{
		FeeWallet: "platform_fee_wallet",
	})
	s.Require().NoError(err)

	sub := s.setupSubscription()
	ctx := s.GetContext("user_1")

	receipt, err := s.service.ProcessPayment(ctx, sub.ID)
	s.NoError(err)
	s.Equal("1000000", receipt.AmountDue.String())
	s.Equal("10000", receipt.PlatformFee.String())

	// The fee comes out of the settled amount, so the escrow still drops by
	// exactly the amount due.
	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal("1000000", stored.EscrowBalance.String())

	s.Equal("990000", s.accountBalance(ctx, "merchant_wallet"))
	s.Equal("10000", s.accountBalance(ctx, "platform_fee_wallet"))
}

func (s *PaymentServiceSuite) TestProcessPaymentFeeConsumesSettlement() {
	_, err := s.platform.InitConfig(s.GetContext("admin_1"), &dto.InitPlatformConfigRequest{
		FeeWallet: "platform_fee_wallet",
	})
	s.Require().NoError(err)

	ctx := s.GetContext("user_1")

	// 0.0001 native at rate 50 prices the cycle at 5,000 stable units,
	// below the 10,000 flat fee.
	sub, err := s.subscriptions.CreateSubscription(ctx, &dto.CreateSubscriptionRequest{
		FeeDestination:  "merchant_wallet",
		PeriodSeconds:   2592000,
		NativeFeeAmount: "100000",
	})
	s.Require().NoError(err)

	account, err := s.GetStores().TokenAccountRepo.GetOrCreate(ctx, "user_1")
	s.Require().NoError(err)
	account.Balance = decimal.NewFromInt(1000000)
	_, err = s.GetStores().TokenAccountRepo.Update(ctx, account)
	s.Require().NoError(err)

	_, err = s.subscriptions.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: "1000000"})
	s.Require().NoError(err)
	s.setRate("50.0")

	// The fee is capped at the amount due, the recipient gets nothing and
	// the payment still settles.
	receipt, err := s.service.ProcessPayment(ctx, sub.ID)
	s.NoError(err)
	s.Equal("5000", receipt.AmountDue.String())
	s.Equal("5000", receipt.PlatformFee.String())

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal("995000", stored.EscrowBalance.String())

	s.Equal("5000", s.accountBalance(ctx, "platform_fee_wallet"))
	_, err = s.GetStores().TokenAccountRepo.Get(ctx, "merchant_wallet")
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestProcessPaymentInsufficientEscrow() {
	ctx := s.GetContext("user_1")

	sub, err := s.subscriptions.CreateSubscription(ctx, &dto.CreateSubscriptionRequest{
		FeeDestination:  "merchant_wallet",
		PeriodSeconds:   2592000,
		NativeFeeAmount: "20000000",
	})
	s.Require().NoError(err)

	account, err := s.GetStores().TokenAccountRepo.GetOrCreate(ctx, "user_1")
	s.Require().NoError(err)
	account.Balance = decimal.NewFromInt(500000)
	_, err = s.GetStores().TokenAccountRepo.Update(ctx, account)
	s.Require().NoError(err)

	_, err = s.subscriptions.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: "500000"})
	s.Require().NoError(err)
	s.setRate("50.0")

	_, err = s.service.ProcessPayment(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsInsufficientFunds(err))

	// Nothing moved and a failure event was emitted.
	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal("500000", stored.EscrowBalance.String())
	s.Equal(int64(0), stored.LastPaidAt)

	events := s.GetPublisher().Events(publisher.TopicPaymentFailed)
	s.Len(events, 1)
}

func (s *PaymentServiceSuite) TestProcessPaymentNotActive() {
	sub := s.setupSubscription()
	ctx := s.GetContext("user_1")

	_, err := s.subscriptions.PauseSubscription(ctx, sub.ID)
	s.Require().NoError(err)

	_, err = s.service.ProcessPayment(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentServiceSuite) TestProcessPaymentWithoutOracle() {
	ctx := s.GetContext("user_1")

	sub, err := s.subscriptions.CreateSubscription(ctx, &dto.CreateSubscriptionRequest{
		FeeDestination:  "merchant_wallet",
		PeriodSeconds:   2592000,
		NativeFeeAmount: "20000000",
	})
	s.Require().NoError(err)

	_, err = s.service.ProcessPayment(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestProcessPaymentRoundsDownToZero() {
	ctx := s.GetContext("user_1")

	// 1 smallest native unit at rate 50 is 0.05 stable smallest units,
	// which floors to zero.
	sub, err := s.subscriptions.CreateSubscription(ctx, &dto.CreateSubscriptionRequest{
		FeeDestination:  "merchant_wallet",
		PeriodSeconds:   2592000,
		NativeFeeAmount: "1",
	})
	s.Require().NoError(err)
	s.setRate("50.0")

	_, err = s.service.ProcessPayment(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestProcessPaymentTransferFailure() {
	sub := s.setupSubscription()
	ctx := s.GetContext("user_1")

	params := s.ServiceParams()
	params.Custody = &failingCustody{}
	failing := NewPaymentService(params)

	_, err := failing.ProcessPayment(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsTransferFailed(err))

	// The ledger record is untouched and no receipt was written.
	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal("2000000", stored.EscrowBalance.String())
	s.Equal(int64(0), stored.LastPaidAt)

	receipts, err := s.GetStores().ReceiptRepo.ListBySubscription(ctx, sub.ID)
	s.NoError(err)
	s.Len(receipts, 0)

	events := s.GetPublisher().Events(publisher.TopicPaymentFailed)
	s.Len(events, 1)
}

func (s *PaymentServiceSuite) TestReceipts() {
	sub := s.setupSubscription()
	ctx := s.GetContext("user_1")

	created, err := s.service.ProcessPayment(ctx, sub.ID)
	s.NoError(err)

	fetched, err := s.service.GetReceipt(ctx, created.ID)
	s.NoError(err)
	s.Equal(created.ID, fetched.ID)
	s.Equal(sub.ID, fetched.SubscriptionID)

	listed, err := s.service.ListReceipts(ctx, sub.ID)
	s.NoError(err)
	s.Len(listed, 1)
	s.Equal(created.ID, listed[0].ID)
}

// failingCustody simulates an unavailable custody backend.
type failingCustody struct{}

func (f *failingCustody) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	return ierr.NewError("custody backend unavailable").
		WithHint("The transfer could not be executed").
		Mark(ierr.ErrTransferFailed)
}
