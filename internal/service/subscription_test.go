package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/subledger/subledger/internal/api/dto"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/publisher"
	"github.com/subledger/subledger/internal/types"
)

type SubscriptionServiceSuite struct {
	BaseServiceTestSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionService(s.ServiceParams())
}

func (s *SubscriptionServiceSuite) createRequest() *dto.CreateSubscriptionRequest {
	return &dto.CreateSubscriptionRequest{
		FeeDestination:  "merchant_wallet",
		PeriodSeconds:   2592000,
		NativeFeeAmount: "20000000",
	}
}

// fundAccount seeds a token account so custody transfers out of it succeed.
func (s *SubscriptionServiceSuite) fundAccount(address string, amount int64) {
	ctx := s.GetContext("user_1")
	account, err := s.GetStores().TokenAccountRepo.GetOrCreate(ctx, address)
	s.NoError(err)
	account.Balance = decimal.NewFromInt(amount)
	_, err = s.GetStores().TokenAccountRepo.Update(ctx, account)
	s.NoError(err)
}

func (s *SubscriptionServiceSuite) TestCreateSubscription() {
	ctx := s.GetContext("user_1")

	resp, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)
	s.NotNil(resp)
	s.Equal("user_1", resp.OwnerID)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Equal(int64(0), resp.LastPaidAt)
	s.True(resp.EscrowBalance.IsZero())
	s.Equal("escrow_"+resp.ID, resp.EscrowAccountID)

	// The escrow token account is materialized alongside the record.
	account, err := s.GetStores().TokenAccountRepo.Get(ctx, resp.EscrowAccountID)
	s.NoError(err)
	s.True(account.Balance.IsZero())
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionStoresEmail() {
	ctx := s.GetContext("user_1")

	req := s.createRequest()
	req.Email = "owner@example.com"

	resp, err := s.service.CreateSubscription(ctx, req)
	s.NoError(err)
	s.Equal("owner@example.com", resp.Metadata["email"])
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionValidation() {
	ctx := s.GetContext("user_1")

	testCases := []struct {
		name   string
		mutate func(req *dto.CreateSubscriptionRequest)
	}{
		{"missing fee destination", func(req *dto.CreateSubscriptionRequest) { req.FeeDestination = "" }},
		{"zero period", func(req *dto.CreateSubscriptionRequest) { req.PeriodSeconds = 0 }},
		{"negative period", func(req *dto.CreateSubscriptionRequest) { req.PeriodSeconds = -60 }},
		{"zero fee", func(req *dto.CreateSubscriptionRequest) { req.NativeFeeAmount = "0" }},
		{"malformed fee", func(req *dto.CreateSubscriptionRequest) { req.NativeFeeAmount = "abc" }},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := s.createRequest()
			tc.mutate(req)
			_, err := s.service.CreateSubscription(ctx, req)
			s.Error(err)
			s.True(ierr.IsValidation(err))
		})
	}
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionRequiresCaller() {
	_, err := s.service.CreateSubscription(s.GetContext(""), s.createRequest())
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionDuplicateOwner() {
	ctx := s.GetContext("user_1")

	_, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	_, err = s.service.CreateSubscription(ctx, s.createRequest())
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionAfterCancel() {
	ctx := s.GetContext("user_1")

	first, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	_, err = s.service.CancelSubscription(ctx, first.ID)
	s.NoError(err)

	second, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)
	s.NotEqual(first.ID, second.ID)
}

func (s *SubscriptionServiceSuite) TestPauseAndResume() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	paused, err := s.service.PauseSubscription(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPaused, paused.SubscriptionStatus)

	resumed, err := s.service.ResumeSubscription(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resumed.SubscriptionStatus)
}

func (s *SubscriptionServiceSuite) TestInvalidTransitions() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	// Resuming an active subscription is not a valid transition.
	_, err = s.service.ResumeSubscription(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.CancelSubscription(ctx, sub.ID)
	s.NoError(err)

	// Cancelled is terminal.
	_, err = s.service.PauseSubscription(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	_, err = s.service.ResumeSubscription(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestOwnershipEnforced() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	intruder := s.GetContext("user_2")
	_, err = s.service.PauseSubscription(intruder, sub.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.service.CancelSubscription(intruder, sub.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.service.Deposit(intruder, sub.ID, &dto.DepositRequest{Amount: "1000"})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SubscriptionServiceSuite) TestDeposit() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	s.fundAccount("user_1", 5000000)

	resp, err := s.service.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: "2000000"})
	s.NoError(err)
	s.Equal("2000000", resp.EscrowBalance.String())

	owner, err := s.GetStores().TokenAccountRepo.Get(ctx, "user_1")
	s.NoError(err)
	s.Equal("3000000", owner.Balance.String())

	escrow, err := s.GetStores().TokenAccountRepo.Get(ctx, sub.EscrowAccountID)
	s.NoError(err)
	s.Equal("2000000", escrow.Balance.String())
}

func (s *SubscriptionServiceSuite) TestDepositValidation() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	for _, amount := range []string{"0", "-100", "abc", ""} {
		_, err = s.service.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: amount})
		s.Error(err)
		s.True(ierr.IsValidation(err))
	}
}

func (s *SubscriptionServiceSuite) TestDepositInsufficientOwnerFunds() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	s.fundAccount("user_1", 100)

	_, err = s.service.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: "2000000"})
	s.Error(err)
	s.True(ierr.IsTransferFailed(err))

	// The escrow ledger was never advanced.
	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.True(stored.EscrowBalance.IsZero())
}

func (s *SubscriptionServiceSuite) TestDepositIntoCancelled() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	_, err = s.service.CancelSubscription(ctx, sub.ID)
	s.NoError(err)

	s.fundAccount("user_1", 5000000)
	_, err = s.service.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: "1000"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestCancelRefundsEscrow() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	s.fundAccount("user_1", 2000000)
	_, err = s.service.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: "2000000"})
	s.NoError(err)

	resp, err := s.service.CancelSubscription(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.SubscriptionStatus)
	s.True(resp.EscrowBalance.IsZero())

	// The full escrow came back to the owner's account.
	owner, err := s.GetStores().TokenAccountRepo.Get(ctx, "user_1")
	s.NoError(err)
	s.Equal("2000000", owner.Balance.String())

	events := s.GetPublisher().Events(publisher.TopicSubscriptionCancelled)
	s.Len(events, 1)
}

func (s *SubscriptionServiceSuite) TestCancelTransferFailureLeavesRecordActive() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	s.fundAccount("user_1", 2000000)
	_, err = s.service.Deposit(ctx, sub.ID, &dto.DepositRequest{Amount: "2000000"})
	s.NoError(err)

	params := s.ServiceParams()
	params.Custody = &failingCustody{}
	failing := NewSubscriptionService(params)

	// A failed refund aborts the cancel; the record keeps its status and
	// escrow balance.
	_, err = failing.CancelSubscription(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsTransferFailed(err))

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.SubscriptionStatus)
	s.Equal("2000000", stored.EscrowBalance.String())

	events := s.GetPublisher().Events(publisher.TopicSubscriptionCancelled)
	s.Len(events, 0)
}

func (s *SubscriptionServiceSuite) TestCancelIsIdempotent() {
	ctx := s.GetContext("user_1")

	sub, err := s.service.CreateSubscription(ctx, s.createRequest())
	s.NoError(err)

	_, err = s.service.CancelSubscription(ctx, sub.ID)
	s.NoError(err)

	// A second cancel succeeds without emitting another event.
	resp, err := s.service.CancelSubscription(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.SubscriptionStatus)

	events := s.GetPublisher().Events(publisher.TopicSubscriptionCancelled)
	s.Len(events, 1)
}

func (s *SubscriptionServiceSuite) TestGetSubscriptionNotFound() {
	_, err := s.service.GetSubscription(s.GetContext("user_1"), "subs_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
