package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subledger/subledger/internal/api/dto"
	domainSubscription "github.com/subledger/subledger/internal/domain/subscription"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/publisher"
	"github.com/subledger/subledger/internal/types"
)

// SubscriptionService owns the subscription lifecycle: creation, status
// transitions, escrow deposits and cancellation refunds.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	PauseSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ResumeSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	Deposit(ctx context.Context, id string, req *dto.DepositRequest) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	caller := types.GetCallerID(ctx)
	if caller == "" {
		return nil, ierr.NewError("caller identity is required").
			WithHint("Authenticated caller identity is required").
			Mark(ierr.ErrPermissionDenied)
	}

	// One non-cancelled subscription per owner.
	existing, err := s.SubRepo.GetNonCancelledByOwner(ctx, caller)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, ierr.NewError("owner already has a subscription").
			WithHint("Cancel the existing subscription before creating a new one").
			WithReportableDetails(map[string]any{
				"owner_id":        caller,
				"subscription_id": existing.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	sub := req.ToSubscription(ctx, caller)
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.SubRepo.Create(ctx, sub); err != nil {
			return err
		}
		// Materialize the escrow account so deposits and payments always
		// find it.
		if _, err := s.TokenAccountRepo.GetOrCreate(ctx, sub.EscrowAccountID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription created",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
		"period_seconds", sub.PeriodSeconds,
	)

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) PauseSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, types.SubscriptionStatusPaused)
}

func (s *subscriptionService) ResumeSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, types.SubscriptionStatusActive)
}

func (s *subscriptionService) transition(ctx context.Context, id string, target types.SubscriptionStatus) (*dto.SubscriptionResponse, error) {
	var sub *domainSubscription.Subscription

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockSubscription(ctx, id); err != nil {
			return err
		}

		var err error
		sub, err = s.SubRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := sub.EnsureOwner(types.GetCallerID(ctx)); err != nil {
			return err
		}
		if err := sub.TransitionTo(target); err != nil {
			return err
		}
		_, err = s.SubRepo.Update(ctx, sub)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription status changed",
		"subscription_id", sub.ID,
		"subscription_status", sub.SubscriptionStatus,
	)

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// CancelSubscription cancels a subscription and refunds any remaining escrow
// to the owner. Cancelling an already-cancelled record is a no-op success so
// client retries are predictable.
func (s *subscriptionService) CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	var (
		sub      *domainSubscription.Subscription
		refunded decimal.Decimal
		noop     bool
	)

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockSubscription(ctx, id); err != nil {
			return err
		}

		var err error
		sub, err = s.SubRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := sub.EnsureOwner(types.GetCallerID(ctx)); err != nil {
			return err
		}

		if sub.SubscriptionStatus == types.SubscriptionStatusCancelled {
			noop = true
			return nil
		}

		// Refund before the status flips; a failed refund leaves the
		// record un-cancelled.
		refunded = sub.EscrowBalance
		if refunded.IsPositive() {
			if err := s.Custody.Transfer(ctx, sub.EscrowAccountID, sub.OwnerID, refunded); err != nil {
				return ierr.WithError(err).
					WithHint("Escrow refund failed").
					Mark(ierr.ErrTransferFailed)
			}
			sub.EscrowBalance = decimal.Zero
		}

		if err := sub.TransitionTo(types.SubscriptionStatusCancelled); err != nil {
			return err
		}
		_, err = s.SubRepo.Update(ctx, sub)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !noop {
		s.Logger.Infow("subscription cancelled",
			"subscription_id", sub.ID,
			"refunded_amount", refunded.String(),
		)

		event := publisher.SubscriptionCancelledEvent{
			SubscriptionID: sub.ID,
			OwnerID:        sub.OwnerID,
			RefundedAmount: refunded,
			Timestamp:      time.Now().UTC().Unix(),
		}
		if err := s.EventPublisher.Publish(ctx, publisher.TopicSubscriptionCancelled, event); err != nil {
			s.Logger.Errorw("failed to publish cancellation event",
				"subscription_id", sub.ID,
				"error", err,
			)
		}
	}

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// Deposit moves funds from the owner's token account into the subscription
// escrow. The ledger balance is only advanced after the custody transfer
// confirms.
func (s *subscriptionService) Deposit(ctx context.Context, id string, req *dto.DepositRequest) (*dto.SubscriptionResponse, error) {
	amount, err := req.Validate()
	if err != nil {
		return nil, err
	}

	var sub *domainSubscription.Subscription

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockSubscription(ctx, id); err != nil {
			return err
		}

		var err error
		sub, err = s.SubRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := sub.EnsureOwner(types.GetCallerID(ctx)); err != nil {
			return err
		}
		if sub.SubscriptionStatus == types.SubscriptionStatusCancelled {
			return ierr.NewError("cannot deposit into a cancelled subscription").
				WithHint("The subscription has been cancelled").
				Mark(ierr.ErrInvalidOperation)
		}

		if err := s.Custody.Transfer(ctx, sub.OwnerID, sub.EscrowAccountID, amount); err != nil {
			return ierr.WithError(err).
				WithHint("Escrow deposit failed").
				Mark(ierr.ErrTransferFailed)
		}

		sub.EscrowBalance = sub.EscrowBalance.Add(amount)
		_, err = s.SubRepo.Update(ctx, sub)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("escrow deposit settled",
		"subscription_id", sub.ID,
		"amount", amount.String(),
		"escrow_balance", sub.EscrowBalance.String(),
	)

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) lockSubscription(ctx context.Context, id string) error {
	return s.DB.LockKey(ctx, types.LockRequest{
		Key: types.GenerateLockKey(ctx, types.LockScopeSubscription, map[string]interface{}{
			"subscription_id": id,
		}),
	})
}
