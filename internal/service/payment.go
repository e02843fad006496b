package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subledger/subledger/internal/api/dto"
	domainPayment "github.com/subledger/subledger/internal/domain/payment"
	domainSubscription "github.com/subledger/subledger/internal/domain/subscription"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/publisher"
	"github.com/subledger/subledger/internal/types"
)

// PaymentService settles billing cycles: it reads the oracle, computes the
// amount due, drives the custody transfer and advances the ledger record in
// one atomic unit.
type PaymentService interface {
	ProcessPayment(ctx context.Context, subscriptionID string) (*dto.ReceiptResponse, error)
	GetReceipt(ctx context.Context, id string) (*dto.ReceiptResponse, error)
	ListReceipts(ctx context.Context, subscriptionID string) ([]*dto.ReceiptResponse, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

func (s *paymentService) ProcessPayment(ctx context.Context, subscriptionID string) (*dto.ReceiptResponse, error) {
	var (
		receipt *domainPayment.Receipt
		sub     *domainSubscription.Subscription
		event   publisher.PaymentProcessedEvent
	)

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{
			Key: types.GenerateLockKey(ctx, types.LockScopeSubscription, map[string]interface{}{
				"subscription_id": subscriptionID,
			}),
		}); err != nil {
			return err
		}

		var err error
		sub, err = s.SubRepo.Get(ctx, subscriptionID)
		if err != nil {
			return err
		}

		if sub.SubscriptionStatus != types.SubscriptionStatusActive {
			return ierr.NewError("subscription is not active").
				WithHint("Payments can only be processed for active subscriptions").
				WithReportableDetails(map[string]any{
					"subscription_id":     sub.ID,
					"subscription_status": sub.SubscriptionStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		now := time.Now().UTC()
		if !sub.IsDue(now) {
			return ierr.NewError("payment is not due yet").
				WithHint("The billing period has not elapsed").
				WithReportableDetails(map[string]any{
					"subscription_id": sub.ID,
					"next_due_at":     sub.NextDueAt(),
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		record, err := s.OracleRepo.Get(ctx, s.Config.Billing.AssetPair)
		if err != nil {
			return err
		}

		// Floor rounding: never charge more than the rate-derived amount.
		amountDue := types.NativeToStable(sub.NativeFeeAmount, record.Rate)
		if amountDue.LessThanOrEqual(decimal.Zero) {
			return ierr.NewError("computed amount due is not positive").
				WithHint("The oracle rate is too low to price this subscription").
				WithReportableDetails(map[string]any{
					"subscription_id": sub.ID,
					"rate":            record.Rate.String(),
				}).
				Mark(ierr.ErrValidation)
		}

		if sub.EscrowBalance.LessThan(amountDue) {
			return ierr.NewError("escrow balance does not cover the amount due").
				WithHint("Deposit additional funds before processing the payment").
				WithReportableDetails(map[string]any{
					"subscription_id": sub.ID,
					"escrow_balance":  sub.EscrowBalance.String(),
					"amount_due":      amountDue.String(),
				}).
				Mark(ierr.ErrInsufficientFunds)
		}

		// The platform fee comes out of the settled amount, so the escrow
		// is decremented by exactly amountDue.
		platformFee := s.platformFee(ctx, amountDue)
		recipientAmount := amountDue.Sub(platformFee)

		// The fee cap can consume the whole settlement, leaving no
		// recipient leg to move.
		if recipientAmount.IsPositive() {
			if err := s.Custody.Transfer(ctx, sub.EscrowAccountID, sub.FeeDestination, recipientAmount); err != nil {
				return ierr.WithError(err).
					WithHint("Custody transfer to the fee destination failed").
					Mark(ierr.ErrTransferFailed)
			}
		}
		if platformFee.IsPositive() {
			platformCfg, err := s.PlatformRepo.Get(ctx)
			if err != nil {
				return err
			}
			if err := s.Custody.Transfer(ctx, sub.EscrowAccountID, platformCfg.FeeWallet, platformFee); err != nil {
				return ierr.WithError(err).
					WithHint("Custody transfer of the platform fee failed").
					Mark(ierr.ErrTransferFailed)
			}
		}

		// Ledger commit happens only after the transfers confirmed; the
		// surrounding transaction guarantees funds are never marked spent
		// without actually moving.
		sub.EscrowBalance = sub.EscrowBalance.Sub(amountDue)
		sub.LastPaidAt = now.Unix()
		if _, err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		receipt = &domainPayment.Receipt{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECEIPT),
			SubscriptionID: sub.ID,
			AmountDue:      amountDue,
			PlatformFee:    platformFee,
			Rate:           record.Rate,
			Timestamp:      sub.LastPaidAt,
			EnvironmentID:  sub.EnvironmentID,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
		if _, err := s.ReceiptRepo.Create(ctx, receipt); err != nil {
			return err
		}

		event = publisher.PaymentProcessedEvent{
			ReceiptID:       receipt.ID,
			SubscriptionID:  sub.ID,
			OwnerID:         sub.OwnerID,
			AmountDue:       amountDue,
			PlatformFee:     platformFee,
			Rate:            record.Rate,
			RemainingEscrow: sub.EscrowBalance,
			NextAmountDue:   amountDue,
			Timestamp:       sub.LastPaidAt,
		}
		return nil
	})
	if err != nil {
		s.publishPaymentFailed(ctx, subscriptionID, sub, err)
		return nil, err
	}

	s.Logger.Infow("payment processed",
		"subscription_id", sub.ID,
		"receipt_id", receipt.ID,
		"amount_due", receipt.AmountDue.String(),
		"rate", receipt.Rate.String(),
	)

	if err := s.EventPublisher.Publish(ctx, publisher.TopicPaymentProcessed, event); err != nil {
		s.Logger.Errorw("failed to publish payment event",
			"subscription_id", sub.ID,
			"error", err,
		)
	}

	return &dto.ReceiptResponse{Receipt: receipt}, nil
}

func (s *paymentService) GetReceipt(ctx context.Context, id string) (*dto.ReceiptResponse, error) {
	receipt, err := s.ReceiptRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ReceiptResponse{Receipt: receipt}, nil
}

func (s *paymentService) ListReceipts(ctx context.Context, subscriptionID string) ([]*dto.ReceiptResponse, error) {
	receipts, err := s.ReceiptRepo.ListBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		responses = append(responses, &dto.ReceiptResponse{Receipt: receipt})
	}
	return responses, nil
}

// platformFee returns the flat fee capped at the amount due.
func (s *paymentService) platformFee(ctx context.Context, amountDue decimal.Decimal) decimal.Decimal {
	fee := s.Config.Billing.PlatformFee()
	if fee.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if _, err := s.PlatformRepo.Get(ctx); err != nil {
		// No fee wallet bootstrapped; the full amount settles to the fee
		// destination.
		return decimal.Zero
	}
	if fee.GreaterThan(amountDue) {
		return amountDue
	}
	return fee
}

// publishPaymentFailed emits a failure event for settlement errors only;
// eligibility rejections (not due, not active) are quiet.
func (s *paymentService) publishPaymentFailed(ctx context.Context, subscriptionID string, sub *domainSubscription.Subscription, err error) {
	if !ierr.IsTransferFailed(err) && !ierr.IsInsufficientFunds(err) {
		return
	}

	event := publisher.PaymentFailedEvent{
		SubscriptionID: subscriptionID,
		Reason:         ierr.Hint(err),
		Timestamp:      time.Now().UTC().Unix(),
	}
	if sub != nil {
		event.OwnerID = sub.OwnerID
	}

	if pubErr := s.EventPublisher.Publish(ctx, publisher.TopicPaymentFailed, event); pubErr != nil {
		s.Logger.Errorw("failed to publish payment failure event",
			"subscription_id", subscriptionID,
			"error", pubErr,
		)
	}
}
