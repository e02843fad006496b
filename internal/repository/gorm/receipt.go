package gorm

import (
	"context"
	"errors"

	gormdb "gorm.io/gorm"

	domainPayment "github.com/subledger/subledger/internal/domain/payment"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/types"
)

type receiptRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewReceiptRepository(client postgres.IClient, log *logger.Logger) domainPayment.Repository {
	return &receiptRepository{
		client: client,
		log:    log,
	}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *domainPayment.Receipt) (*domainPayment.Receipt, error) {
	r.log.Debugw("creating receipt",
		"receipt_id", receipt.ID,
		"subscription_id", receipt.SubscriptionID,
		"amount_due", receipt.AmountDue.String(),
	)

	span := StartRepositorySpan(ctx, "receipt", "create", map[string]interface{}{
		"receipt_id":      receipt.ID,
		"subscription_id": receipt.SubscriptionID,
	})
	defer FinishSpan(span)

	if receipt.EnvironmentID == "" {
		receipt.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	if err := r.client.DB(ctx).Create(receipt).Error; err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to create receipt").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return receipt, nil
}

func (r *receiptRepository) Get(ctx context.Context, id string) (*domainPayment.Receipt, error) {
	span := StartRepositorySpan(ctx, "receipt", "get", map[string]interface{}{
		"receipt_id": id,
	})
	defer FinishSpan(span)

	var receipt domainPayment.Receipt
	err := r.client.DB(ctx).
		Where("id = ? AND tenant_id = ? AND environment_id = ?", id, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		First(&receipt).Error
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewError("receipt not found").
				WithHint("Receipt not found").
				WithReportableDetails(map[string]any{
					"receipt_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get receipt").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return &receipt, nil
}

func (r *receiptRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*domainPayment.Receipt, error) {
	span := StartRepositorySpan(ctx, "receipt", "list_by_subscription", map[string]interface{}{
		"subscription_id": subscriptionID,
	})
	defer FinishSpan(span)

	var receipts []*domainPayment.Receipt
	err := r.client.DB(ctx).
		Where("subscription_id = ? AND tenant_id = ? AND environment_id = ?", subscriptionID, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		Order("timestamp DESC").
		Find(&receipts).Error
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list receipts").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return receipts, nil
}
