package testutil

import (
	"context"

	"github.com/subledger/subledger/internal/domain/payment"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// InMemoryReceiptStore implements payment.Repository
type InMemoryReceiptStore struct {
	*InMemoryStore[*payment.Receipt]
}

func NewInMemoryReceiptStore() *InMemoryReceiptStore {
	return &InMemoryReceiptStore{
		InMemoryStore: NewInMemoryStore[*payment.Receipt](),
	}
}

func copyReceipt(receipt *payment.Receipt) *payment.Receipt {
	if receipt == nil {
		return nil
	}

	return &payment.Receipt{
		ID:             receipt.ID,
		SubscriptionID: receipt.SubscriptionID,
		AmountDue:      receipt.AmountDue,
		PlatformFee:    receipt.PlatformFee,
		Rate:           receipt.Rate,
		Timestamp:      receipt.Timestamp,
		EnvironmentID:  receipt.EnvironmentID,
		BaseModel: types.BaseModel{
			TenantID:  receipt.TenantID,
			Status:    receipt.Status,
			CreatedAt: receipt.CreatedAt,
			UpdatedAt: receipt.UpdatedAt,
			CreatedBy: receipt.CreatedBy,
			UpdatedBy: receipt.UpdatedBy,
		},
	}
}

func (s *InMemoryReceiptStore) Create(ctx context.Context, receipt *payment.Receipt) (*payment.Receipt, error) {
	if receipt == nil {
		return nil, ierr.NewError("receipt cannot be nil").
			WithHint("Receipt cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if receipt.EnvironmentID == "" {
		receipt.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	if err := s.InMemoryStore.Create(ctx, receipt.ID, copyReceipt(receipt)); err != nil {
		return nil, ierr.WithError(err).
			WithHint("A receipt with this ID already exists").
			WithReportableDetails(map[string]interface{}{
				"id": receipt.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	return copyReceipt(receipt), nil
}

func (s *InMemoryReceiptStore) Get(ctx context.Context, id string) (*payment.Receipt, error) {
	receipt, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("receipt not found").
			WithHint("Receipt not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyReceipt(receipt), nil
}

func (s *InMemoryReceiptStore) ListBySubscription(ctx context.Context, subscriptionID string) ([]*payment.Receipt, error) {
	receipts, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, receipt *payment.Receipt, _ interface{}) bool {
		return receipt.SubscriptionID == subscriptionID &&
			CheckEnvironmentFilter(ctx, receipt.EnvironmentID)
	}, func(i, j *payment.Receipt) bool {
		return i.Timestamp > j.Timestamp
	})
	if err != nil {
		return nil, err
	}

	result := make([]*payment.Receipt, 0, len(receipts))
	for _, receipt := range receipts {
		result = append(result, copyReceipt(receipt))
	}
	return result, nil
}

func (s *InMemoryReceiptStore) Clear() {
	s.InMemoryStore.Clear()
}
