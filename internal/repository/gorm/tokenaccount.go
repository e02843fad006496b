package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	gormdb "gorm.io/gorm"

	domainTokenAccount "github.com/subledger/subledger/internal/domain/tokenaccount"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/types"
)

type tokenAccountRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewTokenAccountRepository(client postgres.IClient, log *logger.Logger) domainTokenAccount.Repository {
	return &tokenAccountRepository{
		client: client,
		log:    log,
	}
}

func (r *tokenAccountRepository) Get(ctx context.Context, address string) (*domainTokenAccount.TokenAccount, error) {
	span := StartRepositorySpan(ctx, "token_account", "get", map[string]interface{}{
		"address": address,
	})
	defer FinishSpan(span)

	var account domainTokenAccount.TokenAccount
	err := r.client.DB(ctx).
		Where("address = ? AND tenant_id = ? AND environment_id = ?", address, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		First(&account).Error
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewError("token account not found").
				WithHint("Token account does not exist").
				WithReportableDetails(map[string]any{
					"address": address,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get token account").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return &account, nil
}

func (r *tokenAccountRepository) GetOrCreate(ctx context.Context, address string) (*domainTokenAccount.TokenAccount, error) {
	account, err := r.Get(ctx, address)
	if err == nil {
		return account, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	account = &domainTokenAccount.TokenAccount{
		Address:       address,
		Balance:       decimal.Zero,
		EnvironmentID: types.GetEnvironmentID(ctx),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	if err := r.client.DB(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gormdb.ErrDuplicatedKey) {
			// Lost a race with a concurrent create; the row exists now.
			return r.Get(ctx, address)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create token account").
			Mark(ierr.ErrDatabase)
	}

	return account, nil
}

func (r *tokenAccountRepository) Update(ctx context.Context, account *domainTokenAccount.TokenAccount) (*domainTokenAccount.TokenAccount, error) {
	span := StartRepositorySpan(ctx, "token_account", "update", map[string]interface{}{
		"address": account.Address,
	})
	defer FinishSpan(span)

	account.UpdatedAt = time.Now().UTC()
	account.UpdatedBy = types.GetCallerID(ctx)

	result := r.client.DB(ctx).
		Model(&domainTokenAccount.TokenAccount{}).
		Where("address = ? AND tenant_id = ? AND environment_id = ?", account.Address, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		Select("balance", "updated_at", "updated_by").
		Updates(account)
	if result.Error != nil {
		SetSpanError(span, result.Error)
		return nil, ierr.WithError(result.Error).
			WithHint("Failed to update token account").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		err := ierr.NewError("token account not found").
			WithHint("Token account does not exist").
			WithReportableDetails(map[string]any{
				"address": account.Address,
			}).
			Mark(ierr.ErrNotFound)
		SetSpanError(span, err)
		return nil, err
	}

	SetSpanSuccess(span)
	return account, nil
}
