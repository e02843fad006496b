package service

import (
	"context"
	"time"

	"github.com/subledger/subledger/internal/api/dto"
	domainOracle "github.com/subledger/subledger/internal/domain/oracle"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// OracleService owns the price oracle record: authority-gated updates and
// cached reads.
type OracleService interface {
	SetPrice(ctx context.Context, req *dto.SetPriceRequest) (*dto.PriceResponse, error)
	GetPrice(ctx context.Context) (*dto.PriceResponse, error)
}

type oracleService struct {
	ServiceParams
}

func NewOracleService(params ServiceParams) OracleService {
	return &oracleService{ServiceParams: params}
}

func (s *oracleService) SetPrice(ctx context.Context, req *dto.SetPriceRequest) (*dto.PriceResponse, error) {
	rate, err := req.Validate()
	if err != nil {
		return nil, err
	}

	caller := types.GetCallerID(ctx)
	if err := s.ensureAuthority(ctx, caller); err != nil {
		return nil, err
	}

	if err := domainOracle.ValidateRate(rate); err != nil {
		return nil, err
	}

	var record *domainOracle.PriceOracle

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{
			Key: types.GenerateLockKey(ctx, types.LockScopeOracle, map[string]interface{}{
				"asset_pair": s.Config.Billing.AssetPair,
			}),
		}); err != nil {
			return err
		}

		existing, err := s.OracleRepo.Get(ctx, s.Config.Billing.AssetPair)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}

		record = &domainOracle.PriceOracle{
			AssetPair:     s.Config.Billing.AssetPair,
			Rate:          rate,
			UpdatedAtUnix: time.Now().UTC().Unix(),
			EnvironmentID: types.GetEnvironmentID(ctx),
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}
		if existing != nil {
			record.CreatedAt = existing.CreatedAt
			record.CreatedBy = existing.CreatedBy
		}

		record, err = s.OracleRepo.Upsert(ctx, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("oracle price updated",
		"asset_pair", record.AssetPair,
		"rate", record.Rate.String(),
		"updated_by", record.UpdatedBy,
	)

	return &dto.PriceResponse{PriceOracle: record}, nil
}

func (s *oracleService) GetPrice(ctx context.Context) (*dto.PriceResponse, error) {
	record, err := s.OracleRepo.Get(ctx, s.Config.Billing.AssetPair)
	if err != nil {
		return nil, err
	}
	return &dto.PriceResponse{PriceOracle: record}, nil
}

// ensureAuthority accepts the configured oracle authority or the platform
// admin.
func (s *oracleService) ensureAuthority(ctx context.Context, caller string) error {
	if caller != "" && caller == s.Config.Billing.OracleAuthority {
		return nil
	}

	platformCfg, err := s.PlatformRepo.Get(ctx)
	if err == nil && platformCfg.AdminID == caller && caller != "" {
		return nil
	}

	return ierr.NewError("caller is not the oracle authority").
		WithHint("Only the oracle authority can update the price").
		Mark(ierr.ErrPermissionDenied)
}
