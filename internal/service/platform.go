package service

import (
	"context"

	"github.com/subledger/subledger/internal/api/dto"
	domainPlatform "github.com/subledger/subledger/internal/domain/platform"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// PlatformService manages the singleton platform config: the admin identity
// and the fee wallet that collects per-payment platform fees.
type PlatformService interface {
	InitConfig(ctx context.Context, req *dto.InitPlatformConfigRequest) (*dto.PlatformConfigResponse, error)
	UpdateFeeWallet(ctx context.Context, req *dto.UpdateFeeWalletRequest) (*dto.PlatformConfigResponse, error)
	GetConfig(ctx context.Context) (*dto.PlatformConfigResponse, error)
}

type platformService struct {
	ServiceParams
}

func NewPlatformService(params ServiceParams) PlatformService {
	return &platformService{ServiceParams: params}
}

// InitConfig bootstraps the platform config once; the caller becomes the
// admin.
func (s *platformService) InitConfig(ctx context.Context, req *dto.InitPlatformConfigRequest) (*dto.PlatformConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	caller := types.GetCallerID(ctx)
	if caller == "" {
		return nil, ierr.NewError("caller identity is required").
			WithHint("Authenticated caller identity is required").
			Mark(ierr.ErrPermissionDenied)
	}

	cfg := &domainPlatform.Config{
		ID:            domainPlatform.ConfigID,
		AdminID:       caller,
		FeeWallet:     req.FeeWallet,
		EnvironmentID: types.GetEnvironmentID(ctx),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.PlatformRepo.Create(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("platform config initialized",
		"admin_id", cfg.AdminID,
		"fee_wallet", cfg.FeeWallet,
	)

	return &dto.PlatformConfigResponse{Config: cfg}, nil
}

func (s *platformService) UpdateFeeWallet(ctx context.Context, req *dto.UpdateFeeWalletRequest) (*dto.PlatformConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.PlatformRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureAdmin(types.GetCallerID(ctx)); err != nil {
		return nil, err
	}

	cfg.FeeWallet = req.FeeWallet
	cfg, err = s.PlatformRepo.Update(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("platform fee wallet updated", "fee_wallet", cfg.FeeWallet)

	return &dto.PlatformConfigResponse{Config: cfg}, nil
}

func (s *platformService) GetConfig(ctx context.Context) (*dto.PlatformConfigResponse, error) {
	cfg, err := s.PlatformRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.PlatformConfigResponse{Config: cfg}, nil
}
