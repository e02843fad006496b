package dto

import (
	"github.com/subledger/subledger/internal/domain/platform"
	"github.com/subledger/subledger/internal/validator"
)

type InitPlatformConfigRequest struct {
	// FeeWallet collects the per-payment platform fee.
	FeeWallet string `json:"fee_wallet" validate:"required"`
}

func (r *InitPlatformConfigRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type UpdateFeeWalletRequest struct {
	FeeWallet string `json:"fee_wallet" validate:"required"`
}

func (r *UpdateFeeWalletRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type PlatformConfigResponse struct {
	*platform.Config
}
