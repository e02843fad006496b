package platform

import (
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// ConfigID is the fixed primary key of the singleton platform config row.
const ConfigID = "platform_config"

// Config is the singleton platform record: the admin identity and the wallet
// that collects per-payment platform fees.
type Config struct {
	ID        string `json:"id" gorm:"column:id;primaryKey"`
	AdminID   string `json:"admin_id" gorm:"column:admin_id"`
	FeeWallet string `json:"fee_wallet" gorm:"column:fee_wallet"`

	EnvironmentID string `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (Config) TableName() string {
	return string(types.TableNamePlatformConfig)
}

// EnsureAdmin verifies that caller is the platform admin.
func (c *Config) EnsureAdmin(caller string) error {
	if c.AdminID != caller {
		return ierr.NewError("caller is not the platform admin").
			WithHint("Only the platform admin can perform this operation").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.AdminID == "" {
		return ierr.NewError("admin_id is required").
			WithHint("Platform admin is required").
			Mark(ierr.ErrValidation)
	}
	if c.FeeWallet == "" {
		return ierr.NewError("fee_wallet is required").
			WithHint("Platform fee wallet is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
