package types

import (
	"context"
	"time"
)

// Status is the soft-delete style record status shared by all entities.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

// Metadata is a free-form string map persisted alongside entities.
type Metadata map[string]string

// BaseModel carries the audit and tenancy columns every persisted entity has.
type BaseModel struct {
	TenantID  string    `json:"tenant_id" gorm:"column:tenant_id;index"`
	Status    Status    `json:"status" gorm:"column:status"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
	CreatedBy string    `json:"created_by" gorm:"column:created_by"`
	UpdatedBy string    `json:"updated_by" gorm:"column:updated_by"`
}

// GetDefaultBaseModel returns a BaseModel stamped from the request context.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	caller := GetCallerID(ctx)
	return BaseModel{
		TenantID:  GetTenantID(ctx),
		Status:    StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: caller,
		UpdatedBy: caller,
	}
}

// TableName represents a database table name.
type TableName string

const (
	TableNameSubscriptions  TableName = "subscriptions"
	TableNamePriceOracles   TableName = "price_oracles"
	TableNamePlatformConfig TableName = "platform_configs"
	TableNameReceipts       TableName = "receipts"
	TableNameTokenAccounts  TableName = "token_accounts"
)
