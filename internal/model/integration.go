package model

import (
	"time"

	"gorm.io/datatypes"
)

// 集成状态
const (
	IntegrationStatusActive       = "active"
	IntegrationStatusDisconnected = "disconnected"
	IntegrationStatusError        = "error"
)

// Integration 外部销售平台连接
type Integration struct {
	OwnedModel
	Platform     string            `gorm:"size:64;index;not null;comment:平台" json:"platform"`
	ShopName     string            `gorm:"size:255;comment:店铺名" json:"shop_name"`
	ShopURL      string            `gorm:"column:shop_url;size:2048;comment:店铺链接" json:"shop_url"`
	Status       string            `gorm:"size:32;index;default:active;comment:连接状态" json:"status"`
	Credentials  datatypes.JSONMap `gorm:"comment:凭证" json:"-"`
	LastSyncAt   *time.Time        `json:"last_sync_at"`
	ProductCount int               `gorm:"default:0;comment:已同步商品数" json:"product_count"`
}

func (*Integration) TableName() string {
	return "integrations"
}

// IsConnected 是否处于可用状态
func (i *Integration) IsConnected() bool {
	return i.Status == IntegrationStatusActive
}
