package dto

import "time"

// IntegrationResponse 集成概要，不含凭证
type IntegrationResponse struct {
	ID           string     `json:"id"`
	Platform     string     `json:"platform"`
	ShopName     string     `json:"shop_name"`
	ShopURL      string     `json:"shop_url"`
	Status       string     `json:"status"`
	LastSyncAt   *time.Time `json:"last_sync_at"`
	ProductCount int        `json:"product_count"`
	Connected    bool       `json:"connected"`
}
