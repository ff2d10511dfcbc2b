package dto

// ==================== 请求 DTO ====================

// ListProductsRequest 商品列表查询
type ListProductsRequest struct {
	PageQuery
	Status   string `form:"status"`
	Q        string `form:"q"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
}

// BulkUpdateProductsRequest 批量更新请求
// updates 为原始对象，字段过滤在服务层完成
type BulkUpdateProductsRequest struct {
	ProductIDs []string       `json:"product_ids"`
	Updates    map[string]any `json:"updates"`
}

// ==================== 响应 DTO ====================

// BulkUpdateProductsResponse 批量更新结果
type BulkUpdateProductsResponse struct {
	Updated int64 `json:"updated"`
}

// ProductStatsResponse 商品统计
type ProductStatsResponse struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	Active       int            `json:"active"`
	Draft        int            `json:"draft"`
	Inactive     int            `json:"inactive"`
	Archived     int            `json:"archived"`
	LowStock     int            `json:"low_stock"`
	OutOfStock   int            `json:"out_of_stock"`
	TotalValue   float64        `json:"total_value"`
	TotalCost    float64        `json:"total_cost"`
	TotalProfit  float64        `json:"total_profit"`
	AvgPrice     float64        `json:"avg_price"`
	ProfitMargin float64        `json:"profit_margin"`
}

// DeleteProductResponse 删除结果
type DeleteProductResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
