package model

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 商品状态
const (
	ProductStatusDraft    = "draft"
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
	ProductStatusArchived = "archived"
)

// ProductStatuses 合法状态集合
var ProductStatuses = map[string]bool{
	ProductStatusDraft:    true,
	ProductStatusActive:   true,
	ProductStatusInactive: true,
	ProductStatusArchived: true,
}

// LowStockThreshold 低库存阈值（0 < stock < 10）
const LowStockThreshold = 10

// UntitledProductName 无标题且无 SKU 时的展示名
const UntitledProductName = "Untitled product"

// Product 商品目录
type Product struct {
	OwnedModel

	// --- 基本信息 ---
	Title       string `gorm:"size:512;comment:标题" json:"title"`
	Description string `gorm:"type:text;comment:描述" json:"description"`
	SKU         string `gorm:"column:sku;size:128;index;comment:SKU" json:"sku"`
	Barcode     string `gorm:"size:128;comment:条码" json:"barcode"`
	Category    string `gorm:"size:255;index;comment:分类" json:"category"`
	Brand       string `gorm:"size:255;comment:品牌" json:"brand"`
	ProductType string `gorm:"size:128;comment:商品类型" json:"product_type"`
	Vendor      string `gorm:"size:255;comment:供应商名称" json:"vendor"`
	Status      string `gorm:"size:20;index;default:draft;comment:状态" json:"status"`
	IsPublished bool   `gorm:"default:false;comment:是否已发布" json:"is_published"`

	// --- 价格与库存 ---
	Price          float64 `gorm:"default:0;comment:售价" json:"price"`
	CompareAtPrice float64 `gorm:"default:0;comment:划线价" json:"compare_at_price"`
	CostPrice      float64 `gorm:"default:0;comment:成本价" json:"cost_price"`
	StockQuantity  int     `gorm:"default:0;comment:库存" json:"stock_quantity"`
	Weight         float64 `gorm:"default:0;comment:重量" json:"weight"`
	WeightUnit     string  `gorm:"size:8;comment:重量单位" json:"weight_unit"`

	// --- 媒体与标签 ---
	Images datatypes.JSONSlice[string] `gorm:"comment:图片URL" json:"images"`
	Tags   datatypes.JSONSlice[string] `gorm:"comment:标签" json:"tags"`

	// --- SEO ---
	SeoTitle       string `gorm:"size:255;comment:SEO标题" json:"seo_title"`
	SeoDescription string `gorm:"type:text;comment:SEO描述" json:"seo_description"`

	// --- 供应链 ---
	Supplier          string `gorm:"size:255;comment:供应商" json:"supplier"`
	SupplierURL       string `gorm:"column:supplier_url;size:2048;comment:供应商链接" json:"supplier_url"`
	SupplierProductID string `gorm:"size:128;comment:供应商商品ID" json:"supplier_product_id"`

	// 只读投影，读取时计算，永不落库
	DisplayName string `gorm:"-" json:"display_name"`
}

func (Product) TableName() string {
	return "products"
}

// AfterFind 读取后填充展示名
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.FillDisplayName()
	return nil
}

// AfterCreate 创建后填充展示名
func (p *Product) AfterCreate(tx *gorm.DB) error {
	p.FillDisplayName()
	return nil
}

// FillDisplayName 标题 > SKU > 默认名
func (p *Product) FillDisplayName() {
	switch {
	case strings.TrimSpace(p.Title) != "":
		p.DisplayName = p.Title
	case strings.TrimSpace(p.SKU) != "":
		p.DisplayName = p.SKU
	default:
		p.DisplayName = UntitledProductName
	}
}

// IsLowStock 低库存
func (p *Product) IsLowStock() bool {
	return p.StockQuantity > 0 && p.StockQuantity < LowStockThreshold
}

// IsOutOfStock 缺货
func (p *Product) IsOutOfStock() bool {
	return p.StockQuantity <= 0
}
