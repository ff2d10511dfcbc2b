package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"catalog_gateway/internal/model"
	"catalog_gateway/pkg/apperr"
)

// ==================== 写入白名单 ====================

type fieldKind int

const (
	kindString fieldKind = iota
	kindFloat
	kindInt
	kindBool
	kindStringList
	kindStatus
)

// productWritableFields 客户端可写字段（JSON 键即列名）
// 不在表中的键一律静默丢弃，包括 id、user_id、时间戳和 display_name
var productWritableFields = map[string]fieldKind{
	"title":               kindString,
	"description":         kindString,
	"sku":                 kindString,
	"barcode":             kindString,
	"category":            kindString,
	"brand":               kindString,
	"product_type":        kindString,
	"vendor":              kindString,
	"weight_unit":         kindString,
	"seo_title":           kindString,
	"seo_description":     kindString,
	"supplier":            kindString,
	"supplier_url":        kindString,
	"supplier_product_id": kindString,
	"price":               kindFloat,
	"compare_at_price":    kindFloat,
	"cost_price":          kindFloat,
	"weight":              kindFloat,
	"stock_quantity":      kindInt,
	"is_published":        kindBool,
	"images":              kindStringList,
	"tags":                kindStringList,
	"status":              kindStatus,
}

// FilterProductFields 按白名单过滤并转换类型
// 类型不合法时返回 VALIDATION_ERROR 并在 details 中列出字段；过滤后为空同样返回 VALIDATION_ERROR
func FilterProductFields(input map[string]any) (map[string]any, error) {
	fields := make(map[string]any, len(input))
	invalid := make(map[string]any)

	for key, raw := range input {
		kind, ok := productWritableFields[key]
		if !ok {
			continue
		}
		v, err := coerceField(kind, raw)
		if err != nil {
			invalid[key] = err.Error()
			continue
		}
		fields[key] = v
	}

	if len(invalid) > 0 {
		return nil, apperr.Validation("Invalid field values").WithDetails(invalid)
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("No valid fields to update")
	}
	return fields, nil
}

func coerceField(kind fieldKind, raw any) (any, error) {
	switch kind {
	case kindString:
		return toString(raw)
	case kindFloat:
		return toFloat(raw)
	case kindInt:
		f, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("must be an integer")
		}
		return int(f), nil
	case kindBool:
		return toBool(raw)
	case kindStringList:
		return toStringList(raw)
	case kindStatus:
		s, ok := raw.(string)
		if !ok || !model.ProductStatuses[s] {
			return nil, fmt.Errorf("must be one of draft, active, inactive, archived")
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported field")
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("must be a string")
}

func toFloat(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be a finite number")
	}
	return f, nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("must be a boolean")
		}
		return b, nil
	}
	return false, fmt.Errorf("must be a boolean")
}

func toStringList(raw any) (datatypes.JSONSlice[string], error) {
	switch v := raw.(type) {
	case nil:
		return datatypes.JSONSlice[string]{}, nil
	case []string:
		return datatypes.JSONSlice[string](v), nil
	case []any:
		out := make(datatypes.JSONSlice[string], 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must be an array of strings")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("must be an array of strings")
}

// applyProductFields 将过滤后的字段写入模型（创建时使用）
func applyProductFields(p *model.Product, fields map[string]any) {
	for key, v := range fields {
		switch key {
		case "title":
			p.Title = v.(string)
		case "description":
			p.Description = v.(string)
		case "sku":
			p.SKU = v.(string)
		case "barcode":
			p.Barcode = v.(string)
		case "category":
			p.Category = v.(string)
		case "brand":
			p.Brand = v.(string)
		case "product_type":
			p.ProductType = v.(string)
		case "vendor":
			p.Vendor = v.(string)
		case "weight_unit":
			p.WeightUnit = v.(string)
		case "seo_title":
			p.SeoTitle = v.(string)
		case "seo_description":
			p.SeoDescription = v.(string)
		case "supplier":
			p.Supplier = v.(string)
		case "supplier_url":
			p.SupplierURL = v.(string)
		case "supplier_product_id":
			p.SupplierProductID = v.(string)
		case "price":
			p.Price = v.(float64)
		case "compare_at_price":
			p.CompareAtPrice = v.(float64)
		case "cost_price":
			p.CostPrice = v.(float64)
		case "weight":
			p.Weight = v.(float64)
		case "stock_quantity":
			p.StockQuantity = v.(int)
		case "is_published":
			p.IsPublished = v.(bool)
		case "images":
			p.Images = v.(datatypes.JSONSlice[string])
		case "tags":
			p.Tags = v.(datatypes.JSONSlice[string])
		case "status":
			p.Status = v.(string)
		}
	}
}
