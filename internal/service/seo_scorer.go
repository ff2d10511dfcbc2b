package service

import (
	"math"
	"strings"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/model"
)

// 规则阈值
const (
	SeoTitleMinLen       = 30
	SeoDescriptionMinLen = 120
	DescriptionMinLen    = 100

	seoTitleMaxLen       = 60
	seoDescriptionMaxLen = 160
)

// 严重程度
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// seoRule 一条评分规则，所有接口共用同一套权重（合计 100）
type seoRule struct {
	id             string
	weight         int
	severity       string
	category       string
	message        string
	recommendation string
	strength       string
	check          func(p *model.Product) bool
}

var seoRules = []seoRule{
	{
		id:             "seo_title",
		weight:         25,
		severity:       SeverityWarning,
		category:       "seo",
		message:        "SEO title is missing or too short",
		recommendation: "Write an SEO title of 30-60 characters containing the main keyword",
		strength:       "Optimized SEO title",
		check: func(p *model.Product) bool {
			return runeLen(p.SeoTitle) >= SeoTitleMinLen
		},
	},
	{
		id:             "seo_description",
		weight:         25,
		severity:       SeverityWarning,
		category:       "seo",
		message:        "Meta description is missing or too short",
		recommendation: "Write a meta description of 120-160 characters that summarizes the product",
		strength:       "Complete meta description",
		check: func(p *model.Product) bool {
			return runeLen(p.SeoDescription) >= SeoDescriptionMinLen
		},
	},
	{
		id:             "title",
		weight:         20,
		severity:       SeverityCritical,
		category:       "content",
		message:        "Product title is missing",
		recommendation: "Add a descriptive product title",
		strength:       "Product title present",
		check: func(p *model.Product) bool {
			return runeLen(p.Title) > 0
		},
	},
	{
		id:             "description",
		weight:         15,
		severity:       SeverityWarning,
		category:       "content",
		message:        "Product description is too short",
		recommendation: "Expand the description to at least 100 characters with features and benefits",
		strength:       "Detailed product description",
		check: func(p *model.Product) bool {
			return runeLen(p.Description) >= DescriptionMinLen
		},
	},
	{
		id:             "images",
		weight:         15,
		severity:       SeverityCritical,
		category:       "media",
		message:        "Product has no images",
		recommendation: "Add at least one high quality product image",
		strength:       "Product images present",
		check: func(p *model.Product) bool {
			return len(p.Images) > 0
		},
	},
}

func runeLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}

// ==================== 评分 ====================

// ScoreProduct 对单个商品评分，结果只依赖商品字段
func ScoreProduct(p *model.Product) dto.ProductScore {
	result := dto.ProductScore{
		ProductID: p.ID,
		Name:      p.DisplayName,
		Issues:    []dto.SeoIssue{},
		Strengths: []string{},
	}
	if result.Name == "" {
		p.FillDisplayName()
		result.Name = p.DisplayName
	}

	for _, rule := range seoRules {
		if rule.check(p) {
			result.Score += rule.weight
			result.Strengths = append(result.Strengths, rule.strength)
			continue
		}
		result.Issues = append(result.Issues, dto.SeoIssue{
			ID:             rule.id,
			Severity:       rule.severity,
			Category:       rule.category,
			Message:        rule.message,
			Recommendation: rule.recommendation,
		})
	}

	result.Status = SeoStatusForScore(result.Score)
	result.BusinessImpact = BusinessImpactForScore(result.Score)
	return result
}

// SeoStatusForScore ≥80 optimized，≥50 needs_work，其余 critical
func SeoStatusForScore(score int) string {
	switch {
	case score >= 80:
		return model.SeoStatusOptimized
	case score >= 50:
		return model.SeoStatusNeedsWork
	default:
		return model.SeoStatusCritical
	}
}

// BusinessImpactForScore 业务影响，仅由分数决定，分数越低影响越大
func BusinessImpactForScore(score int) dto.BusinessImpact {
	gap := float64(100 - score)
	impact := dto.BusinessImpact{
		EstimatedTrafficGain:    int(math.Round(gap * 0.4)),
		EstimatedConversionGain: int(math.Round(gap * 0.2)),
	}

	switch {
	case score < 50:
		impact.TrafficImpact = "high"
		impact.ConversionImpact = "high"
		impact.Priority = "urgent"
	case score < 80:
		impact.TrafficImpact = "medium"
		impact.ConversionImpact = "medium"
		impact.Priority = "high"
	default:
		impact.TrafficImpact = "low"
		impact.ConversionImpact = "low"
		impact.Priority = "normal"
	}
	return impact
}

// SummarizeScores 汇总评分
func SummarizeScores(scores []dto.ProductScore) dto.ScoreStats {
	stats := dto.ScoreStats{Total: len(scores)}
	if len(scores) == 0 {
		return stats
	}

	sum := 0
	for _, s := range scores {
		sum += s.Score
		switch s.Status {
		case model.SeoStatusOptimized:
			stats.Optimized++
		case model.SeoStatusNeedsWork:
			stats.NeedsWork++
		default:
			stats.Critical++
		}
	}
	stats.AvgScore = round2(float64(sum) / float64(len(scores)))
	return stats
}

// ==================== 文案建议 ====================

// SuggestSeo 生成确定性的 SEO 文案建议，不调用外部服务
func SuggestSeo(p *model.Product) dto.SeoSuggestion {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		p.FillDisplayName()
		title = p.DisplayName
	}

	seoTitle := title
	for _, extra := range []string{p.Brand, p.Category} {
		extra = strings.TrimSpace(extra)
		if extra != "" && !strings.Contains(strings.ToLower(seoTitle), strings.ToLower(extra)) {
			seoTitle += " | " + extra
		}
	}
	seoTitle = truncateRunes(seoTitle, seoTitleMaxLen)

	seoDescription := strings.Join(strings.Fields(p.Description), " ")
	if runeLen(seoDescription) < SeoDescriptionMinLen {
		seoDescription = buildDescriptionTemplate(title, p)
	}
	seoDescription = truncateRunes(seoDescription, seoDescriptionMaxLen)

	projected := *p
	projected.SeoTitle = seoTitle
	projected.SeoDescription = seoDescription

	return dto.SeoSuggestion{
		ProductID:      p.ID,
		SeoTitle:       seoTitle,
		SeoDescription: seoDescription,
		CurrentScore:   ScoreProduct(p).Score,
		ProjectedScore: ScoreProduct(&projected).Score,
	}
}

func buildDescriptionTemplate(title string, p *model.Product) string {
	var b strings.Builder
	b.WriteString("Discover ")
	b.WriteString(title)
	if brand := strings.TrimSpace(p.Brand); brand != "" {
		b.WriteString(" by ")
		b.WriteString(brand)
	}
	b.WriteString(".")
	if desc := strings.Join(strings.Fields(p.Description), " "); desc != "" {
		b.WriteString(" ")
		b.WriteString(desc)
	}
	if category := strings.TrimSpace(p.Category); category != "" {
		b.WriteString(" A quality choice in ")
		b.WriteString(category)
		b.WriteString(".")
	}
	b.WriteString(" Order today and enjoy fast shipping, secure checkout and easy returns.")
	return b.String()
}

func truncateRunes(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return strings.TrimSpace(string(r[:max]))
}
