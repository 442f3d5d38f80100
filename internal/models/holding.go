// Package models defines data structures for Folio
package models

import (
	"strings"
	"time"
)

// FundType is the asset-class bucket derived from a scheme's category.
type FundType string

const (
	FundTypeEquity    FundType = "equity"
	FundTypeDebt      FundType = "debt"
	FundTypeHybrid    FundType = "hybrid"
	FundTypeCommodity FundType = "commodity"
	FundTypeOther     FundType = "other"
)

// ClassifyFundType maps a free-text category ("Equity Scheme - Large Cap Fund",
// "Hybrid", "Gold ETF FoF") to a FundType. Unrecognised categories are FundTypeOther.
func ClassifyFundType(category string) FundType {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "hybrid"), strings.Contains(c, "balanced"), strings.Contains(c, "arbitrage"):
		return FundTypeHybrid
	case strings.Contains(c, "equity"), strings.Contains(c, "elss"), strings.Contains(c, "index"):
		return FundTypeEquity
	case strings.Contains(c, "debt"), strings.Contains(c, "liquid"), strings.Contains(c, "bond"),
		strings.Contains(c, "gilt"), strings.Contains(c, "income"), strings.Contains(c, "money market"):
		return FundTypeDebt
	case strings.Contains(c, "gold"), strings.Contains(c, "silver"), strings.Contains(c, "commodit"):
		return FundTypeCommodity
	default:
		return FundTypeOther
	}
}

// Holding is one fund position in one folio. Rebuilt from the holdings export
// on every run.
type Holding struct {
	SchemeName   string     `json:"scheme_name"`
	SchemeKey    string     `json:"scheme_key"` // normalized scheme identity
	AMC          string     `json:"amc"`
	Category     string     `json:"category,omitempty"`
	Folio        string     `json:"folio_number"`
	BaseFolio    string     `json:"base_folio"`
	Units        float64    `json:"units"`
	NAV          float64    `json:"nav"`
	NAVDate      *time.Time `json:"nav_date,omitempty"`
	CurrentValue float64    `json:"current_value"`
	CostValue    float64    `json:"cost_value"`
	Gain         float64    `json:"gain"`
	GainPercent  float64    `json:"gain_percent"`
	FundType     FundType   `json:"fund_type"`
	XIRR         float64    `json:"xirr"`   // 0 when no performance record resolved
	Broker       *string    `json:"broker"` // nil when no broker resolved
}

// Recompute derives gain, gain percent and NAV from units, current and cost value.
func (h *Holding) Recompute() {
	h.Gain = h.CurrentValue - h.CostValue
	h.GainPercent = 0
	if h.CostValue > 0 {
		h.GainPercent = h.Gain / h.CostValue * 100
	}
	h.NAV = SafeDiv(h.CurrentValue, h.Units)
}

// AggregatedHolding merges holdings of the same fund across folios.
// Single-folio funds pass through with IsAggregated false.
type AggregatedHolding struct {
	Holding
	FolioCount   int      `json:"folio_count"`
	Folios       []string `json:"aggregated_folios"`
	IsAggregated bool     `json:"is_aggregated"`
}

// AggregationEntry records which folios were merged under a normalized key.
type AggregationEntry struct {
	SchemeName    string   `json:"scheme_name"`
	OriginalCount int      `json:"original_count"`
	Folios        []string `json:"folios"`
}

// ValueWeightedXIRR returns Σ(xirr × value) / Σ value over holdings with a
// positive current value, or 0 when that total is zero.
func ValueWeightedXIRR(holdings []Holding) float64 {
	var weighted, total float64
	for _, h := range holdings {
		if h.CurrentValue <= 0 {
			continue
		}
		weighted += h.XIRR * h.CurrentValue
		total += h.CurrentValue
	}
	return SafeDiv(weighted, total)
}
