// Package report derives the portfolio summary and renders it as markdown.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

// DefaultTopN is the number of top and worst performers listed.
const DefaultTopN = 5

// Allocation is the share of current value held in one fund type.
type Allocation struct {
	FundType models.FundType `json:"fund_type"`
	Value    float64         `json:"value"`
	Percent  float64         `json:"percent"`
	Funds    int             `json:"funds"`
}

// Performer is one aggregated fund ranked by XIRR.
type Performer struct {
	SchemeName   string  `json:"scheme_name"`
	XIRR         float64 `json:"xirr"`
	CurrentValue float64 `json:"current_value"`
	GainPercent  float64 `json:"gain_percent"`
}

// Summary is the derived overview served by /api/portfolio/summary.
type Summary struct {
	InvestorName      string       `json:"investor_name"`
	TotalValue        float64      `json:"total_value"`
	TotalInvested     float64      `json:"total_invested"`
	TotalGain         float64      `json:"total_gain"`
	TotalGainPercent  float64      `json:"total_gain_percent"`
	XIRR              float64      `json:"xirr"`
	CashflowXIRR      float64      `json:"cashflow_xirr"`
	Allocation        []Allocation `json:"allocation"`
	TopPerformers     []Performer  `json:"top_performers"`
	WorstPerformers   []Performer  `json:"worst_performers"`
	MonthlySIP        float64      `json:"monthly_sip_commitment"`
	TotalSIPInvested  float64      `json:"total_sip_invested"`
	NumActiveSIPs     int          `json:"num_active_sips"`
	NumFunds          int          `json:"num_funds"`
	NumAggregated     int          `json:"num_aggregated_funds"`
	NumBrokers        int          `json:"num_brokers"`
	CrosscheckMatched bool         `json:"crosscheck_matched"`
}

// BuildSummary derives the summary from an assembled snapshot. Performers
// are ranked over aggregated holdings with a reported XIRR.
func BuildSummary(p *models.Portfolio, topN int) *Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}
	s := &Summary{
		InvestorName:      p.InvestorName,
		TotalValue:        p.TotalValue,
		TotalInvested:     p.TotalInvested,
		TotalGain:         p.TotalGain,
		TotalGainPercent:  p.TotalGainPercent,
		XIRR:              p.XIRR,
		CashflowXIRR:      p.CashflowXIRR,
		Allocation:        allocation(p),
		NumActiveSIPs:     p.NumActiveSIPs,
		NumFunds:          p.NumFunds,
		NumAggregated:     p.NumAggregatedFunds,
		NumBrokers:        p.NumBrokers,
		CrosscheckMatched: !p.Crosscheck.Available || p.Crosscheck.Matched,
	}
	s.TopPerformers, s.WorstPerformers = performers(p.AggregatedHoldings, topN)

	monthly := decimal.Zero
	for _, sip := range p.ActiveSIPs {
		monthly = monthly.Add(decimal.NewFromFloat(sip.Amount).Mul(decimal.NewFromFloat(sip.Frequency.MonthlyFactor())))
	}
	s.MonthlySIP = monthly.Round(2).InexactFloat64()

	invested := decimal.Zero
	for _, sip := range p.SIPs {
		invested = invested.Add(decimal.NewFromFloat(sip.TotalInvested))
	}
	s.TotalSIPInvested = invested.Round(2).InexactFloat64()

	return s
}

var fundTypeOrder = []models.FundType{
	models.FundTypeEquity,
	models.FundTypeDebt,
	models.FundTypeHybrid,
	models.FundTypeCommodity,
	models.FundTypeOther,
}

func allocation(p *models.Portfolio) []Allocation {
	byType := make(map[models.FundType]*Allocation)
	for _, h := range p.Holdings {
		a, ok := byType[h.FundType]
		if !ok {
			a = &Allocation{FundType: h.FundType}
			byType[h.FundType] = a
		}
		a.Value += h.CurrentValue
		a.Funds++
	}

	out := make([]Allocation, 0, len(byType))
	for _, ft := range fundTypeOrder {
		a, ok := byType[ft]
		if !ok {
			continue
		}
		a.Percent = models.SafePercent(a.Value, p.TotalValue)
		out = append(out, *a)
	}
	return out
}

func performers(aggs []models.AggregatedHolding, n int) (top, worst []Performer) {
	ranked := make([]Performer, 0, len(aggs))
	for _, a := range aggs {
		if a.XIRR == 0 {
			continue
		}
		ranked = append(ranked, Performer{
			SchemeName:   a.SchemeName,
			XIRR:         a.XIRR,
			CurrentValue: a.CurrentValue,
			GainPercent:  a.GainPercent,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].XIRR != ranked[j].XIRR {
			return ranked[i].XIRR > ranked[j].XIRR
		}
		return ranked[i].SchemeName < ranked[j].SchemeName
	})

	k := min(n, len(ranked))
	top = append([]Performer{}, ranked[:k]...)
	worst = make([]Performer, 0, k)
	for i := len(ranked) - 1; i >= len(ranked)-k; i-- {
		worst = append(worst, ranked[i])
	}
	return top, worst
}
