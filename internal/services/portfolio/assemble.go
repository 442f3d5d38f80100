package portfolio

import (
	"math"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/loader"
	"github.com/bobmcallan/folio/internal/services/sip"
)

// AssembleInput carries every pipeline output needed for the snapshot.
type AssembleInput struct {
	Holdings       []models.Holding
	Aggregated     []models.AggregatedHolding
	AggregationMap map[string]models.AggregationEntry
	SIPs           []models.SIP
	Transactions   []models.Transaction
	Brokers        map[string]models.BrokerSummary
	Summary        *loader.Summary // nil when the export has no summary cells
	Stats          models.ReconciliationStats
	InvestorName   string
	PAN            string
	Tolerance      float64
	DataSource     string
	Now            time.Time
}

// Assemble builds the Portfolio snapshot. Totals and XIRR come from the
// unaggregated holdings. A disagreement with the export's summary cells is
// logged and recorded but never changes the totals.
func Assemble(in AssembleInput, logger *common.Logger) *models.Portfolio {
	p := &models.Portfolio{
		InvestorName:       in.InvestorName,
		PAN:                in.PAN,
		Holdings:           nonNil(in.Holdings),
		AggregatedHoldings: nonNil(in.Aggregated),
		AggregationMap:     in.AggregationMap,
		SIPs:               nonNil(in.SIPs),
		ActiveSIPs:         sip.Active(in.SIPs),
		BrokerInfo:         in.Brokers,
		Reconciliation:     in.Stats,
		DataSource:         in.DataSource,
		LastUpdated:        in.Now.UTC(),
	}
	if p.AggregationMap == nil {
		p.AggregationMap = map[string]models.AggregationEntry{}
	}
	if p.BrokerInfo == nil {
		p.BrokerInfo = map[string]models.BrokerSummary{}
	}

	for _, h := range p.Holdings {
		p.TotalValue += h.CurrentValue
		p.TotalInvested += h.CostValue
	}
	p.TotalGain = p.TotalValue - p.TotalInvested
	p.TotalGainPercent = models.SafePercent(p.TotalGain, p.TotalInvested)
	p.XIRR = models.ValueWeightedXIRR(p.Holdings)
	p.CashflowXIRR = CalculateXIRR(LedgerCashFlows(in.Transactions, p.TotalValue, in.Now))

	p.NumFunds = len(p.Holdings)
	p.NumAggregatedFunds = len(p.AggregatedHoldings)
	p.NumSIPs = len(p.SIPs)
	p.NumActiveSIPs = len(p.ActiveSIPs)
	p.NumBrokers = len(p.BrokerInfo)
	p.NumTransactions = len(in.Transactions)

	p.Crosscheck = crosscheck(p, in.Summary, in.Tolerance)
	if p.Crosscheck.Available && !p.Crosscheck.Matched {
		logger.Warn().
			Float64("itemized_current", p.Crosscheck.ItemizedCurrent).
			Float64("summary_current", p.Crosscheck.SummaryCurrent).
			Float64("itemized_invested", p.Crosscheck.ItemizedInvested).
			Float64("summary_invested", p.Crosscheck.SummaryInvested).
			Float64("tolerance", in.Tolerance).
			Msg("Itemized totals disagree with export summary; using itemized totals")
	}

	return p
}

func crosscheck(p *models.Portfolio, s *loader.Summary, tolerance float64) models.Crosscheck {
	c := models.Crosscheck{
		Tolerance:        tolerance,
		ItemizedInvested: p.TotalInvested,
		ItemizedCurrent:  p.TotalValue,
		ItemizedGain:     p.TotalGain,
	}
	if s == nil {
		return c
	}
	c.Available = true
	c.SummaryInvested = s.Invested
	c.SummaryCurrent = s.Current
	c.SummaryGain = s.ProfitLoss
	c.Matched = math.Abs(c.ItemizedInvested-c.SummaryInvested) <= tolerance &&
		math.Abs(c.ItemizedCurrent-c.SummaryCurrent) <= tolerance &&
		math.Abs(c.ItemizedGain-c.SummaryGain) <= tolerance
	return c
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
