package portfolio

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/loader"
	testcommon "github.com/bobmcallan/folio/tests/common"
)

const (
	axis = "Axis Bluechip Fund - Regular Growth"
	hdfc = "HDFC Liquid Fund"
)

var runDate = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	cfg := common.NewDefaultConfig()
	return NewEngine(cfg.Engine, cfg.Loader, common.NewSilentLogger(), WithClock(func() time.Time { return runDate }))
}

func testInputs(t *testing.T, perf []map[string]any) loader.Inputs {
	t.Helper()
	holdings := testcommon.HoldingsWorkbook(t, [3]float64{125000, 150000, 25000}, []testcommon.HoldingsRow{
		{Scheme: axis, AMC: "Axis", Category: "Equity Scheme - Large Cap", Folio: "A", Invested: 40000, Current: 50000, PL: 10000, Units: 1000},
		{Scheme: axis, AMC: "Axis", Category: "Equity Scheme - Large Cap", Folio: "A/1", Invested: 60000, Current: 70000, PL: 10000, Units: 1400},
		{Scheme: hdfc, AMC: "HDFC", Category: "Debt Scheme - Liquid", Folio: "C", Invested: 25000, Current: 30000, PL: 5000, Units: 6},
	})

	txns := []map[string]any{
		testcommon.Txn(axis, "A", "10-Jan-2025", "Purchase", 40000, 900, "ARN-999 / Other Broker"),
		testcommon.Txn(axis, "A/1", "10-Feb-2025", "Purchase", 60000, 1400, "ARN-999 / Other Broker"),
	}
	for _, d := range []string{"05-May-2026", "05-Jun-2026", "05-Jul-2026", "05-Aug-2026", "05-Sep-2026", "05-Oct-2026"} {
		txns = append(txns, testcommon.Txn(hdfc, "C", d, "Systematic Investment", 5000, 1, "ARN-12345 / Good Broker"))
	}

	return loader.Inputs{
		Holdings:     loader.Payload{Name: "holdings.xlsx", Data: holdings},
		Transactions: loader.Payload{Name: "transactions.json", Data: testcommon.LedgerJSON(t, txns)},
		Performance:  loader.Payload{Name: "performance.json", Data: testcommon.PerformanceJSON(t, perf)},
	}
}

func TestEngineRun_FullPipeline(t *testing.T) {
	in := testInputs(t, []map[string]any{
		testcommon.Perf(axis, "A", 50000, 40000, 14.2),
	})

	p, err := newTestEngine().Run(in)
	require.NoError(t, err)

	assert.Equal(t, "TEST INVESTOR", p.InvestorName)
	assert.Equal(t, "ABCDE1234F", p.PAN)
	assert.Equal(t, "MF Central", p.DataSource)
	assert.Equal(t, runDate, p.LastUpdated)

	assert.Equal(t, 3, p.NumFunds)
	assert.Equal(t, 2, p.NumAggregatedFunds)
	assert.Equal(t, 150000.0, p.TotalValue)
	assert.Equal(t, 125000.0, p.TotalInvested)
	assert.Equal(t, 25000.0, p.TotalGain)
	assert.InDelta(t, 20.0, p.TotalGainPercent, 1e-9)

	// Same scheme split across folios A and A/1 merges into one aggregate
	top := p.AggregatedHoldings[0]
	assert.True(t, top.IsAggregated)
	assert.Equal(t, 2, top.FolioCount)
	assert.Equal(t, 120000.0, top.CurrentValue)
	assert.Equal(t, 100000.0, top.CostValue)
	assert.Equal(t, 20000.0, top.Gain)
	assert.InDelta(t, 20.0, top.GainPercent, 1e-9)
	assert.InDelta(t, 14.2, top.XIRR, 1e-9)
	require.Contains(t, p.AggregationMap, top.SchemeKey)
	assert.Equal(t, 2, p.AggregationMap[top.SchemeKey].OriginalCount)

	// No performance record for the liquid fund
	var liquid models.Holding
	for _, h := range p.Holdings {
		if h.SchemeName == hdfc {
			liquid = h
		}
	}
	assert.Equal(t, 0.0, liquid.XIRR)
	assert.Equal(t, models.FundTypeDebt, liquid.FundType)
	require.NotNil(t, liquid.Broker)
	assert.Equal(t, "Good Broker", *liquid.Broker)
	assert.Equal(t, 1, p.Reconciliation.XIRRUnmatched)

	require.Len(t, p.SIPs, 1)
	s := p.SIPs[0]
	assert.Equal(t, 5000.0, s.Amount)
	assert.Equal(t, models.FrequencyMonthly, s.Frequency)
	assert.Equal(t, 6, s.Installments)
	assert.True(t, s.Active)
	assert.Equal(t, time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC), s.NextInstallmentDate)
	assert.Equal(t, 1, p.NumActiveSIPs)

	assert.Equal(t, 2, p.NumBrokers)
	assert.Contains(t, p.BrokerInfo, "Good Broker")
	assert.Contains(t, p.BrokerInfo, "Other Broker")
	assert.Equal(t, 8, p.NumTransactions)

	assert.True(t, p.Crosscheck.Available)
	assert.True(t, p.Crosscheck.Matched)
}

func TestEngineRun_NearIdenticalFundNamesNotMerged(t *testing.T) {
	nifty50 := "Motilal Oswal Nifty 50 Index Fund - Direct Plan"
	nifty500 := "Motilal Oswal Nifty 500 Index Fund - Direct Plan"
	holdings := testcommon.HoldingsWorkbook(t, [3]float64{10000, 11000, 1000}, []testcommon.HoldingsRow{
		{Scheme: nifty500, AMC: "Motilal Oswal", Category: "Other Scheme - Index Funds", Folio: "9100", Invested: 10000, Current: 11000, PL: 1000, Units: 500},
	})
	txns := []map[string]any{
		testcommon.Txn(nifty50, "9100", "05-Sep-2026", "Systematic Investment", 1000, 40, "ARN-1 / Index Desk"),
	}
	in := loader.Inputs{
		Holdings:     loader.Payload{Name: "holdings.xlsx", Data: holdings},
		Transactions: loader.Payload{Name: "transactions.json", Data: testcommon.LedgerJSON(t, txns)},
		Performance: loader.Payload{Name: "performance.json", Data: testcommon.PerformanceJSON(t, []map[string]any{
			testcommon.Perf(nifty50, "9100", 5000, 4000, 12),
		})},
	}

	p, err := newTestEngine().Run(in)
	require.NoError(t, err)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 0.0, p.Holdings[0].XIRR)
	assert.Nil(t, p.Holdings[0].Broker)
	assert.Equal(t, 0, p.Reconciliation.XIRRFuzzy)
	assert.Equal(t, 1, p.Reconciliation.XIRRUnmatched)
}

func TestEngineRun_ValueConservation(t *testing.T) {
	p, err := newTestEngine().Run(testInputs(t, []map[string]any{testcommon.Perf(axis, "A", 50000, 40000, 12)}))
	require.NoError(t, err)

	var aggTotal, aggCost float64
	for _, a := range p.AggregatedHoldings {
		aggTotal += a.CurrentValue
		aggCost += a.CostValue
	}
	assert.InDelta(t, p.TotalValue, aggTotal, 1e-6)
	assert.InDelta(t, p.TotalInvested, aggCost, 1e-6)
}

func TestEngineRun_XIRRBoundedByConstituents(t *testing.T) {
	in := testInputs(t, []map[string]any{
		testcommon.Perf(axis, "A", 50000, 40000, 8),
		testcommon.Perf(axis, "A/1", 70000, 60000, 16),
		testcommon.Perf(hdfc, "C", 30000, 25000, 6.5),
	})
	p, err := newTestEngine().Run(in)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, p.XIRR, 6.5)
	assert.LessOrEqual(t, p.XIRR, 16.0)
	assert.Equal(t, 0, p.Reconciliation.XIRRUnmatched)

	top := p.AggregatedHoldings[0]
	// (8*50000 + 16*70000) / 120000
	assert.InDelta(t, 12.6667, top.XIRR, 1e-3)
}

func TestEngineRun_Idempotent(t *testing.T) {
	in := testInputs(t, []map[string]any{testcommon.Perf(axis, "A", 50000, 40000, 14.2)})
	e := newTestEngine()

	first, err := e.Run(in)
	require.NoError(t, err)
	second, err := e.Run(in)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, a, b)
}

func TestEngineRun_StructuralFailureAborts(t *testing.T) {
	in := testInputs(t, []map[string]any{{"Scheme": axis, "Folio": "A", "CurrentValue": 1}})

	p, err := newTestEngine().Run(in)
	require.Error(t, err)
	assert.Nil(t, p)

	var se *loader.StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, loader.SourcePerformance, se.Source)
	assert.Equal(t, "Annualised XIRR", se.Field)
}

func TestEngineRun_PolicyIsExplicit(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Engine.ActivityWindowDays = 7

	e := NewEngine(cfg.Engine, cfg.Loader, common.NewSilentLogger(), WithClock(func() time.Time { return runDate }))
	p, err := e.Run(testInputs(t, []map[string]any{testcommon.Perf(axis, "A", 50000, 40000, 14.2)}))
	require.NoError(t, err)

	require.Len(t, p.SIPs, 1)
	assert.False(t, p.SIPs[0].Active, "14 days since the last installment is outside a 7 day window")
	assert.Empty(t, p.ActiveSIPs)
	assert.NotNil(t, p.ActiveSIPs)
}

func TestAssemble_CrosscheckMismatchKeepsItemizedTotals(t *testing.T) {
	p := Assemble(AssembleInput{
		Holdings: []models.Holding{
			{SchemeName: "X", CurrentValue: 110, CostValue: 100, XIRR: 9},
		},
		Summary:   &loader.Summary{Invested: 100, Current: 999, ProfitLoss: 899},
		Tolerance: 0.01,
		Now:       runDate,
	}, common.NewSilentLogger())

	assert.Equal(t, 110.0, p.TotalValue)
	assert.True(t, p.Crosscheck.Available)
	assert.False(t, p.Crosscheck.Matched)
	assert.Equal(t, 999.0, p.Crosscheck.SummaryCurrent)
	assert.InDelta(t, 10.0, p.TotalGainPercent, 1e-9)
}

func TestAssemble_EmptyInputsProduceEmptyCollections(t *testing.T) {
	p := Assemble(AssembleInput{Now: runDate}, common.NewSilentLogger())

	assert.False(t, p.Crosscheck.Available)
	assert.NotNil(t, p.Holdings)
	assert.NotNil(t, p.AggregatedHoldings)
	assert.NotNil(t, p.AggregationMap)
	assert.NotNil(t, p.SIPs)
	assert.NotNil(t, p.BrokerInfo)
	assert.Equal(t, 0.0, p.TotalGainPercent)
	assert.Equal(t, 0.0, p.XIRR)
	assert.Equal(t, 0.0, p.CashflowXIRR)
}
