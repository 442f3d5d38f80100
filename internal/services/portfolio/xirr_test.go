package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/folio/internal/models"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestXIRR_SimpleBuyAndHold(t *testing.T) {
	// 10,000 in, worth 11,000 a year later
	xirr := CalculateXIRR([]CashFlow{
		{Date: day(2025, 1, 1), Amount: -10000},
		{Date: day(2026, 1, 1), Amount: 11000},
	})
	if !approxEqual(xirr, 10.0, 0.5) {
		t.Errorf("XIRR = %.2f%%, want ~10%%", xirr)
	}
}

func TestXIRR_ShortPeriodAnnualises(t *testing.T) {
	xirr := CalculateXIRR([]CashFlow{
		{Date: day(2025, 1, 1), Amount: -10000},
		{Date: day(2025, 7, 1), Amount: 10500},
	})
	if xirr < 9 || xirr > 12 {
		t.Errorf("XIRR = %.2f%%, want ~10.25%% for a 6-month 5%% gain", xirr)
	}
}

func TestXIRR_Loss(t *testing.T) {
	xirr := CalculateXIRR([]CashFlow{
		{Date: day(2025, 1, 1), Amount: -10000},
		{Date: day(2026, 1, 1), Amount: 8000},
	})
	if !approxEqual(xirr, -20.0, 0.5) {
		t.Errorf("XIRR = %.2f%%, want ~-20%%", xirr)
	}
}

func TestXIRR_UnsortedInput(t *testing.T) {
	flows := []CashFlow{
		{Date: day(2026, 1, 1), Amount: 11000},
		{Date: day(2025, 1, 1), Amount: -10000},
	}
	xirr := CalculateXIRR(flows)
	assert.True(t, approxEqual(xirr, 10.0, 0.5), "got %.2f", xirr)
	assert.Equal(t, 11000.0, flows[0].Amount, "input order untouched")
}

func TestXIRR_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, CalculateXIRR(nil))
	assert.Equal(t, 0.0, CalculateXIRR([]CashFlow{{Date: day(2025, 1, 1), Amount: -100}}), "no inflow")
	assert.Equal(t, 0.0, CalculateXIRR([]CashFlow{{Date: day(2025, 1, 1), Amount: 100}}), "no outflow")
}

func TestLedgerCashFlows_MonthlySIP(t *testing.T) {
	now := day(2026, 1, 1)
	var txns []models.Transaction
	for m := 0; m < 12; m++ {
		txns = append(txns, models.Transaction{Date: day(2025, time.Month(m+1), 1), Type: models.TxSIP, Amount: 1000})
	}
	txns = append(txns,
		models.Transaction{Date: day(2025, 6, 1), Type: models.TxDividend, Amount: 50},
		models.Transaction{Date: day(2025, 6, 2), Type: models.TxOther, Amount: 999},
	)

	flows := LedgerCashFlows(txns, 12800, now)
	assert.Len(t, flows, 14)
	assert.Equal(t, -1000.0, flows[0].Amount)
	assert.Equal(t, 50.0, flows[12].Amount)
	assert.Equal(t, CashFlow{Date: now, Amount: 12800}, flows[13])

	xirr := CalculateXIRR(flows)
	// ~12,000 in over the year, 12,850 back: a positive, double-digit annualised return
	if xirr < 8 || xirr > 20 {
		t.Errorf("XIRR = %.2f%%, want 8-20%%", xirr)
	}
}

func TestLedgerCashFlows_RedemptionIsInflow(t *testing.T) {
	flows := LedgerCashFlows([]models.Transaction{
		{Date: day(2025, 1, 1), Type: models.TxPurchase, Amount: 10000},
		{Date: day(2026, 1, 1), Type: models.TxRedemption, Amount: -12000},
	}, 0, day(2026, 1, 1))

	assert.Len(t, flows, 2)
	assert.Equal(t, 12000.0, flows[1].Amount)
	assert.True(t, approxEqual(CalculateXIRR(flows), 20.0, 0.5))
}
