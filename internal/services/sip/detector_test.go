package sip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sipTxn(scheme, key, folio string, date time.Time, amount float64) models.Transaction {
	return models.Transaction{
		Date: date, SchemeName: scheme, SchemeKey: key, Folio: folio, BaseFolio: folio,
		Type: models.TxSIP, Amount: amount, Units: amount / 50,
	}
}

func gaps(start time.Time, n, gapDays int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i*gapDays)
	}
	return dates
}

func TestInferFrequency(t *testing.T) {
	start := day(2025, 1, 1)
	tests := []struct {
		name  string
		dates []time.Time
		want  models.Frequency
	}{
		{"exact 30 day gaps", gaps(start, 6, 30), models.FrequencyMonthly},
		{"exact 7 day gaps", gaps(start, 6, 7), models.FrequencyWeekly},
		{"exact 91 day gaps", gaps(start, 4, 91), models.FrequencyQuarterly},
		{"exact 365 day gaps", gaps(start, 3, 365), models.FrequencyYearly},
		{"single installment", gaps(start, 1, 0), models.FrequencyMonthly},
		{"none", nil, models.FrequencyMonthly},
		{"boundary 20 days is monthly", gaps(start, 3, 20), models.FrequencyMonthly},
		{"19 days is weekly", gaps(start, 3, 19), models.FrequencyWeekly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferFrequency(tt.dates))
		})
	}
}

func TestInferFrequency_IrregularMonthlyGaps(t *testing.T) {
	// manual top-ups shift installments: gaps alternate 28 and 35 days
	dates := []time.Time{day(2025, 1, 1)}
	for i := 0; i < 8; i++ {
		gap := 28
		if i%2 == 1 {
			gap = 35
		}
		dates = append(dates, dates[len(dates)-1].AddDate(0, 0, gap))
	}
	assert.Equal(t, models.FrequencyMonthly, InferFrequency(dates))
}

func TestNextInstallment(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		freq models.Frequency
		want time.Time
	}{
		{"month end rollover", day(2026, 1, 31), models.FrequencyMonthly, day(2026, 2, 28)},
		{"leap february still 28", day(2024, 1, 31), models.FrequencyMonthly, day(2024, 2, 28)},
		{"31st into 30 day month", day(2026, 3, 31), models.FrequencyMonthly, day(2026, 4, 28)},
		{"mid month", day(2026, 1, 15), models.FrequencyMonthly, day(2026, 2, 15)},
		{"december into january", day(2025, 12, 10), models.FrequencyMonthly, day(2026, 1, 10)},
		{"weekly", day(2026, 2, 25), models.FrequencyWeekly, day(2026, 3, 4)},
		{"quarterly overflow", day(2025, 11, 30), models.FrequencyQuarterly, day(2026, 2, 28)},
		{"quarterly", day(2026, 1, 5), models.FrequencyQuarterly, day(2026, 4, 5)},
		{"yearly from leap day", day(2024, 2, 29), models.FrequencyYearly, day(2025, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextInstallment(tt.last, tt.freq))
		})
	}
}

func TestModeAmount(t *testing.T) {
	assert.Equal(t, 5000.0, ModeAmount([]float64{5000, 5000, 7500, 5000}))
	assert.Equal(t, 5000.0, ModeAmount([]float64{-5000, 5000.001, 7500}), "paise precision and sign ignored")
	assert.Equal(t, 7500.0, ModeAmount([]float64{5000, 7500}), "tie goes to the latest amount")
	assert.Equal(t, 0.0, ModeAmount(nil))
}

func TestDetect_ActivityBoundary(t *testing.T) {
	last := day(2026, 8, 20)
	txns := []models.Transaction{
		sipTxn("Fund A", "fund a", "1", last.AddDate(0, -1, 0), 1000),
		sipTxn("Fund A", "fund a", "1", last, 1000),
	}

	atBoundary := NewDetector(60, fixedClock(last.AddDate(0, 0, 60).Add(15*time.Hour)))
	sips := atBoundary.Detect(txns)
	require.Len(t, sips, 1)
	assert.True(t, sips[0].Active, "exactly 60 days old")

	pastBoundary := NewDetector(60, fixedClock(last.AddDate(0, 0, 61)))
	sips = pastBoundary.Detect(txns)
	require.Len(t, sips, 1)
	assert.False(t, sips[0].Active, "61 days old")
}

func TestDetect_GroupsAndSummarises(t *testing.T) {
	now := day(2026, 3, 10)
	txns := []models.Transaction{
		// out of order on purpose
		sipTxn("Fund B - Growth", "fund b", "200", day(2026, 3, 5), 2000),
		sipTxn("Fund A", "fund a", "100", day(2026, 1, 31), 5000),
		sipTxn("Fund A", "fund a", "100", day(2025, 12, 31), 5000),
		sipTxn("Fund A", "fund a", "100", day(2025, 11, 30), 6000),
		sipTxn("Fund A", "fund a", "100", day(2025, 10, 31), 5000),
		{SchemeKey: "fund a", BaseFolio: "100", Type: models.TxPurchase, Date: day(2026, 2, 1), Amount: 99999},
		sipTxn("Fund A", "fund a", "300", day(2026, 2, 1), 500),
		sipTxn("Fund B", "fund b", "200", day(2026, 2, 5), 2000),
	}

	sips := NewDetector(60, fixedClock(now)).Detect(txns)
	require.Len(t, sips, 3)

	a := sips[0]
	assert.Equal(t, "fund a", a.SchemeKey)
	assert.Equal(t, "100", a.BaseFolio)
	assert.Equal(t, 4, a.Installments)
	assert.Equal(t, 5000.0, a.Amount)
	assert.Equal(t, 21000.0, a.TotalInvested)
	assert.Equal(t, models.FrequencyMonthly, a.Frequency)
	assert.Equal(t, day(2025, 10, 31), a.StartDate)
	assert.Equal(t, day(2026, 1, 31), a.LastInstallmentDate)
	assert.Equal(t, day(2026, 2, 28), a.NextInstallmentDate)
	assert.True(t, a.Active)
	assert.Nil(t, a.Broker)

	assert.Equal(t, "300", sips[1].BaseFolio, "different folio is a separate SIP")
	assert.Equal(t, 1, sips[1].Installments)

	b := sips[2]
	assert.Equal(t, "fund b", b.SchemeKey)
	assert.Equal(t, "Fund B - Growth", b.SchemeName, "latest reported name")
	assert.Equal(t, 2, b.Installments)

	assert.Len(t, Active(sips), 3)
}

func TestDetect_NoSIPTransactions(t *testing.T) {
	txns := []models.Transaction{{Type: models.TxPurchase, Date: day(2026, 1, 1), Amount: 10}}
	assert.Empty(t, NewDetector(60, nil).Detect(txns))
	assert.Empty(t, NewDetector(60, nil).Detect(nil))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 1, DaysBetween(day(2026, 1, 1).Add(23*time.Hour), day(2026, 1, 2)))
	assert.Equal(t, 0, DaysBetween(day(2026, 1, 1), day(2026, 1, 1).Add(20*time.Hour)))
	assert.Equal(t, 365, DaysBetween(day(2025, 1, 1), day(2026, 1, 1)))
}
