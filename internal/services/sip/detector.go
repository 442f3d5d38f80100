// Package sip infers recurring installment schedules from classified
// transactions.
package sip

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

// Mean-gap thresholds, in days, separating the frequency buckets.
const (
	weeklyBelowDays    = 20
	monthlyBelowDays   = 60
	quarterlyBelowDays = 120

	// overflowDay replaces a day-of-month that does not exist in the target month.
	overflowDay = 28
)

// Detector groups SIP installments per fund and base folio. The clock is
// injected so activity is deterministic under test.
type Detector struct {
	windowDays int
	now        func() time.Time
}

// NewDetector creates a Detector. A SIP is active when its last installment
// is at most windowDays old. A nil now uses time.Now.
func NewDetector(windowDays int, now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{windowDays: windowDays, now: now}
}

type groupKey struct {
	scheme string
	folio  string
}

// Detect emits one SIP per (normalized scheme, base folio) group of sip
// transactions, sorted by scheme key then folio.
func (d *Detector) Detect(txns []models.Transaction) []models.SIP {
	groups := make(map[groupKey][]models.Transaction)
	var keys []groupKey
	for _, t := range txns {
		if t.Type != models.TxSIP || t.Date.IsZero() {
			continue
		}
		k := groupKey{t.SchemeKey, t.BaseFolio}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], t)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].scheme != keys[j].scheme {
			return keys[i].scheme < keys[j].scheme
		}
		return keys[i].folio < keys[j].folio
	})

	today := dateOf(d.now())
	sips := make([]models.SIP, 0, len(keys))
	for _, k := range keys {
		group := groups[k]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })

		dates := make([]time.Time, len(group))
		amounts := make([]float64, len(group))
		total := 0.0
		for i, t := range group {
			dates[i] = t.Date
			amounts[i] = t.Amount
			total += math.Abs(t.Amount)
		}

		first, last := group[0], group[len(group)-1]
		freq := InferFrequency(dates)
		sips = append(sips, models.SIP{
			SchemeName:          last.SchemeName,
			SchemeKey:           k.scheme,
			Folio:               last.Folio,
			BaseFolio:           k.folio,
			Amount:              ModeAmount(amounts),
			Frequency:           freq,
			StartDate:           first.Date,
			LastInstallmentDate: last.Date,
			NextInstallmentDate: NextInstallment(last.Date, freq),
			Installments:        len(group),
			TotalInvested:       total,
			Active:              d.IsActive(last.Date, today),
		})
	}
	return sips
}

// IsActive reports whether last is within the activity window of today,
// counting whole calendar days.
func (d *Detector) IsActive(last, today time.Time) bool {
	return DaysBetween(last, today) <= d.windowDays
}

// Active filters sips down to the active ones.
func Active(sips []models.SIP) []models.SIP {
	out := make([]models.SIP, 0, len(sips))
	for _, s := range sips {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// InferFrequency buckets the mean gap between consecutive dates. Fewer than
// two dates give Monthly.
func InferFrequency(dates []time.Time) models.Frequency {
	if len(dates) < 2 {
		return models.FrequencyMonthly
	}
	var sum float64
	for i := 1; i < len(dates); i++ {
		sum += float64(DaysBetween(dates[i-1], dates[i]))
	}
	mean := sum / float64(len(dates)-1)

	switch {
	case mean < weeklyBelowDays:
		return models.FrequencyWeekly
	case mean < monthlyBelowDays:
		return models.FrequencyMonthly
	case mean < quarterlyBelowDays:
		return models.FrequencyQuarterly
	default:
		return models.FrequencyYearly
	}
}

// NextInstallment adds one period to last. Month-based periods keep the
// day of month; when it does not exist in the target month (31 Jan + 1
// month) the day becomes the 28th.
func NextInstallment(last time.Time, f models.Frequency) time.Time {
	switch f {
	case models.FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case models.FrequencyQuarterly:
		return addMonths(last, 3)
	case models.FrequencyYearly:
		return addMonths(last, 12)
	default:
		return addMonths(last, 1)
	}
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if d > daysIn(first.Year(), first.Month(), t.Location()) {
		d = overflowDay
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

// ModeAmount returns the most frequent absolute amount, compared at paise
// precision. Ties go to the amount seen most recently.
func ModeAmount(amounts []float64) float64 {
	if len(amounts) == 0 {
		return 0
	}
	counts := make(map[string]int)
	lastSeen := make(map[string]int)
	values := make(map[string]float64)
	for i, a := range amounts {
		d := decimal.NewFromFloat(math.Abs(a)).Round(2)
		k := d.String()
		counts[k]++
		lastSeen[k] = i
		values[k] = d.InexactFloat64()
	}

	best := ""
	for k, c := range counts {
		if best == "" || c > counts[best] || (c == counts[best] && lastSeen[k] > lastSeen[best]) {
			best = k
		}
	}
	return values[best]
}

// DaysBetween counts calendar days from a to b using their dates only.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(dateOf(b).Sub(dateOf(a)).Hours() / 24))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
