package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// CashFlow is one dated amount from the investor's point of view: money
// paid into a fund is negative, money received is positive.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// LedgerCashFlows converts classified transactions into cash flows and
// appends currentValue as a terminal inflow at now. Purchases, SIPs and
// switch-ins are outflows; redemptions, switch-outs and dividends inflows.
func LedgerCashFlows(txns []models.Transaction, currentValue float64, now time.Time) []CashFlow {
	flows := make([]CashFlow, 0, len(txns)+1)
	for _, t := range txns {
		if t.Date.IsZero() || t.Amount == 0 {
			continue
		}
		switch {
		case t.Type.IsInflow():
			flows = append(flows, CashFlow{Date: t.Date, Amount: -math.Abs(t.Amount)})
		case t.Type.IsOutflow(), t.Type == models.TxDividend:
			flows = append(flows, CashFlow{Date: t.Date, Amount: math.Abs(t.Amount)})
		}
	}
	if currentValue > 0 {
		flows = append(flows, CashFlow{Date: now, Amount: currentValue})
	}
	return flows
}

// CalculateXIRR returns the annualised internal rate of return of flows as
// a percentage, using Newton-Raphson with a bisection fallback. Returns 0
// when there is no sign change or the solver does not converge.
func CalculateXIRR(flows []CashFlow) float64 {
	if len(flows) == 0 {
		return 0
	}
	flows = append([]CashFlow(nil), flows...)
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Date.Before(flows[j].Date) })

	hasNeg, hasPos := false, false
	for _, f := range flows {
		if f.Amount < 0 {
			hasNeg = true
		}
		if f.Amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0
	}

	rate := solveXIRR(flows)
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return rate * 100
}

// solveXIRR finds r with NPV(r) = 0, where each flow is discounted by
// (1+r)^(days since first flow / 365.25). Returns a decimal rate.
func solveXIRR(flows []CashFlow) float64 {
	const (
		maxIter = 100
		tol     = 1e-7
		minRate = -0.999
	)

	baseDate := flows[0].Date
	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = f.Date.Sub(baseDate).Hours() / 24 / 365.25
	}

	invested, received := 0.0, 0.0
	for _, f := range flows {
		if f.Amount < 0 {
			invested -= f.Amount
		} else {
			received += f.Amount
		}
	}

	rate := 0.1
	if invested > 0 {
		if simple := received/invested - 1; simple > -0.9 && simple < 10 {
			rate = simple
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		npv, dnpv := 0.0, 0.0
		for i, f := range flows {
			base := 1 + rate
			if base <= 0 {
				rate = minRate
				base = 1 + rate
			}
			discount := math.Pow(base, years[i])
			if discount == 0 {
				continue
			}
			npv += f.Amount / discount
			if years[i] != 0 {
				dnpv -= years[i] * f.Amount / (discount * base)
			}
		}

		if math.Abs(npv) < tol {
			return rate
		}
		if dnpv == 0 {
			break
		}

		next := rate - npv/dnpv
		if next < minRate {
			next = minRate
		}
		if next > 100 {
			next = 100
		}
		rate = next
	}

	return bisectXIRR(flows, years)
}

// bisectXIRR brackets the root in [-0.99, 10] and bisects.
func bisectXIRR(flows []CashFlow, years []float64) float64 {
	const (
		maxIter = 200
		tol     = 1e-6
	)

	npvAt := func(rate float64) float64 {
		base := 1 + rate
		if base <= 0 {
			return math.NaN()
		}
		sum := 0.0
		for i, f := range flows {
			sum += f.Amount / math.Pow(base, years[i])
		}
		return sum
	}

	lo, hi := -0.99, 10.0
	npvLo, npvHi := npvAt(lo), npvAt(hi)
	if math.IsNaN(npvLo) || math.IsNaN(npvHi) || npvLo*npvHi > 0 {
		return math.NaN()
	}

	for iter := 0; iter < maxIter; iter++ {
		mid := (lo + hi) / 2
		npvMid := npvAt(mid)
		if math.IsNaN(npvMid) {
			return math.NaN()
		}
		if math.Abs(npvMid) < tol {
			return mid
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo, npvLo = mid, npvMid
		}
	}
	return (lo + hi) / 2
}
