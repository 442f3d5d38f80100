// Package aggregator merges holdings of the same fund held under several
// folios into display aggregates.
package aggregator

import (
	"fmt"
	"sort"

	"github.com/bobmcallan/folio/internal/models"
)

// Aggregate groups holdings by normalized scheme key, ignoring folio.
// Membership and constituent order depend only on the holdings themselves,
// so the result is the same for any input order. Aggregates are returned
// largest current value first. The map lists only groups with more than one
// holding.
func Aggregate(holdings []models.Holding) ([]models.AggregatedHolding, map[string]models.AggregationEntry) {
	groups := make(map[string][]models.Holding)
	for _, h := range holdings {
		groups[h.SchemeKey] = append(groups[h.SchemeKey], h)
	}

	out := make([]models.AggregatedHolding, 0, len(groups))
	entries := make(map[string]models.AggregationEntry)
	for key, group := range groups {
		sortConstituents(group)
		if len(group) == 1 {
			out = append(out, models.AggregatedHolding{
				Holding:    group[0],
				FolioCount: 1,
				Folios:     []string{group[0].Folio},
			})
			continue
		}

		agg := merge(group)
		out = append(out, agg)
		entries[key] = models.AggregationEntry{
			SchemeName:    agg.SchemeName,
			OriginalCount: len(group),
			Folios:        agg.Folios,
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentValue != out[j].CurrentValue {
			return out[i].CurrentValue > out[j].CurrentValue
		}
		return out[i].SchemeKey < out[j].SchemeKey
	})
	return out, entries
}

// merge sums a multi-folio group. Gain, gain percent and NAV are derived
// from the sums rather than summed themselves.
func merge(group []models.Holding) models.AggregatedHolding {
	h := group[0]
	h.Units, h.CurrentValue, h.CostValue = 0, 0, 0
	folios := make([]string, 0, len(group))
	for _, c := range group {
		h.Units += c.Units
		h.CurrentValue += c.CurrentValue
		h.CostValue += c.CostValue
		folios = append(folios, c.Folio)
		if c.NAVDate != nil && (h.NAVDate == nil || c.NAVDate.After(*h.NAVDate)) {
			d := *c.NAVDate
			h.NAVDate = &d
		}
	}
	h.Recompute()
	h.XIRR = models.ValueWeightedXIRR(group)
	h.Broker = commonBroker(group)
	h.Folio = fmt.Sprintf("%s (+%d more)", group[0].Folio, len(group)-1)

	return models.AggregatedHolding{
		Holding:      h,
		FolioCount:   len(group),
		Folios:       folios,
		IsAggregated: true,
	}
}

// commonBroker returns the broker shared by every constituent, or nil when
// any is unknown or they disagree.
func commonBroker(group []models.Holding) *string {
	var broker *string
	for _, c := range group {
		if c.Broker == nil {
			return nil
		}
		if broker == nil {
			b := *c.Broker
			broker = &b
			continue
		}
		if *broker != *c.Broker {
			return nil
		}
	}
	return broker
}

func sortConstituents(group []models.Holding) {
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if a.BaseFolio != b.BaseFolio {
			return a.BaseFolio < b.BaseFolio
		}
		if a.Folio != b.Folio {
			return a.Folio < b.Folio
		}
		if a.SchemeName != b.SchemeName {
			return a.SchemeName < b.SchemeName
		}
		return a.CurrentValue < b.CurrentValue
	})
}

// TotalValue sums current value across aggregates.
func TotalValue(aggs []models.AggregatedHolding) float64 {
	total := 0.0
	for _, a := range aggs {
		total += a.CurrentValue
	}
	return total
}
