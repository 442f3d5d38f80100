// Package classifier labels ledger events from their free-text description.
package classifier

import (
	"math"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/identity"
	"github.com/bobmcallan/folio/internal/services/loader"
)

type rule struct {
	kind     models.TransactionType
	keywords []string
}

// Rules are checked in order; the first keyword hit wins. Outflows come
// first so "Switch Out - SIP" is not read as an installment, and SIP before
// purchase so "Systematic Purchase" is a sip.
var rules = []rule{
	{models.TxSwitchOut, []string{"switch-out", "switch out", "switchout", "stp out", "transfer out", "lateral shift out"}},
	{models.TxRedemption, []string{"redemption", "redeem", "swp", "systematic withdrawal"}},
	{models.TxDividend, []string{"dividend", "idcw"}},
	{models.TxSIP, []string{"sip", "systematic investment", "systematic purchase", "systematic instal"}},
	{models.TxPurchase, []string{"purchase", "buy", "additional investment", "new investment"}},
	{models.TxSwitchIn, []string{"switch-in", "switch in", "switchin", "stp in", "transfer in", "lateral shift in"}},
}

// Classify assigns a type from keywords, falling back on the sign of the
// amount when nothing matches.
func Classify(description string, amount float64) models.TransactionType {
	d := strings.ToLower(description)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(d, kw) {
				return r.kind
			}
		}
	}
	switch {
	case amount > 0:
		return models.TxPurchase
	case amount < 0:
		return models.TxRedemption
	default:
		return models.TxOther
	}
}

// Apply classifies a raw ledger record and normalises its signs: inflows
// carry positive amount and units, outflows negative. Dividends keep a
// positive amount. Broker fields are left for the enricher.
func Apply(raw loader.RawTransaction) models.Transaction {
	kind := Classify(raw.Description, raw.Amount)

	amount, units := raw.Amount, raw.Units
	switch {
	case kind.IsInflow():
		amount, units = math.Abs(amount), math.Abs(units)
	case kind.IsOutflow():
		amount, units = -math.Abs(amount), -math.Abs(units)
	case kind == models.TxDividend:
		amount = math.Abs(amount)
	}

	return models.Transaction{
		Date:        raw.Date,
		SchemeName:  raw.SchemeName,
		SchemeKey:   identity.NormalizeScheme(raw.SchemeName),
		Folio:       raw.Folio,
		BaseFolio:   identity.BaseFolio(raw.Folio),
		AMC:         raw.AMC,
		Description: raw.Description,
		Type:        kind,
		Amount:      amount,
		Units:       units,
		Price:       raw.Price,
		BrokerRaw:   raw.Broker,
	}
}

// ApplyAll classifies every record, preserving order.
func ApplyAll(raws []loader.RawTransaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(raws))
	for _, r := range raws {
		out = append(out, Apply(r))
	}
	return out
}

// Counts tallies transactions per type.
func Counts(txns []models.Transaction) map[models.TransactionType]int {
	counts := make(map[models.TransactionType]int)
	for _, t := range txns {
		counts[t.Type]++
	}
	return counts
}
