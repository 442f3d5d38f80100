// Package enricher joins performance and broker attribution onto holdings
// and SIPs.
package enricher

import (
	"sort"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/identity"
	"github.com/bobmcallan/folio/internal/services/loader"
)

type attribution struct {
	name string
}

// Enricher resolves holdings and SIPs against the performance export and
// the broker annotations of the ledger. Unresolved XIRR is 0 and
// unresolved broker is nil; nothing is guessed.
type Enricher struct {
	perf    *identity.Resolver[loader.PerformanceRecord]
	brokers *identity.Resolver[attribution]
	stats   models.ReconciliationStats
}

// New indexes the performance records and, per scheme and folio, the broker
// of the most recent purchase or SIP that names one.
func New(cmp identity.Comparator, perf []loader.PerformanceRecord, txns []models.Transaction) *Enricher {
	e := &Enricher{
		perf:    identity.NewResolver[loader.PerformanceRecord](cmp),
		brokers: identity.NewResolver[attribution](cmp),
	}
	for _, p := range perf {
		e.perf.Add(p.SchemeName, p.Folio, p)
	}

	type latest struct {
		txn  models.Transaction
		name string
	}
	type key struct{ scheme, folio string }
	byKey := make(map[key]latest)
	for _, t := range txns {
		if !t.Type.IsInvestment() {
			continue
		}
		name, _ := CleanBroker(t.BrokerRaw)
		if name == "" {
			continue
		}
		k := key{t.SchemeKey, t.Folio}
		if cur, ok := byKey[k]; !ok || !t.Date.Before(cur.txn.Date) {
			byKey[k] = latest{txn: t, name: name}
		}
	}
	keys := make([]key, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].scheme != keys[j].scheme {
			return keys[i].scheme < keys[j].scheme
		}
		return keys[i].folio < keys[j].folio
	})
	for _, k := range keys {
		l := byKey[k]
		e.brokers.Add(l.txn.SchemeName, l.txn.Folio, attribution{name: l.name})
	}
	return e
}

// EnrichHoldings returns copies of holdings with XIRR and broker attached.
// Lookup outcomes are counted in Stats.
func (e *Enricher) EnrichHoldings(holdings []models.Holding) []models.Holding {
	out := make([]models.Holding, len(holdings))
	for i, h := range holdings {
		rec, kind := e.perf.Lookup(h.SchemeName, h.Folio)
		e.countXIRR(kind)
		h.XIRR = 0
		if kind != identity.MatchNone {
			h.XIRR = rec.XIRR
			if h.NAVDate == nil && rec.NAVDate != nil {
				d := *rec.NAVDate
				h.NAVDate = &d
			}
		}

		attr, kind := e.brokers.Lookup(h.SchemeName, h.Folio)
		e.countBroker(kind)
		h.Broker = nil
		if kind != identity.MatchNone {
			h.Broker = models.StringPtr(attr.name)
		}
		out[i] = h
	}
	return out
}

// EnrichSIPs returns copies of sips with XIRR and broker attached.
func (e *Enricher) EnrichSIPs(sips []models.SIP) []models.SIP {
	out := make([]models.SIP, len(sips))
	for i, s := range sips {
		s.XIRR = 0
		if rec, kind := e.perf.Lookup(s.SchemeName, s.Folio); kind != identity.MatchNone {
			s.XIRR = rec.XIRR
		}
		s.Broker = nil
		if attr, kind := e.brokers.Lookup(s.SchemeName, s.Folio); kind != identity.MatchNone {
			s.Broker = models.StringPtr(attr.name)
		}
		out[i] = s
	}
	return out
}

// Stats returns holding lookup counts accumulated by EnrichHoldings.
func (e *Enricher) Stats() models.ReconciliationStats {
	return e.stats
}

func (e *Enricher) countXIRR(kind identity.MatchKind) {
	switch kind {
	case identity.MatchExact:
		e.stats.XIRRExact++
	case identity.MatchFuzzy:
		e.stats.XIRRFuzzy++
	default:
		e.stats.XIRRUnmatched++
	}
}

func (e *Enricher) countBroker(kind identity.MatchKind) {
	switch kind {
	case identity.MatchExact:
		e.stats.BrokerExact++
	case identity.MatchFuzzy:
		e.stats.BrokerFuzzy++
	default:
		e.stats.BrokerUnmatched++
	}
}
