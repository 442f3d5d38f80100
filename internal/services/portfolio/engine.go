// Package portfolio runs the reconciliation pipeline and assembles the
// portfolio snapshot.
package portfolio

import (
	"fmt"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/aggregator"
	"github.com/bobmcallan/folio/internal/services/classifier"
	"github.com/bobmcallan/folio/internal/services/enricher"
	"github.com/bobmcallan/folio/internal/services/identity"
	"github.com/bobmcallan/folio/internal/services/loader"
	"github.com/bobmcallan/folio/internal/services/sip"
)

// Engine runs one full pass over the three exports. It holds only policy;
// every Run starts from scratch.
type Engine struct {
	cfg       common.EngineConfig
	loaderCfg common.LoaderConfig
	logger    *common.Logger
	now       func() time.Time
	cmp       identity.Comparator
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock fixes the engine's notion of today.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithComparator replaces the fuzzy identity fallback. Nil disables it.
func WithComparator(cmp identity.Comparator) Option {
	return func(e *Engine) { e.cmp = cmp }
}

// NewEngine creates an Engine from policy values.
func NewEngine(cfg common.EngineConfig, loaderCfg common.LoaderConfig, logger *common.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		loaderCfg: loaderCfg,
		logger:    logger,
		now:       time.Now,
		cmp:       identity.NewComparator(cfg.FuzzyPrefixLength, cfg.FuzzyDriftPercent),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run loads, reconciles and assembles. Structural input errors abort the
// run with no snapshot; everything else degrades to documented sentinels.
func (e *Engine) Run(in loader.Inputs) (*models.Portfolio, error) {
	now := e.now()

	bundle, err := loader.New(e.loaderCfg, e.logger).Load(in)
	if err != nil {
		return nil, fmt.Errorf("failed to load exports: %w", err)
	}

	holdings := buildHoldings(bundle.Holdings.Rows)

	txns := enricher.AttributeBrokers(classifier.ApplyAll(bundle.Transactions))
	counts := classifier.Counts(txns)
	e.logger.Debug().
		Int("transactions", len(txns)).
		Int("sip", counts[models.TxSIP]).
		Int("purchase", counts[models.TxPurchase]).
		Int("redemption", counts[models.TxRedemption]).
		Msg("Transactions classified")

	sips := sip.NewDetector(e.cfg.ActivityWindowDays, func() time.Time { return now }).Detect(txns)

	enr := enricher.New(e.cmp, bundle.Performance, txns)
	holdings = enr.EnrichHoldings(holdings)
	sips = enr.EnrichSIPs(sips)
	stats := enr.Stats()
	stats.SkippedRows = bundle.Stats.Skipped
	e.logger.Debug().
		Int("xirr_exact", stats.XIRRExact).
		Int("xirr_fuzzy", stats.XIRRFuzzy).
		Int("xirr_unmatched", stats.XIRRUnmatched).
		Int("broker_unmatched", stats.BrokerUnmatched).
		Msg("Holdings enriched")

	aggregated, aggMap := aggregator.Aggregate(holdings)
	e.logger.Debug().Int("holdings", len(holdings)).Int("aggregated", len(aggregated)).Msg("Holdings aggregated")

	investor, pan := investorIdentity(bundle)

	p := Assemble(AssembleInput{
		Holdings:       holdings,
		Aggregated:     aggregated,
		AggregationMap: aggMap,
		SIPs:           sips,
		Transactions:   txns,
		Brokers:        enricher.BrokerSummaries(txns),
		Summary:        bundle.Holdings.Summary,
		Stats:          stats,
		InvestorName:   investor,
		PAN:            pan,
		Tolerance:      e.cfg.CrosscheckTolerance,
		DataSource:     e.cfg.DataSource,
		Now:            now,
	}, e.logger)

	e.logger.Info().
		Int("funds", p.NumFunds).
		Int("active_sips", p.NumActiveSIPs).
		Int("brokers", p.NumBrokers).
		Float64("total_value", p.TotalValue).
		Float64("xirr", p.XIRR).
		Msg("Portfolio assembled")

	return p, nil
}

// buildHoldings derives identity and gain fields for each loaded row. Gain
// is recomputed from current and cost value; the export's P&L column is
// not trusted.
func buildHoldings(rows []loader.HoldingRow) []models.Holding {
	out := make([]models.Holding, 0, len(rows))
	for _, r := range rows {
		h := models.Holding{
			SchemeName:   r.SchemeName,
			SchemeKey:    identity.NormalizeScheme(r.SchemeName),
			AMC:          r.AMC,
			Category:     r.Category,
			Folio:        r.Folio,
			BaseFolio:    identity.BaseFolio(r.Folio),
			Units:        r.Units,
			NAVDate:      r.NAVDate,
			CurrentValue: r.CurrentValue,
			CostValue:    r.CostValue,
			FundType:     models.ClassifyFundType(r.Category),
		}
		h.Recompute()
		out = append(out, h)
	}
	return out
}

// investorIdentity takes name and PAN from the first ledger record carrying
// them, then from the holdings rows.
func investorIdentity(b *loader.Bundle) (string, string) {
	var name, pan string
	for _, t := range b.Transactions {
		if name == "" {
			name = t.InvestorName
		}
		if pan == "" {
			pan = t.PAN
		}
		if name != "" && pan != "" {
			return name, pan
		}
	}
	for _, r := range b.Holdings.Rows {
		if name == "" {
			name = r.InvestorName
		}
		if pan == "" {
			pan = r.PAN
		}
	}
	return name, pan
}
