package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/loader"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/report"
)

// ErrNoSnapshot is returned when no import has completed yet.
var ErrNoSnapshot = errors.New("no portfolio imported yet")

// Import runs one full reconciliation over the three exports and replaces
// the stored snapshot. Nothing is saved when the run fails. Imports are
// serialized so snapshots are replaced in completion order.
func (a *App) Import(ctx context.Context, in loader.Inputs) (*models.Portfolio, error) {
	a.importMu.Lock()
	defer a.importMu.Unlock()

	runID := uuid.New().String()
	logger := a.Logger.WithCorrelationId(runID)

	logger.Info().
		Str("holdings", in.Holdings.Name).
		Str("transactions", in.Transactions.Name).
		Str("performance", in.Performance.Name).
		Msg("Import started")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine := portfolio.NewEngine(a.Config.Engine, a.Config.Loader, logger, a.EngineOptions...)
	p, err := engine.Run(in)
	if err != nil {
		logger.Error().Err(err).Msg("Import failed")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := a.Store.SavePortfolio(ctx, p, runID); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	logger.Info().
		Int("funds", p.NumFunds).
		Int("sips", p.NumSIPs).
		Float64("total_value", p.TotalValue).
		Msg("Import complete")
	return p, nil
}

// Portfolio returns the stored snapshot, or ErrNoSnapshot.
func (a *App) Portfolio(ctx context.Context) (*models.Portfolio, error) {
	p, err := a.Store.GetPortfolio(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoSnapshot
	}
	return p, nil
}

// Summary derives the portfolio summary from the stored snapshot.
func (a *App) Summary(ctx context.Context) (*report.Summary, error) {
	p, err := a.Portfolio(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildSummary(p, report.DefaultTopN), nil
}

// ReadInputs reads the three export files from disk.
func ReadInputs(holdings, transactions, performance string) (loader.Inputs, error) {
	read := func(path string) (loader.Payload, error) {
		if path == "" {
			return loader.Payload{}, errors.New("export path is required")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return loader.Payload{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return loader.Payload{Name: filepath.Base(path), Data: data}, nil
	}

	var in loader.Inputs
	var err error
	if in.Holdings, err = read(holdings); err != nil {
		return in, fmt.Errorf("holdings: %w", err)
	}
	if in.Transactions, err = read(transactions); err != nil {
		return in, fmt.Errorf("transactions: %w", err)
	}
	if in.Performance, err = read(performance); err != nil {
		return in, fmt.Errorf("performance: %w", err)
	}
	return in, nil
}
