// Package loader reads and structurally validates the holdings, transaction
// and performance exports.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/folio/internal/common"
)

const (
	SourceHoldings     = "holdings"
	SourceTransactions = "transactions"
	SourcePerformance  = "performance"
)

// Payload is one uploaded export. Name is used for format detection only.
type Payload struct {
	Name string
	Data []byte
}

// Inputs holds the three exports consumed by a single run.
type Inputs struct {
	Holdings     Payload
	Transactions Payload
	Performance  Payload
}

// HoldingRow is one position from the holdings export.
type HoldingRow struct {
	SchemeName   string
	AMC          string
	Category     string
	Folio        string
	Units        float64
	CurrentValue float64
	CostValue    float64
	ProfitLoss   float64
	NAVDate      *time.Time
	InvestorName string
	PAN          string
}

// Summary holds the pre-computed totals from the spreadsheet summary cells.
type Summary struct {
	Invested   float64
	Current    float64
	ProfitLoss float64
}

// HoldingsExport is the parsed holdings export. Summary is nil when the
// source carries no summary cells.
type HoldingsExport struct {
	Format  string
	Rows    []HoldingRow
	Summary *Summary
}

// RawTransaction is one ledger record before classification.
type RawTransaction struct {
	Date         time.Time
	SchemeName   string
	Folio        string
	AMC          string
	ProductCode  string
	Description  string
	Amount       float64
	Units        float64
	Price        float64
	Broker       string
	InvestorName string
	PAN          string
}

// PerformanceRecord is one per-fund return figure from the performance export.
type PerformanceRecord struct {
	SchemeName   string
	Folio        string
	AMC          string
	Units        float64
	CurrentValue float64
	CostValue    float64
	XIRR         float64
	NAVDate      *time.Time
}

// Bundle is the validated output of all three loads.
type Bundle struct {
	Holdings     *HoldingsExport
	Transactions []RawTransaction
	Performance  []PerformanceRecord
	Stats        Stats
}

// Loader parses exports according to LoaderConfig. Create one per run.
type Loader struct {
	cfg    common.LoaderConfig
	logger *common.Logger
	stats  Stats
}

// New creates a Loader.
func New(cfg common.LoaderConfig, logger *common.Logger) *Loader {
	return &Loader{cfg: cfg, logger: logger}
}

// Stats returns the skip counts accumulated so far.
func (l *Loader) Stats() Stats {
	return l.stats
}

// Load parses all three exports. Any structural error aborts the whole load.
func (l *Loader) Load(in Inputs) (*Bundle, error) {
	l.stats = Stats{}

	holdings, err := l.LoadHoldings(in.Holdings)
	if err != nil {
		return nil, err
	}
	txns, err := l.LoadTransactions(in.Transactions)
	if err != nil {
		return nil, err
	}
	perf, err := l.LoadPerformance(in.Performance)
	if err != nil {
		return nil, err
	}

	l.logger.Debug().
		Str("holdings_format", holdings.Format).
		Int("holdings", len(holdings.Rows)).
		Int("transactions", len(txns)).
		Int("performance", len(perf)).
		Int("skipped", l.stats.Total()).
		Msg("Exports loaded")

	return &Bundle{
		Holdings:     holdings,
		Transactions: txns,
		Performance:  perf,
		Stats:        l.stats,
	}, nil
}

func (l *Loader) skip(source, reason string, index int) {
	l.stats.skip(source, reason)
	l.logger.Debug().Str("source", source).Str("reason", reason).Int("record", index).Msg("Skipping record")
}

// Export formats.
const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
	FormatJSON = "json"
)

// DetectFormat picks a payload format from its file extension, falling back
// to the leading bytes.
func DetectFormat(p Payload) (string, error) {
	switch strings.ToLower(filepath.Ext(p.Name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".json":
		return FormatJSON, nil
	}

	data := p.Data
	switch {
	case len(data) >= 2 && data[0] == 'P' && data[1] == 'K':
		return FormatXLSX, nil
	case len(data) >= 4 && data[0] == 0xD0 && data[1] == 0xCF && data[2] == 0x11 && data[3] == 0xE0:
		return FormatXLS, nil
	}
	trimmed := strings.TrimSpace(strings.TrimPrefix(string(firstBytes(data, 64)), "\ufeff"))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unrecognised export format for %q", p.Name)
}

func firstBytes(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}
