package models

import (
	"encoding/json"
	"time"
)

// BrokerSummary aggregates purchase and SIP activity per cleaned broker name.
type BrokerSummary struct {
	Name             string     `json:"name"`
	ARN              string     `json:"arn,omitempty"`
	TotalInvested    float64    `json:"total_invested"`
	Schemes          []string   `json:"schemes"`
	SchemeCount      int        `json:"scheme_count"`
	TransactionCount int        `json:"transaction_count"`
	FirstTransaction *time.Time `json:"first_transaction"`
	LastTransaction  *time.Time `json:"last_transaction"`
}

// Crosscheck compares itemized totals against the export's own summary cells.
// Itemized figures are authoritative; a mismatch is informational.
type Crosscheck struct {
	Available        bool    `json:"available"`
	Matched          bool    `json:"matched"`
	Tolerance        float64 `json:"tolerance"`
	SummaryInvested  float64 `json:"summary_invested"`
	SummaryCurrent   float64 `json:"summary_current"`
	SummaryGain      float64 `json:"summary_gain"`
	ItemizedInvested float64 `json:"itemized_invested"`
	ItemizedCurrent  float64 `json:"itemized_current"`
	ItemizedGain     float64 `json:"itemized_gain"`
}

// ReconciliationStats counts identity resolution outcomes and loader skips.
type ReconciliationStats struct {
	XIRRExact       int            `json:"xirr_exact"`
	XIRRFuzzy       int            `json:"xirr_fuzzy"`
	XIRRUnmatched   int            `json:"xirr_unmatched"`
	BrokerExact     int            `json:"broker_exact"`
	BrokerFuzzy     int            `json:"broker_fuzzy"`
	BrokerUnmatched int            `json:"broker_unmatched"`
	SkippedRows     map[string]int `json:"skipped_rows,omitempty"` // reason -> count
}

// Portfolio is the assembled snapshot handed to storage and presentation.
// It is always replaced wholesale.
type Portfolio struct {
	InvestorName       string                      `json:"investor_name"`
	PAN                string                      `json:"pan"`
	TotalValue         float64                     `json:"total_value"`
	TotalInvested      float64                     `json:"total_invested"`
	TotalGain          float64                     `json:"total_gain"`
	TotalGainPercent   float64                     `json:"total_gain_percent"`
	XIRR               float64                     `json:"xirr"`          // value-weighted over Holdings
	CashflowXIRR       float64                     `json:"cashflow_xirr"` // from ledger cash flows; informational
	Holdings           []Holding                   `json:"holdings"`
	AggregatedHoldings []AggregatedHolding         `json:"aggregated_holdings"`
	AggregationMap     map[string]AggregationEntry `json:"aggregation_map"`
	SIPs               []SIP                       `json:"sips"`
	ActiveSIPs         []SIP                       `json:"active_sips"`
	BrokerInfo         map[string]BrokerSummary    `json:"broker_info"`
	NumFunds           int                         `json:"num_funds"`
	NumAggregatedFunds int                         `json:"num_aggregated_funds"`
	NumSIPs            int                         `json:"num_sips"`
	NumActiveSIPs      int                         `json:"num_active_sips"`
	NumBrokers         int                         `json:"num_brokers"`
	NumTransactions    int                         `json:"num_transactions"`
	Crosscheck         Crosscheck                  `json:"crosscheck"`
	Reconciliation     ReconciliationStats         `json:"reconciliation"`
	DataSource         string                      `json:"data_source"`
	LastUpdated        time.Time                   `json:"last_updated"`
}

// StringPtr returns a pointer to s, or nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MarshalDocument encodes the snapshot as the JSON document stored and served.
func (p *Portfolio) MarshalDocument() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalDocument decodes a stored snapshot document.
func UnmarshalDocument(data []byte) (*Portfolio, error) {
	var p Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
