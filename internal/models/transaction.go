package models

import "time"

// TransactionType classifies a ledger event.
type TransactionType string

const (
	TxPurchase   TransactionType = "purchase"
	TxSIP        TransactionType = "sip"
	TxRedemption TransactionType = "redemption"
	TxSwitchIn   TransactionType = "switch_in"
	TxSwitchOut  TransactionType = "switch_out"
	TxDividend   TransactionType = "dividend"
	TxOther      TransactionType = "other"
)

// IsInflow reports whether the event adds units (and invested capital).
func (t TransactionType) IsInflow() bool {
	switch t {
	case TxPurchase, TxSIP, TxSwitchIn:
		return true
	default:
		return false
	}
}

// IsOutflow reports whether the event removes units.
func (t TransactionType) IsOutflow() bool {
	return t == TxRedemption || t == TxSwitchOut
}

// IsInvestment reports whether the event counts toward broker attribution.
func (t TransactionType) IsInvestment() bool {
	return t == TxPurchase || t == TxSIP
}

// Transaction is one classified ledger event. Amount and Units are signed:
// inflows are positive, outflows negative.
type Transaction struct {
	Date        time.Time       `json:"trade_date"`
	SchemeName  string          `json:"scheme_name"`
	SchemeKey   string          `json:"scheme_key"`
	Folio       string          `json:"folio_number"`
	BaseFolio   string          `json:"base_folio"`
	AMC         string          `json:"amc,omitempty"`
	Description string          `json:"description"`
	Type        TransactionType `json:"transaction_type"`
	Amount      float64         `json:"amount"`
	Units       float64         `json:"units"`
	Price       float64         `json:"price"`
	BrokerRaw   string          `json:"broker_raw,omitempty"`
	Broker      *string         `json:"broker"`
	ARN         string          `json:"arn,omitempty"`
}
