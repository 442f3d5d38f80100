package models

import "time"

// Frequency is the inferred installment cadence of a SIP.
type Frequency string

const (
	FrequencyWeekly    Frequency = "Weekly"
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyYearly    Frequency = "Yearly"
)

// MonthlyFactor converts one installment to its monthly equivalent.
func (f Frequency) MonthlyFactor() float64 {
	switch f {
	case FrequencyWeekly:
		return 52.0 / 12.0
	case FrequencyQuarterly:
		return 1.0 / 3.0
	case FrequencyYearly:
		return 1.0 / 12.0
	default:
		return 1
	}
}

// SIP is a recurring purchase pattern detected for one fund and base folio.
type SIP struct {
	SchemeName          string    `json:"scheme_name"`
	SchemeKey           string    `json:"scheme_key"`
	Folio               string    `json:"folio_number"`
	BaseFolio           string    `json:"base_folio"`
	Amount              float64   `json:"sip_amount"` // mode of observed installment amounts
	Frequency           Frequency `json:"frequency"`
	StartDate           time.Time `json:"start_date"`
	LastInstallmentDate time.Time `json:"last_installment_date"`
	NextInstallmentDate time.Time `json:"next_installment_date"`
	Installments        int       `json:"total_installments"`
	TotalInvested       float64   `json:"total_invested"`
	Active              bool      `json:"is_active"`
	XIRR                float64   `json:"xirr"`
	Broker              *string   `json:"broker"`
}
