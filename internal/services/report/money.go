package report

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatINR renders rupees rounded to paise, e.g. ₹120,000.00.
func formatINR(amount float64) string {
	cur := money.GetCurrency(money.INR)
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, money.INR).Display()
}

func formatSignedINR(amount float64) string {
	if amount > 0 {
		return "+" + formatINR(amount)
	}
	return formatINR(amount)
}

func formatSignedPct(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}
