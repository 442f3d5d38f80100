package common

import (
	"encoding/json"
	"testing"

	"github.com/xuri/excelize/v2"
)

// HoldingsRow is one data row of a synthetic holdings workbook.
type HoldingsRow struct {
	Scheme   string
	AMC      string
	Category string
	Folio    string
	Invested float64
	Current  float64
	PL       float64
	Units    float64
}

// Spreadsheet layout of the detailed holdings report (1-based Excel rows).
const (
	summaryExcelRow = 10
	headerExcelRow  = 12
)

var holdingsHeader = []string{
	"Scheme Name", "AMC Name", "Category", "Folio No.",
	"Invested Value", "Current Value", "Profit/Loss", "Units",
}

// HoldingsWorkbook builds an xlsx holdings export in memory: a metadata
// block, the invested/current/P&L summary cells and the header followed by rows.
func HoldingsWorkbook(t *testing.T, summary [3]float64, rows []HoldingsRow) []byte {
	t.Helper()
	return HoldingsWorkbookWithHeader(t, summary, holdingsHeader, rows)
}

// HoldingsWorkbookWithHeader is HoldingsWorkbook with a custom header row,
// for exercising missing-column handling.
func HoldingsWorkbookWithHeader(t *testing.T, summary [3]float64, header []string, rows []HoldingsRow) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	set := func(col, row int, v any) {
		name, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, name, v); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	set(1, 1, "Detailed Portfolio Report")
	set(1, 2, "Investor: TEST INVESTOR")
	set(1, summaryExcelRow-1, "Total Invested")
	set(2, summaryExcelRow-1, "Total Current Value")
	set(3, summaryExcelRow-1, "Total Profit/Loss")
	for i, v := range summary {
		set(i+1, summaryExcelRow, v)
	}
	for i, h := range header {
		set(i+1, headerExcelRow, h)
	}
	for n, r := range rows {
		row := headerExcelRow + 1 + n
		vals := []any{r.Scheme, r.AMC, r.Category, r.Folio, r.Invested, r.Current, r.PL, r.Units}
		for i, v := range vals {
			set(i+1, row, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// LedgerJSON wraps transaction records in the ledger export envelope.
func LedgerJSON(t *testing.T, recs []map[string]any) []byte {
	t.Helper()
	return mustJSON(t, map[string]any{"dtTrxnResult": recs})
}

// PerformanceJSON renders performance records as a top-level array.
func PerformanceJSON(t *testing.T, recs []map[string]any) []byte {
	t.Helper()
	return mustJSON(t, recs)
}

// Txn builds one ledger record.
func Txn(scheme, folio, date, kind string, amount, units float64, broker string) map[string]any {
	price := 0.0
	if units != 0 {
		price = amount / units
	}
	return map[string]any{
		"MF_NAME":          "Test Mutual Fund",
		"INVESTOR_NAME":    "TEST INVESTOR",
		"PAN":              "ABCDE1234F",
		"FOLIO_NUMBER":     folio,
		"PRODUCT_CODE":     "P001",
		"SCHEME_NAME":      scheme,
		"TRADE_DATE":       date,
		"TRANSACTION_TYPE": kind,
		"AMOUNT":           amount,
		"UNITS":            units,
		"PRICE":            price,
		"BROKER":           broker,
	}
}

// Perf builds one performance record.
func Perf(scheme, folio string, current, cost, xirr float64) map[string]any {
	return map[string]any{
		"Scheme":          scheme,
		"Folio":           folio,
		"AMCName":         "Test Mutual Fund",
		"UnitBal":         current / 10,
		"NAVDate":         "17-Oct-2026",
		"CurrentValue":    current,
		"CostValue":       cost,
		"Annualised XIRR": xirr,
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return data
}
