package loader

import (
	"fmt"
	"strings"
)

// Holdings spreadsheet columns.
const (
	ColScheme   = "Scheme Name"
	ColAMC      = "AMC Name"
	ColCategory = "Category"
	ColFolio    = "Folio No."
	ColInvested = "Invested Value"
	ColCurrent  = "Current Value"
	ColPL       = "Profit/Loss"
	ColUnits    = "Units"
)

var requiredColumns = []string{ColScheme, ColAMC, ColCategory, ColFolio, ColInvested, ColCurrent, ColPL, ColUnits}

// Consolidated valuation JSON keys.
const (
	keyHoldScheme   = "Scheme"
	keyHoldFolio    = "Folio"
	keyHoldUnits    = "Unit Balance"
	keyHoldCurrent  = "Current Value(Rs.)"
	keyHoldCost     = "Cost Value(Rs.)"
	keyHoldAMC      = "AMC Name"
	keyHoldType     = "Type"
	keyHoldNAVDate  = "NAV Date"
	keyHoldInvestor = "Investor Name"
	keyHoldPAN      = "PAN"
)

// LoadHoldings parses the holdings export from an xlsx or xls workbook, or
// from consolidated-valuation JSON.
func (l *Loader) LoadHoldings(p Payload) (*HoldingsExport, error) {
	if len(p.Data) == 0 {
		return nil, &StructuralError{Source: SourceHoldings, Reason: "empty payload"}
	}
	format, err := DetectFormat(p)
	if err != nil {
		return nil, &StructuralError{Source: SourceHoldings, Reason: err.Error()}
	}

	var grid [][]string
	switch format {
	case FormatJSON:
		return l.holdingsFromJSON(p.Data)
	case FormatXLS:
		grid, err = readXLS(p.Data)
	default:
		grid, err = readXLSX(p.Data, l.cfg.HoldingsSheet)
	}
	if err != nil {
		return nil, &StructuralError{Source: SourceHoldings, Reason: err.Error()}
	}

	export, err := l.holdingsFromGrid(grid)
	if err != nil {
		return nil, err
	}
	export.Format = format
	return export, nil
}

// holdingsFromGrid reads the header at HeaderRow, the summary cells at
// SummaryRow and every data row below the header.
func (l *Loader) holdingsFromGrid(grid [][]string) (*HoldingsExport, error) {
	if len(grid) <= l.cfg.HeaderRow {
		return nil, &StructuralError{Source: SourceHoldings, Reason: fmt.Sprintf("header row %d not present", l.cfg.HeaderRow)}
	}

	cols := make(map[string]int)
	for i, name := range grid[l.cfg.HeaderRow] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idx := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		i, ok := cols[strings.ToLower(name)]
		if !ok {
			return nil, &StructuralError{Source: SourceHoldings, Field: name, Reason: "missing required column"}
		}
		idx[name] = i
	}

	export := &HoldingsExport{Summary: l.summary(grid)}

	data := grid[l.cfg.HeaderRow+1:]
	for n, row := range data {
		if isBlankRow(row) {
			continue
		}

		scheme := strings.TrimSpace(cell(row, idx[ColScheme]))
		if scheme == "" {
			l.skip(SourceHoldings, SkipEmptyScheme, n)
			continue
		}

		var nums [4]float64
		bad := false
		for i, col := range []string{ColInvested, ColCurrent, ColPL, ColUnits} {
			v, _, err := parseAmount(cell(row, idx[col]))
			if err != nil {
				bad = true
				break
			}
			nums[i] = v
		}
		if bad {
			l.skip(SourceHoldings, SkipInvalidNumber, n)
			continue
		}
		cost, current, pl, units := nums[0], nums[1], nums[2], nums[3]
		if cost == 0 && current == 0 {
			l.skip(SourceHoldings, SkipZeroPosition, n)
			continue
		}

		export.Rows = append(export.Rows, HoldingRow{
			SchemeName:   scheme,
			AMC:          strings.TrimSpace(cell(row, idx[ColAMC])),
			Category:     strings.TrimSpace(cell(row, idx[ColCategory])),
			Folio:        strings.TrimSpace(cell(row, idx[ColFolio])),
			Units:        units,
			CurrentValue: current,
			CostValue:    cost,
			ProfitLoss:   pl,
		})
	}

	if len(export.Rows) == 0 {
		return nil, noOpenPositions()
	}
	return export, nil
}

// summary reads invested, current and P&L totals from the first three cells
// of SummaryRow. Returns nil when any of them is absent or not numeric.
func (l *Loader) summary(grid [][]string) *Summary {
	if l.cfg.SummaryRow < 0 || l.cfg.SummaryRow >= len(grid) || l.cfg.SummaryRow == l.cfg.HeaderRow {
		return nil
	}
	row := grid[l.cfg.SummaryRow]
	var vals [3]float64
	for i := range vals {
		v, ok, err := parseAmount(cell(row, i))
		if err != nil || !ok {
			l.logger.Debug().Int("row", l.cfg.SummaryRow).Int("col", i).Msg("Summary cell unavailable")
			return nil
		}
		vals[i] = v
	}
	return &Summary{Invested: vals[0], Current: vals[1], ProfitLoss: vals[2]}
}

func (l *Loader) holdingsFromJSON(data []byte) (*HoldingsExport, error) {
	recs, err := records(SourceHoldings, data, l.cfg.HoldingsRecordsPath)
	if err != nil {
		return nil, err
	}
	if err := requireKeys(SourceHoldings, recs, keyHoldScheme, keyHoldFolio, keyHoldUnits, keyHoldCurrent, keyHoldCost); err != nil {
		return nil, err
	}

	export := &HoldingsExport{Format: FormatJSON}
	for n, r := range recs {
		m, ok := r.(map[string]any)
		if !ok {
			l.skip(SourceHoldings, SkipNotRecord, n)
			continue
		}
		scheme := str(m, keyHoldScheme)
		if scheme == "" {
			l.skip(SourceHoldings, SkipEmptyScheme, n)
			continue
		}
		units, _, err1 := parseValue(m[keyHoldUnits])
		current, _, err2 := parseValue(m[keyHoldCurrent])
		cost, _, err3 := parseValue(m[keyHoldCost])
		if err1 != nil || err2 != nil || err3 != nil {
			l.skip(SourceHoldings, SkipInvalidNumber, n)
			continue
		}
		if units == 0 || (cost == 0 && current == 0) {
			l.skip(SourceHoldings, SkipZeroPosition, n)
			continue
		}

		row := HoldingRow{
			SchemeName:   scheme,
			AMC:          str(m, keyHoldAMC),
			Category:     str(m, keyHoldType),
			Folio:        str(m, keyHoldFolio),
			Units:        units,
			CurrentValue: current,
			CostValue:    cost,
			ProfitLoss:   current - cost,
			InvestorName: str(m, keyHoldInvestor),
			PAN:          str(m, keyHoldPAN),
		}
		if d, err := parseDate(str(m, keyHoldNAVDate)); err == nil {
			row.NAVDate = &d
		}
		export.Rows = append(export.Rows, row)
	}
	if len(export.Rows) == 0 {
		return nil, noOpenPositions()
	}
	return export, nil
}

// noOpenPositions is returned when no row survives filtering, closed
// zero-value positions included.
func noOpenPositions() error {
	return &StructuralError{Source: SourceHoldings, Reason: "empty record set"}
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
