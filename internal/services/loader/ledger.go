package loader

// Transaction ledger keys.
const (
	keyTxnAMC         = "MF_NAME"
	keyTxnInvestor    = "INVESTOR_NAME"
	keyTxnPAN         = "PAN"
	keyTxnFolio       = "FOLIO_NUMBER"
	keyTxnProductCode = "PRODUCT_CODE"
	keyTxnScheme      = "SCHEME_NAME"
	keyTxnDate        = "TRADE_DATE"
	keyTxnType        = "TRANSACTION_TYPE"
	keyTxnAmount      = "AMOUNT"
	keyTxnUnits       = "UNITS"
	keyTxnPrice       = "PRICE"
	keyTxnBroker      = "BROKER"
)

// Performance report keys.
const (
	keyPerfScheme  = "Scheme"
	keyPerfFolio   = "Folio"
	keyPerfAMC     = "AMCName"
	keyPerfUnits   = "UnitBal"
	keyPerfNAVDate = "NAVDate"
	keyPerfCurrent = "CurrentValue"
	keyPerfCost    = "CostValue"
	keyPerfXIRR    = "Annualised XIRR"
)

// LoadTransactions parses the transaction ledger. Records missing both
// amount and units are non-financial noise and are dropped.
func (l *Loader) LoadTransactions(p Payload) ([]RawTransaction, error) {
	recs, err := records(SourceTransactions, p.Data, l.cfg.TransactionsRecordsPath)
	if err != nil {
		return nil, err
	}
	if err := requireKeys(SourceTransactions, recs, keyTxnScheme, keyTxnFolio, keyTxnDate, keyTxnType); err != nil {
		return nil, err
	}

	var out []RawTransaction
	for n, r := range recs {
		m, ok := r.(map[string]any)
		if !ok {
			l.skip(SourceTransactions, SkipNotRecord, n)
			continue
		}

		amount, hasAmount, err1 := parseValue(m[keyTxnAmount])
		units, hasUnits, err2 := parseValue(m[keyTxnUnits])
		if err1 != nil || err2 != nil {
			l.skip(SourceTransactions, SkipInvalidNumber, n)
			continue
		}
		if !hasAmount && !hasUnits {
			l.skip(SourceTransactions, SkipNonFinancial, n)
			continue
		}

		scheme := str(m, keyTxnScheme)
		if scheme == "" {
			l.skip(SourceTransactions, SkipEmptyScheme, n)
			continue
		}
		date, err := parseDate(str(m, keyTxnDate))
		if err != nil {
			l.skip(SourceTransactions, SkipInvalidDate, n)
			continue
		}
		// price is informational; an unparseable one is treated as unknown
		price, _, _ := parseValue(m[keyTxnPrice])

		out = append(out, RawTransaction{
			Date:         date,
			SchemeName:   scheme,
			Folio:        str(m, keyTxnFolio),
			AMC:          str(m, keyTxnAMC),
			ProductCode:  str(m, keyTxnProductCode),
			Description:  str(m, keyTxnType),
			Amount:       amount,
			Units:        units,
			Price:        price,
			Broker:       str(m, keyTxnBroker),
			InvestorName: str(m, keyTxnInvestor),
			PAN:          str(m, keyTxnPAN),
		})
	}
	return out, nil
}

// LoadPerformance parses the performance report.
func (l *Loader) LoadPerformance(p Payload) ([]PerformanceRecord, error) {
	recs, err := records(SourcePerformance, p.Data, l.cfg.PerformanceRecordsPath)
	if err != nil {
		return nil, err
	}
	if err := requireKeys(SourcePerformance, recs, keyPerfScheme, keyPerfFolio, keyPerfXIRR); err != nil {
		return nil, err
	}

	var out []PerformanceRecord
	for n, r := range recs {
		m, ok := r.(map[string]any)
		if !ok {
			l.skip(SourcePerformance, SkipNotRecord, n)
			continue
		}

		current, hasCurrent, err1 := parseValue(m[keyPerfCurrent])
		units, hasUnits, err2 := parseValue(m[keyPerfUnits])
		cost, _, err3 := parseValue(m[keyPerfCost])
		xirr, _, err4 := parseValue(m[keyPerfXIRR])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			l.skip(SourcePerformance, SkipInvalidNumber, n)
			continue
		}
		if !hasCurrent && !hasUnits {
			l.skip(SourcePerformance, SkipNonFinancial, n)
			continue
		}

		scheme := str(m, keyPerfScheme)
		if scheme == "" {
			l.skip(SourcePerformance, SkipEmptyScheme, n)
			continue
		}

		rec := PerformanceRecord{
			SchemeName:   scheme,
			Folio:        str(m, keyPerfFolio),
			AMC:          str(m, keyPerfAMC),
			Units:        units,
			CurrentValue: current,
			CostValue:    cost,
			XIRR:         xirr,
		}
		if d, err := parseDate(str(m, keyPerfNAVDate)); err == nil {
			rec.NAVDate = &d
		}
		out = append(out, rec)
	}
	return out, nil
}
