package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// FormatMarkdown renders the portfolio overview as markdown.
func FormatMarkdown(p *models.Portfolio, s *Summary) string {
	var sb strings.Builder

	// Header
	title := "Mutual Fund Portfolio"
	if p.InvestorName != "" {
		title = fmt.Sprintf("Mutual Fund Portfolio: %s", p.InvestorName)
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("**As of:** %s\n", p.LastUpdated.Format("2006-01-02 15:04")))
	if p.DataSource != "" {
		sb.WriteString(fmt.Sprintf("**Source:** %s\n", p.DataSource))
	}
	sb.WriteString(fmt.Sprintf("**Total Value:** %s\n", formatINR(p.TotalValue)))
	sb.WriteString(fmt.Sprintf("**Total Invested:** %s\n", formatINR(p.TotalInvested)))
	sb.WriteString(fmt.Sprintf("**Total Gain:** %s (%s)\n", formatSignedINR(p.TotalGain), formatSignedPct(p.TotalGainPercent)))
	sb.WriteString(fmt.Sprintf("**XIRR:** %s\n\n", formatSignedPct(p.XIRR)))

	// Holdings
	sb.WriteString("## Holdings\n\n")
	if len(p.AggregatedHoldings) == 0 {
		sb.WriteString("No holdings.\n\n")
	} else {
		sb.WriteString("| Scheme | Type | Folios | Invested | Value | Gain % | XIRR | Broker |\n")
		sb.WriteString("|--------|------|--------|----------|-------|--------|------|--------|\n")
		for _, a := range p.AggregatedHoldings {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s | %s | %s |\n",
				escapeCell(a.SchemeName), a.FundType, a.FolioCount,
				formatINR(a.CostValue), formatINR(a.CurrentValue),
				formatSignedPct(a.GainPercent), formatXIRR(a.XIRR), brokerCell(a.Broker),
			))
		}
		sb.WriteString(fmt.Sprintf("| **Total** | | **%d** | **%s** | **%s** | **%s** | | |\n\n",
			p.NumFunds, formatINR(p.TotalInvested), formatINR(p.TotalValue), formatSignedPct(p.TotalGainPercent)))
	}

	// Allocation
	if len(s.Allocation) > 0 {
		sb.WriteString("## Allocation\n\n")
		sb.WriteString("| Fund Type | Value | Weight | Funds |\n")
		sb.WriteString("|-----------|-------|--------|-------|\n")
		for _, a := range s.Allocation {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.1f%% | %d |\n", a.FundType, formatINR(a.Value), a.Percent, a.Funds))
		}
		sb.WriteString("\n")
	}

	// Performers
	if len(s.TopPerformers) > 0 {
		sb.WriteString("## Performance\n\n")
		writePerformers(&sb, "Top Performers", s.TopPerformers)
		writePerformers(&sb, "Worst Performers", s.WorstPerformers)
	}

	// SIPs
	if len(p.SIPs) > 0 {
		sb.WriteString("## SIPs\n\n")
		sb.WriteString(fmt.Sprintf("**Active:** %d of %d | **Monthly Commitment:** %s | **Invested via SIP:** %s\n\n",
			p.NumActiveSIPs, p.NumSIPs, formatINR(s.MonthlySIP), formatINR(s.TotalSIPInvested)))
		sb.WriteString("| Scheme | Amount | Frequency | Installments | Last | Next | Status |\n")
		sb.WriteString("|--------|--------|-----------|--------------|------|------|--------|\n")
		for _, sip := range p.SIPs {
			status := "Stopped"
			if sip.Active {
				status = "Active"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s | %s | %s |\n",
				escapeCell(sip.SchemeName), formatINR(sip.Amount), sip.Frequency, sip.Installments,
				sip.LastInstallmentDate.Format("2006-01-02"), sip.NextInstallmentDate.Format("2006-01-02"), status,
			))
		}
		sb.WriteString("\n")
	}

	// Brokers
	if len(p.BrokerInfo) > 0 {
		sb.WriteString("## Brokers\n\n")
		sb.WriteString("| Broker | ARN | Invested | Schemes | Transactions |\n")
		sb.WriteString("|--------|-----|----------|---------|--------------|\n")
		names := make([]string, 0, len(p.BrokerInfo))
		for name := range p.BrokerInfo {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b := p.BrokerInfo[name]
			arn := b.ARN
			if arn == "" {
				arn = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %d |\n",
				escapeCell(b.Name), arn, formatINR(b.TotalInvested), b.SchemeCount, b.TransactionCount))
		}
		sb.WriteString("\n")
	}

	// Reconciliation
	sb.WriteString("## Reconciliation\n\n")
	r := p.Reconciliation
	sb.WriteString(fmt.Sprintf("- XIRR matches: %d exact, %d fuzzy, %d unmatched\n", r.XIRRExact, r.XIRRFuzzy, r.XIRRUnmatched))
	sb.WriteString(fmt.Sprintf("- Broker matches: %d exact, %d fuzzy, %d unmatched\n", r.BrokerExact, r.BrokerFuzzy, r.BrokerUnmatched))
	if n := skippedTotal(r.SkippedRows); n > 0 {
		sb.WriteString(fmt.Sprintf("- Skipped rows: %d\n", n))
	}
	switch {
	case !p.Crosscheck.Available:
		sb.WriteString("- Export summary: not available\n")
	case p.Crosscheck.Matched:
		sb.WriteString("- Export summary: matches itemized totals\n")
	default:
		sb.WriteString(fmt.Sprintf("- Export summary: **mismatch** (summary value %s, itemized %s)\n",
			formatINR(p.Crosscheck.SummaryCurrent), formatINR(p.Crosscheck.ItemizedCurrent)))
	}
	if p.CashflowXIRR != 0 {
		sb.WriteString(fmt.Sprintf("- Ledger cash-flow XIRR: %s\n", formatSignedPct(p.CashflowXIRR)))
	}

	return sb.String()
}

func writePerformers(sb *strings.Builder, heading string, list []Performer) {
	if len(list) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("### %s\n\n", heading))
	sb.WriteString("| Scheme | XIRR | Value | Gain % |\n")
	sb.WriteString("|--------|------|-------|--------|\n")
	for _, pf := range list {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeCell(pf.SchemeName), formatSignedPct(pf.XIRR), formatINR(pf.CurrentValue), formatSignedPct(pf.GainPercent)))
	}
	sb.WriteString("\n")
}

// formatXIRR shows a dash for holdings without a reported figure.
func formatXIRR(x float64) string {
	if x == 0 {
		return "-"
	}
	return formatSignedPct(x)
}

func brokerCell(b *string) string {
	if b == nil {
		return "-"
	}
	return escapeCell(*b)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func skippedTotal(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
