package enricher

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/identity"
)

var (
	arnRe   = regexp.MustCompile(`(?i)\b(ARN-\d+)\s*/\s*(.+?)\s*$`)
	isRe    = regexp.MustCompile(`(?i)\bis\s*:\s*(.+?)\s*$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

var placeholderBrokers = map[string]bool{
	"unknown": true,
	"na":      true,
	"n/a":     true,
	"-":       true,
	"none":    true,
}

// CleanBroker extracts the intermediary name from a ledger annotation such
// as "MFD/Intermediary : ARN-12345 / Good Advisors" or "Your Broker/Dealer
// is : Good Advisors". The ARN is returned when present. Empty and
// placeholder annotations yield an empty name.
func CleanBroker(raw string) (name, arn string) {
	raw = strings.TrimSpace(raw)
	if m := arnRe.FindStringSubmatch(raw); m != nil {
		arn, name = strings.ToUpper(m[1]), m[2]
	} else if m := isRe.FindStringSubmatch(raw); m != nil {
		name = m[1]
	} else {
		name = raw
	}
	name = strings.TrimSpace(spaceRe.ReplaceAllString(name, " "))
	if placeholderBrokers[strings.ToLower(name)] {
		return "", arn
	}
	return name, arn
}

// brokerKey groups cosmetically different renderings of one intermediary.
func brokerKey(name string) string {
	return strings.ToUpper(name)
}

// AttributeBrokers sets Broker and ARN on each transaction from its raw
// annotation. Transactions without a resolvable broker keep a nil Broker.
func AttributeBrokers(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txns))
	for i, t := range txns {
		name, arn := CleanBroker(t.BrokerRaw)
		t.Broker = models.StringPtr(name)
		t.ARN = arn
		out[i] = t
	}
	return out
}

// BrokerSummaries aggregates purchase and SIP transactions per broker.
// Names differing only in case share one entry, keyed by the earliest
// rendering seen. Schemes are counted by normalized key and listed under
// their most recent raw name.
func BrokerSummaries(txns []models.Transaction) map[string]models.BrokerSummary {
	ordered := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Type.IsInvestment() && t.Broker != nil {
			ordered = append(ordered, t)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	type acc struct {
		summary models.BrokerSummary
		schemes map[string]string // scheme key -> latest raw name
	}
	byKey := make(map[string]*acc)
	var keys []string
	for _, t := range ordered {
		k := brokerKey(*t.Broker)
		a, ok := byKey[k]
		if !ok {
			a = &acc{summary: models.BrokerSummary{Name: *t.Broker}, schemes: make(map[string]string)}
			byKey[k] = a
			keys = append(keys, k)
		}
		s := &a.summary
		s.TotalInvested += abs(t.Amount)
		s.TransactionCount++
		if s.ARN == "" {
			s.ARN = t.ARN
		}
		key := t.SchemeKey
		if key == "" {
			key = identity.NormalizeScheme(t.SchemeName)
		}
		a.schemes[key] = t.SchemeName
		if !t.Date.IsZero() {
			d := t.Date
			if s.FirstTransaction == nil || d.Before(*s.FirstTransaction) {
				s.FirstTransaction = &d
			}
			if s.LastTransaction == nil || d.After(*s.LastTransaction) {
				s.LastTransaction = &d
			}
		}
	}

	out := make(map[string]models.BrokerSummary, len(keys))
	for _, k := range keys {
		a := byKey[k]
		schemes := make([]string, 0, len(a.schemes))
		for _, name := range a.schemes {
			schemes = append(schemes, name)
		}
		sort.Strings(schemes)
		a.summary.Schemes = schemes
		a.summary.SchemeCount = len(schemes)
		out[a.summary.Name] = a.summary
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
