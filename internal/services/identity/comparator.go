package identity

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Comparator decides whether two raw scheme names, already known to share a
// base folio, refer to the same fund.
type Comparator interface {
	Match(a, b string) bool
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc func(a, b string) bool

func (f ComparatorFunc) Match(a, b string) bool { return f(a, b) }

// SubstringComparator matches when one compacted name contains the other.
type SubstringComparator struct{}

func (SubstringComparator) Match(a, b string) bool {
	ca, cb := compact(a), compact(b)
	if ca == "" || cb == "" {
		return false
	}
	return strings.Contains(ca, cb) || strings.Contains(cb, ca)
}

// PrefixComparator matches names whose compacted forms share the first
// Length characters. Exports truncate long names at different points.
type PrefixComparator struct {
	Length int
}

func (c PrefixComparator) Match(a, b string) bool {
	if c.Length <= 0 {
		return false
	}
	ra, rb := []rune(compact(a)), []rune(compact(b))
	if len(ra) < c.Length || len(rb) < c.Length {
		return false
	}
	return string(ra[:c.Length]) == string(rb[:c.Length])
}

// DriftComparator matches normalized names whose Levenshtein distance is at
// most Percent of the longer name.
type DriftComparator struct {
	Percent float64
}

func (c DriftComparator) Match(a, b string) bool {
	if c.Percent <= 0 {
		return false
	}
	na, nb := []rune(NormalizeScheme(a)), []rune(NormalizeScheme(b))
	if len(na) == 0 || len(nb) == 0 {
		return false
	}
	distance := levenshtein.DistanceForStrings(na, nb, levenshtein.DefaultOptions)
	maxLength := float64(max(len(na), len(nb)))
	return distance <= int(maxLength*(c.Percent/100))
}

// AnyOf matches when any of the comparators matches, tried in order.
func AnyOf(cmps ...Comparator) Comparator {
	return ComparatorFunc(func(a, b string) bool {
		for _, c := range cmps {
			if c != nil && c.Match(a, b) {
				return true
			}
		}
		return false
	})
}

// DefaultComparator is the fuzzy fallback chain used by the engine: a
// compacted substring match or a shared truncation prefix.
func DefaultComparator(prefixLength int) Comparator {
	return AnyOf(
		SubstringComparator{},
		PrefixComparator{Length: prefixLength},
	)
}

// NewComparator returns DefaultComparator, extended with a DriftComparator
// when driftPercent is positive. Drift matching is opt-in: one edit separates
// "Nifty 50" from "Nifty 500".
func NewComparator(prefixLength int, driftPercent float64) Comparator {
	if driftPercent <= 0 {
		return DefaultComparator(prefixLength)
	}
	return AnyOf(DefaultComparator(prefixLength), DriftComparator{Percent: driftPercent})
}
