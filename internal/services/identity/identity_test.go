package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeScheme(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Axis Bluechip Fund - Regular Plan - Growth", "axis bluechip fund"},
		{"Axis Bluechip Fund - Direct Growth", "axis bluechip fund"},
		{"AXIS BLUECHIP FUND  -  GROWTH", "axis bluechip fund"},
		{"HDFC Mid-Cap Opportunities Fund - Growth", "hdfc mid cap opportunities fund"},
		{"Kotak India Growth Fund - Regular Growth", "kotak india growth fund"},
		{"Aditya Birla Sun Life Flexi Cap Fund (formerly known as Aditya Birla Sun Life Equity Fund) - Growth", "aditya birla sun life flexi cap fund"},
		{"Nippon India Small Cap Fund - Growth Plan - Growth Option formerly Reliance Small Cap Fund", "nippon india small cap fund"},
		{"SBI Gold Fund (G)", "sbi gold fund"},
		{"ICICI Prudential Liquid Fund - IDCW", "icici prudential liquid fund idcw"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeScheme(tt.raw), tt.raw)
	}
}

func TestBaseFolio(t *testing.T) {
	assert.Equal(t, "20920295", BaseFolio("20920295/55"))
	assert.Equal(t, "20920295", BaseFolio("20920295"))
	assert.Equal(t, "20920295", BaseFolio(" 20920295 / 7 "))
	assert.Equal(t, "", BaseFolio(""))
}

func TestSubstringComparator(t *testing.T) {
	c := SubstringComparator{}
	assert.True(t, c.Match("HDFC Mid-Cap Opportunities Fund - Growth", "HDFC MidCap Opportunities Fund"))
	assert.True(t, c.Match("Fund A", "FUND A - DIRECT"))
	assert.False(t, c.Match("Fund A", "Fund B"))
	assert.False(t, c.Match("", "Fund B"))
}

func TestPrefixComparator(t *testing.T) {
	c := PrefixComparator{Length: 20}
	assert.True(t, c.Match("Aditya Birla Sun Life Frontline Equity Fund - Growth", "Aditya Birla Sun Life Frontline Eq"))
	assert.False(t, c.Match("Aditya Birla Sun Life", "Aditya Birla Sun Life"), "shorter than prefix")
	assert.False(t, PrefixComparator{}.Match("same", "same"), "zero length disables")
}

func TestDriftComparator(t *testing.T) {
	c := DriftComparator{Percent: 10}
	assert.True(t, c.Match("Mirae Asset Large Cap Fund", "Mirae Asset Largecap Fund"))
	assert.False(t, c.Match("Mirae Asset Large Cap Fund", "Mirae Asset Tax Saver Fund"))
	assert.False(t, DriftComparator{}.Match("a", "a"), "zero percent disables")
}

func TestDefaultComparator(t *testing.T) {
	c := DefaultComparator(30)
	assert.True(t, c.Match("Axis Bluechip Fund", "Axis Bluechip Fund - Direct Growth"))
	assert.False(t, c.Match("Motilal Oswal Nifty 50 Index Fund - Direct Plan", "Motilal Oswal Nifty 500 Index Fund - Direct Plan"))
	assert.False(t, c.Match("Mirae Asset Large Cap Fund", "Mirae Asset Largecap Fund"), "no edit-distance matching by default")
}

func TestNewComparator_DriftIsOptIn(t *testing.T) {
	a, b := "Mirae Asset Large Cap Fund", "Mirae Asset Largecap Fund"
	assert.False(t, NewComparator(30, 0).Match(a, b))
	assert.True(t, NewComparator(30, 10).Match(a, b))
}

func TestAnyOf(t *testing.T) {
	never := ComparatorFunc(func(a, b string) bool { return false })
	always := ComparatorFunc(func(a, b string) bool { return true })

	assert.False(t, AnyOf().Match("a", "b"))
	assert.False(t, AnyOf(never, nil).Match("a", "b"))
	assert.True(t, AnyOf(never, always).Match("a", "b"))
}

func TestResolver_ExactBeforeFuzzy(t *testing.T) {
	r := NewResolver[float64](SubstringComparator{})
	r.Add("Fund A - Growth", "100/1", 11.0)
	r.Add("Fund A - Growth", "100/2", 12.0)
	r.Add("Fund AB", "100", 99.0)

	v, kind := r.Lookup("Fund A - Direct Plan - Growth", "100/2")
	assert.Equal(t, MatchExact, kind)
	assert.Equal(t, 12.0, v, "full folio wins over base folio")

	v, kind = r.Lookup("Fund A", "100/9")
	assert.Equal(t, MatchExact, kind)
	assert.Equal(t, 11.0, v, "first entry under the base folio")

	assert.Equal(t, 3, r.Len())
}

func TestResolver_FuzzyRequiresSameBaseFolio(t *testing.T) {
	r := NewResolver[string](SubstringComparator{})
	r.Add("ICICI Prudential Bluechip Fund", "555/1", "perf-555")

	v, kind := r.Lookup("ICICI Pru Bluechip", "555")
	assert.Equal(t, MatchNone, kind, "no substring relation")
	assert.Equal(t, "", v)

	v, kind = r.Lookup("ICICI Prudential Bluechip Fund - Direct Plan Growth Option Extra", "555/3")
	assert.Equal(t, MatchFuzzy, kind)
	assert.Equal(t, "perf-555", v)

	_, kind = r.Lookup("ICICI Prudential Bluechip Fund - Direct Plan Growth Option Extra", "777")
	assert.Equal(t, MatchNone, kind, "never matched across folios")
}

func TestResolver_NilComparatorDisablesFuzzy(t *testing.T) {
	r := NewResolver[int](nil)
	r.Add("Fund A Extended Name", "1", 7)

	_, kind := r.Lookup("Fund A", "1")
	assert.Equal(t, MatchNone, kind)
}

func TestMatchKind_String(t *testing.T) {
	assert.Equal(t, "exact", MatchExact.String())
	assert.Equal(t, "fuzzy", MatchFuzzy.String())
	assert.Equal(t, "none", MatchNone.String())
}
