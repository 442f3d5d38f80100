// Package identity canonicalizes scheme names and folio numbers so records
// from different exports can be joined.
package identity

import (
	"regexp"
	"strings"
)

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	formerlyRe      = regexp.MustCompile(`\b(formerly|erstwhile)\b.*$`)
	planTypeRe      = regexp.MustCompile(`\b(regular|direct)\b(\s+plan)?`)
	growthRe        = regexp.MustCompile(`\bgrowth\b(\s+(plan|option))?\s*(-|$)`)
	dashRe          = regexp.MustCompile(`[-–—]`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// NormalizeScheme maps a raw scheme name to its grouping key. Plan type
// (regular/direct), growth suffixes, parenthetical notes and a trailing
// "formerly known as" clause are removed; the result is lower case with
// single spaces.
//
//	"Axis Bluechip Fund - Regular Plan - Growth" -> "axis bluechip fund"
func NormalizeScheme(raw string) string {
	s := strings.ToLower(raw)
	s = parentheticalRe.ReplaceAllString(s, " ")
	s = formerlyRe.ReplaceAllString(s, "")
	s = planTypeRe.ReplaceAllString(s, " ")
	s = growthRe.ReplaceAllString(s, " ")
	s = dashRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// BaseFolio strips a sub-account suffix: "20920295/55" -> "20920295".
func BaseFolio(raw string) string {
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

// compact lower-cases s and removes hyphens and spaces.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, strings.ToLower(s))
}
