package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

var errInvalidNumber = errors.New("invalid number")

var numberReplacer = strings.NewReplacer(",", "", "₹", "", "Rs.", "", "INR", "", " ", "", "\u00a0", "")

// parseAmount parses an export number. Thousands separators, rupee marks and
// accounting-style parentheses are accepted. Blank input is reported as absent.
func parseAmount(s string) (float64, bool, error) {
	s = numberReplacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "-" {
		return 0, false, nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", errInvalidNumber, s)
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), true, nil
}

// parseValue parses a decoded JSON value as a number.
func parseValue(v any) (float64, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		return parseAmount(n.String())
	case float64:
		return n, true, nil
	case string:
		return parseAmount(n)
	case bool:
		return 0, false, fmt.Errorf("%w: %v", errInvalidNumber, n)
	default:
		return parseAmount(fmt.Sprint(n))
	}
}

var dateLayouts = []string{
	"02-Jan-2006",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02 Jan 2006",
}

// parseDate accepts ISO timestamps ("2025-11-25T00:00:00") and the day-first
// layouts seen in exports ("25-NOV-2025"). Month names match case-insensitively.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if len(s) > 10 && s[4] == '-' && s[10] == 'T' {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// records decodes a JSON payload and returns the record array at path.
func records(source string, data []byte, path string) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &StructuralError{Source: source, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, &StructuralError{Source: source, Field: path, Reason: "missing top-level key"}
	}
	arr, ok := val.([]any)
	if !ok {
		return nil, &StructuralError{Source: source, Field: path, Reason: "not a record array"}
	}
	if len(arr) == 0 {
		return nil, &StructuralError{Source: source, Field: path, Reason: "empty record set"}
	}
	return arr, nil
}

// requireKeys fails when a required key is absent from every object record.
// A key missing from only some records is a row-level problem.
func requireKeys(source string, recs []any, keys ...string) error {
	for _, key := range keys {
		found := false
		for _, r := range recs {
			if m, ok := r.(map[string]any); ok {
				if _, ok := m[key]; ok {
					found = true
					break
				}
			}
		}
		if !found {
			return &StructuralError{Source: source, Field: key, Reason: "missing required field"}
		}
	}
	return nil
}

// str returns a record field as trimmed text.
func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
