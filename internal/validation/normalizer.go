package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// DateParseError is returned by NormalizeDate for text that matches none of the accepted layouts.
type DateParseError struct {
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Value)
}

// AmountParseError is returned by NormalizeAmount for text that is not a monetary amount.
type AmountParseError struct {
	Value string
	Err   error
}

func (e *AmountParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unparseable amount %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("unparseable amount %q", e.Value)
}

func (e *AmountParseError) Unwrap() error { return e.Err }

var honorifics = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "miss": {}, "mx": {},
	"dr": {}, "prof": {}, "sir": {}, "madam": {},
	"shri": {}, "smt": {}, "jr": {}, "sr": {},
}

// NormalizeName lowercases s, turns punctuation into spaces, drops honorifics
// and collapses whitespace.
func NormalizeName(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == '\'' || r == '’':
			return -1
		default:
			return ' '
		}
	}, s)

	tokens := strings.Fields(cleaned)
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, ok := honorifics[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// NamesMatch reports whether a and b refer to the same person.
//
// Both names must normalize to something non-empty. They match when the
// normalized forms are equal, or when the token set of one is contained in the
// token set of the other and the smaller set has at least two tokens, so
// "John Doe" matches "John A. Doe" but "Doe" matches neither.
func NamesMatch(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	small, large := tokenSet(na), tokenSet(nb)
	if len(small) > len(large) {
		small, large = large, small
	}
	if len(small) < 2 {
		return false
	}
	for tok := range small {
		if _, ok := large[tok]; !ok {
			return false
		}
	}
	return true
}

func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		set[tok] = struct{}{}
	}
	return set
}

// Day-first numeric layouts are tried before month-name layouts; month-first
// numeric dates are not accepted.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"2-1-2006",
	"2/1/2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
}

// NormalizeDate parses s as a calendar date and returns it at midnight UTC.
func NormalizeDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	v = strings.Join(strings.Fields(v), " ")
	if v == "" {
		return time.Time{}, &DateParseError{Value: s}
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &DateParseError{Value: s}
}

var (
	currencyMarks = regexp.MustCompile(`(?i)(usd|eur|gbp|inr|rs\.?|₹|\$|€|£|¥)`)
	decimalComma  = regexp.MustCompile(`,\s*\d{1,2}\)?$`)
)

// ErrDecimalComma is wrapped by AmountParseError for amounts like "12,50".
var ErrDecimalComma = errors.New("decimal comma is not supported")

// NormalizeAmount strips currency marks, whitespace and thousands separators
// from s and parses the remainder. Amounts are dot-decimal: a comma is a
// thousands separator, and a comma followed by one or two final digits is
// rejected. Parentheses denote a negative amount.
func NormalizeAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return decimal.Zero, &AmountParseError{Value: s}
	}

	v = currencyMarks.ReplaceAllString(v, "")
	v = strings.TrimSuffix(strings.TrimSpace(v), "/-")
	if decimalComma.MatchString(v) {
		return decimal.Zero, &AmountParseError{Value: s, Err: ErrDecimalComma}
	}

	negative := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		negative = true
		v = strings.TrimSuffix(strings.TrimPrefix(v, "("), ")")
	}

	v = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' || r == '_' {
			return -1
		}
		return r
	}, v)
	if v == "" {
		return decimal.Zero, &AmountParseError{Value: s}
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &AmountParseError{Value: s, Err: err}
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
