// Package nlp provides deterministic normalization helpers for the colloquial
// Indonesian shorthand that appears in expense text: amount tokens like "19rb"
// or "1,5jt" and date phrases like "kemarin" or "2 hari lalu".
package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountPattern  = regexp.MustCompile(`^(?:rp\.?\s*)?([0-9][0-9.,]*)\s*(rb|ribu|rebu|k|jt|juta)?$`)
	thousandGroups = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
)

// NormalizeAmount parses a colloquial amount token into whole Rupiah.
// Supported forms: "19rb", "19k", "19 ribu", "1.5jt", "1,5jt", "19.000",
// "19000", with an optional "Rp" prefix. Ambiguous or malformed tokens fail
// closed with an error; callers substitute zero and flag the record for
// mandatory correction rather than inventing a plausible amount.
func NormalizeAmount(token string) (int64, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return 0, fmt.Errorf("empty amount token")
	}

	m := amountPattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, fmt.Errorf("unrecognized amount token %q", token)
	}
	number, suffix := m[1], m[2]

	var multiplier int64
	switch suffix {
	case "rb", "ribu", "rebu", "k":
		multiplier = 1_000
	case "jt", "juta":
		multiplier = 1_000_000
	default:
		multiplier = 1
	}

	if multiplier > 1 {
		// With a scale suffix, "." and "," are both decimal marks ("1.5jt",
		// "1,5jt"). Decimal arithmetic keeps 1.5 * 1e6 exact.
		number = strings.ReplaceAll(number, ",", ".")
		if strings.Count(number, ".") > 1 {
			return 0, fmt.Errorf("ambiguous amount token %q", token)
		}
		d, err := decimal.NewFromString(number)
		if err != nil {
			return 0, fmt.Errorf("unrecognized amount token %q: %w", token, err)
		}
		scaled := d.Mul(decimal.NewFromInt(multiplier))
		if !scaled.IsInteger() {
			return 0, fmt.Errorf("amount token %q does not scale to whole Rupiah", token)
		}
		return scaled.IntPart(), nil
	}

	// Without a suffix, dots are only valid as thousand separators ("19.000").
	if thousandGroups.MatchString(number) {
		number = strings.ReplaceAll(number, ".", "")
	}
	if strings.ContainsAny(number, ".,") {
		return 0, fmt.Errorf("ambiguous amount token %q", token)
	}

	value, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized amount token %q: %w", token, err)
	}
	return value, nil
}
