package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeDaysPattern = regexp.MustCompile(`^(\d+)\s+hari\s+(?:yang\s+)?lalu$`)

var indonesianMonths = map[string]time.Month{
	"jan": time.January, "januari": time.January,
	"feb": time.February, "februari": time.February,
	"mar": time.March, "maret": time.March,
	"apr": time.April, "april": time.April,
	"mei": time.May,
	"jun": time.June, "juni": time.June,
	"jul": time.July, "juli": time.July,
	"agu": time.August, "ags": time.August, "agustus": time.August,
	"sep": time.September, "september": time.September,
	"okt": time.October, "oktober": time.October,
	"nov": time.November, "november": time.November,
	"des": time.December, "desember": time.December,
}

var explicitLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
}

// DateOnly truncates t to its calendar date at midnight UTC. Time-of-day in
// source timestamps is informational only and never part of the semantic date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ResolveDate converts a relative or explicit date phrase into an absolute
// calendar date anchored to the caller-supplied now. The system clock is never
// read here, so resolution is deterministic and testable.
func ResolveDate(phrase string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	today := DateOnly(now)

	switch p {
	case "", "hari ini", "sekarang":
		return today, nil
	case "kemarin":
		return today.AddDate(0, 0, -1), nil
	case "kemarin lusa":
		return today.AddDate(0, 0, -2), nil
	case "minggu lalu", "seminggu lalu", "seminggu yang lalu":
		return today.AddDate(0, 0, -7), nil
	}

	if m := relativeDaysPattern.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized date phrase %q", phrase)
		}
		return today.AddDate(0, 0, -n), nil
	}

	for _, layout := range explicitLayouts {
		if t, err := time.Parse(layout, p); err == nil {
			return DateOnly(t), nil
		}
	}

	if t, ok := parseIndonesianDate(p, today); ok {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date phrase %q", phrase)
}

// parseIndonesianDate handles "20 jan", "20 januari", and "20 jan 2025".
// Without a year, the most recent occurrence of that day/month is assumed.
func parseIndonesianDate(p string, today time.Time) (time.Time, bool) {
	parts := strings.Fields(p)
	if len(parts) != 2 && len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(strings.TrimSuffix(parts[0], ","))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	month, ok := indonesianMonths[parts[1]]
	if !ok {
		return time.Time{}, false
	}

	if len(parts) == 3 {
		year, err := strconv.Atoi(parts[2])
		if err != nil || year < 1900 {
			return time.Time{}, false
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	}

	date := time.Date(today.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		date = date.AddDate(-1, 0, 0)
	}
	return date, true
}
