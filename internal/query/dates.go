package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// literalPattern extracts year/month/day candidates from one regexp match.
type literalPattern struct {
	re      *regexp.Regexp
	extract func(m []string, now time.Time) (year, month, day int, ok bool)
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// literalPatterns are tried in order against the original query text.
var literalPatterns = []literalPattern{
	{
		re:      regexp.MustCompile(`(?i)\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`),
		extract: numericMonthFirst,
	},
	{
		re: regexp.MustCompile(`(?i)\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`),
		extract: func(m []string, _ time.Time) (int, int, int, bool) {
			return atoi(m[1]), atoi(m[2]), atoi(m[3]), true
		},
	},
	{
		re:      regexp.MustCompile(`(?i)\b(` + monthNames + `)\s+(\d{1,2})(?:,?\s+(\d{4}))?\b`),
		extract: monthThenDay,
	},
	{
		re:      regexp.MustCompile(`(?i)\b(` + monthAbbrs + `)\s+(\d{1,2})(?:,?\s+(\d{4}))?\b`),
		extract: monthThenDay,
	},
	{
		re:      regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthNames + `)(?:,?\s+(\d{4}))?\b`),
		extract: dayThenMonth,
	},
	{
		re:      regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthAbbrs + `)(?:,?\s+(\d{4}))?\b`),
		extract: dayThenMonth,
	},
}

// ExtractLiteralDate finds the first valid calendar date spelled out in
// text. A missing year is taken from now in loc. The result is midnight in
// loc. Candidates that name impossible dates, such as February 31, are
// skipped.
func ExtractLiteralDate(text string, loc *time.Location, now time.Time) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	for _, p := range literalPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		y, mo, d, ok := p.extract(m, now)
		if !ok {
			continue
		}
		if t, ok := validDate(y, mo, d, loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// numericMonthFirst reads D/D/Y as month/day/year. When the first number
// cannot be a month but the second can, the order flips to day/month/year.
func numericMonthFirst(m []string, now time.Time) (int, int, int, bool) {
	a, b := atoi(m[1]), atoi(m[2])
	month, day := a, b
	if a > 12 && b <= 12 {
		month, day = b, a
	}
	return expandYear(m[3], now), month, day, true
}

func monthThenDay(m []string, now time.Time) (int, int, int, bool) {
	return yearOrCurrent(m[3], now), int(monthFromName(m[1])), atoi(m[2]), true
}

func dayThenMonth(m []string, now time.Time) (int, int, int, bool) {
	return yearOrCurrent(m[3], now), int(monthFromName(m[2])), atoi(m[1]), true
}

// expandYear turns a two digit year into the year closest to now, at most
// 49 years ahead and 50 years behind. Longer years are taken as written.
func expandYear(s string, now time.Time) int {
	y := atoi(s)
	if len(s) != 2 {
		return y
	}
	century := now.Year() / 100 * 100
	y += century
	if y > now.Year()+49 {
		y -= 100
	} else if y < now.Year()-50 {
		y += 100
	}
	return y
}

func yearOrCurrent(s string, now time.Time) int {
	if s == "" {
		return now.Year()
	}
	return atoi(s)
}

func monthFromName(name string) time.Month {
	name = strings.ToLower(name)
	if len(name) > 3 {
		name = name[:3]
	}
	return months[name]
}

// validDate builds midnight of the given day and rejects values that
// time.Date would normalise into a different day.
func validDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// ExtractWeekday returns the first day of the week table, Monday first,
// that has an alias in text.
func ExtractWeekday(text string) (time.Weekday, bool) {
	text = strings.ToLower(text)
	for _, wd := range weekdays {
		for _, p := range wd.patterns {
			if p.MatchString(text) {
				return wd.day, true
			}
		}
	}
	return time.Sunday, false
}

// NextOccurrence returns midnight of the next given weekday strictly after
// the day of now. Asking for the current weekday yields the same weekday one
// week later.
func NextOccurrence(now time.Time, day time.Weekday) time.Time {
	delta := mondayOrdinal(day) - mondayOrdinal(now.Weekday())
	if delta <= 0 {
		delta += 7
	}
	return StartOfDay(now).AddDate(0, 0, delta)
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last microsecond of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999000, t.Location())
}

// WeekStart returns midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -mondayOrdinal(t.Weekday()))
}
