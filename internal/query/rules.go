package query

import (
	"regexp"
	"strings"
	"time"
)

const (
	monthNames = `january|february|march|april|may|june|july|august|september|october|november|december`
	monthAbbrs = `jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`
)

// rule pairs a category with the patterns that select it.
type rule struct {
	category Category
	patterns []*regexp.Regexp
}

// matches reports whether any pattern of the rule matches text.
func (r rule) matches(text string) bool {
	for _, p := range r.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// rules is scanned top to bottom; order is the precedence.
var rules = []rule{
	{CategoryToday, compileAll(
		`\btoday\b`,
		`\bthis\s+day\b`,
		`\bwhat.*today\b`,
		`\btoday.*schedule\b`,
		`\btoday.*events\b`,
		`\btoday.*appointments\b`,
	)},
	{CategoryTomorrow, compileAll(
		`\btomorrow\b`,
		`\bnext\s+day\b`,
		`\bwhat.*tomorrow\b`,
		`\btomorrow.*schedule\b`,
		`\btomorrow.*events\b`,
		`\btomorrow.*appointments\b`,
	)},
	{CategoryYesterday, compileAll(
		`\byesterday\b`,
		`\bprevious\s+day\b`,
		`\byesterday.*events\b`,
	)},
	{CategoryThisWeek, compileAll(
		`\bthis\s+week\b`,
		`\bthis\s+week.*events\b`,
		`\bthis\s+week.*schedule\b`,
		`\bweekly\s+schedule\b`,
	)},
	{CategoryNextWeek, compileAll(
		`\bnext\s+week\b`,
		`\bnext\s+week.*events\b`,
		`\bnext\s+week.*schedule\b`,
	)},
	{CategoryUpcoming, compileAll(
		`\bupcoming\b`,
		`\bcoming\s+up\b`,
		`\bnext.*events\b`,
		`\bfuture.*events\b`,
		`\bwhat.*next\b`,
		`\bnext\s+\d+\s+days?\b`,
		`\b(?:show|first|next)\s+(?:me\s+)?\d+\s+(?:events?|appointments?|meetings?)\b`,
	)},
	{CategoryLiteralDate, compileAll(
		`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
		`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`,
		`\b(?:`+monthNames+`)\s+\d{1,2}\b`,
		`\b(?:`+monthAbbrs+`)\s+\d{1,2}\b`,
		`\b\d{1,2}\s+(?:`+monthNames+`)\b`,
		`\b\d{1,2}\s+(?:`+monthAbbrs+`)\b`,
	)},
}

// weekday is one row of the weekday table. Ordinal counts from Monday = 0.
type weekday struct {
	day      time.Weekday
	ordinal  int
	patterns []*regexp.Regexp
}

// weekdays lists days Monday first; ExtractWeekday reports the first row
// with a matching alias.
var weekdays = []weekday{
	{time.Monday, 0, compileWords("monday", "mon")},
	{time.Tuesday, 1, compileWords("tuesday", "tue", "tues")},
	{time.Wednesday, 2, compileWords("wednesday", "wed")},
	{time.Thursday, 3, compileWords("thursday", "thu", "thur", "thurs")},
	{time.Friday, 4, compileWords("friday", "fri")},
	{time.Saturday, 5, compileWords("saturday", "sat")},
	{time.Sunday, 6, compileWords("sunday", "sun")},
}

var (
	reWeekPhrase   = regexp.MustCompile(`\b(?:next|this)\s+week\b`)
	reNextNDays    = regexp.MustCompile(`\bnext\s+(\d+)\s+days?\b`)
	reNDays        = regexp.MustCompile(`\b(\d+)\s+days?\b`)
	reCountPhrases = regexp.MustCompile(`\b(?:show|first|next)\s+(?:me\s+)?(\d+)\s+(?:events?|appointments?|meetings?)\b`)
)

// Classify returns the first category in the rule table with a pattern
// matching the lowercased query, or CategoryNone.
func Classify(query string) Category {
	text := strings.ToLower(query)
	for _, r := range rules {
		if r.matches(text) {
			return r.category
		}
	}
	return CategoryNone
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

func compileWords(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + w + `\b`)
	}
	return out
}

// mondayOrdinal maps Go's Sunday-first weekday numbering onto Monday = 0.
func mondayOrdinal(d time.Weekday) int {
	return (int(d) + 6) % 7
}
