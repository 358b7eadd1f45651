package query

import (
	"strconv"
	"strings"
)

// MaxResultsCap is the most events a query can ask for.
const MaxResultsCap = 50

// ExtractDaysAhead reads the look-ahead window from text: "next week" and
// "this week" mean 7 days, "next N days" and "N days" mean N. Anything else,
// including N < 1, yields def.
func ExtractDaysAhead(text string, def int) int {
	text = strings.ToLower(text)
	if reWeekPhrase.MatchString(text) {
		return 7
	}
	if n, ok := firstNumber(reNextNDays.FindStringSubmatch(text)); ok {
		return n
	}
	if n, ok := firstNumber(reNDays.FindStringSubmatch(text)); ok {
		return n
	}
	return def
}

// ExtractMaxResults reads an event count from phrases like "show me 10
// events" or "first 3 meetings", capped at MaxResultsCap. Without one it
// yields def.
func ExtractMaxResults(text string, def int) int {
	n, ok := firstNumber(reCountPhrases.FindStringSubmatch(strings.ToLower(text)))
	if !ok {
		return def
	}
	return min(n, MaxResultsCap)
}

func firstNumber(m []string) (int, bool) {
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
