// Package query turns free-form calendar questions into structured intents.
//
// The parser understands a fixed vocabulary: relative days ("today",
// "tomorrow", "yesterday"), week phrases ("this week", "next week"),
// "upcoming" style requests with optional quantities ("next 3 days",
// "show me 10 events"), weekday names with their common abbreviations, and
// literal calendar dates ("08/12/2025", "2025-08-12", "aug 12", "12 August
// 2025").
//
// Classification scans an ordered rule table and the first matching category
// wins, so relative phrasing always beats an incidental date-like substring.
// Parsing is total: every input produces a ParsedQuery, and anything the
// parser cannot place resolves to an UpcomingEvents intent with the
// configured defaults.
//
// Example usage:
//
//	p := query.NewParser(query.WithDefaultTimeZone("Europe/Berlin"))
//	pq := p.Parse("what's on my schedule tomorrow?", "", time.Now())
//	switch intent := pq.Intent.(type) {
//	case query.SpecificDate:
//	    fmt.Println(intent.Date.Format(time.DateOnly))
//	case query.DateRange:
//	    fmt.Println(intent.Start, intent.End)
//	case query.UpcomingEvents:
//	    fmt.Println(intent.DaysAhead, intent.MaxResults)
//	}
//
// A Parser is immutable after construction and safe for concurrent use.
package query
