package query

import (
	"encoding/json"
	"time"
)

// IntentKind names the variant carried by an Intent.
type IntentKind string

const (
	KindUpcomingEvents IntentKind = "upcoming_events"
	KindSpecificDate   IntentKind = "specific_date"
	KindDateRange      IntentKind = "date_range"
)

// Intent is the structured outcome of parsing a query. The set of
// implementations is closed: UpcomingEvents, SpecificDate and DateRange.
type Intent interface {
	Kind() IntentKind
	isIntent()
}

// UpcomingEvents asks for the next events within a window starting now.
type UpcomingEvents struct {
	DaysAhead  int `json:"days_ahead"`
	MaxResults int `json:"max_results"`
}

// SpecificDate asks for the events of a single day. Date is midnight in the
// resolved location. TimeZoneAware is false for literal dates spelled out in
// the query, which name a calendar day rather than an instant.
type SpecificDate struct {
	Date          time.Time `json:"date"`
	TimeZoneAware bool      `json:"time_zone_aware"`
}

// DateRange asks for the events between Start and End, both inclusive.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (UpcomingEvents) Kind() IntentKind { return KindUpcomingEvents }
func (SpecificDate) Kind() IntentKind { return KindSpecificDate }
func (DateRange) Kind() IntentKind { return KindDateRange }

func (UpcomingEvents) isIntent() {}
func (SpecificDate) isIntent() {}
func (DateRange) isIntent() {}

// ParsedQuery is the result of Parser.Parse.
type ParsedQuery struct {
	Intent Intent
	// TimeZone is the caller's hint exactly as supplied, empty when none was
	// given. It is not the resolved zone.
	TimeZone     string
	OriginalText string

	loc      *time.Location
	fellBack bool
}

// Location returns the zone the query was resolved in.
func (pq ParsedQuery) Location() *time.Location {
	if pq.loc == nil {
		return time.UTC
	}
	return pq.loc
}

// TimeZoneFellBack reports whether a non-empty hint was unknown and the
// default zone was used instead.
func (pq ParsedQuery) TimeZoneFellBack() bool { return pq.fellBack }

// MarshalJSON flattens the intent next to its kind so the output is easy to
// consume from tools and the CLI.
func (pq ParsedQuery) MarshalJSON() ([]byte, error) {
	out := struct {
		Intent       IntentKind `json:"intent"`
		Params       Intent     `json:"params"`
		TimeZone     string     `json:"time_zone,omitempty"`
		ResolvedZone string     `json:"resolved_zone"`
		OriginalText string     `json:"original_text"`
	}{
		Params:       pq.Intent,
		TimeZone:     pq.TimeZone,
		ResolvedZone: pq.Location().String(),
		OriginalText: pq.OriginalText,
	}
	if pq.Intent != nil {
		out.Intent = pq.Intent.Kind()
	}
	return json.Marshal(out)
}

// Category is the intermediate label chosen by Classify.
type Category string

const (
	CategoryToday       Category = "today"
	CategoryTomorrow    Category = "tomorrow"
	CategoryYesterday   Category = "yesterday"
	CategoryThisWeek    Category = "this_week"
	CategoryNextWeek    Category = "next_week"
	CategoryUpcoming    Category = "upcoming"
	CategoryLiteralDate Category = "specific_date_literal"
	CategoryNone        Category = "none"
)
