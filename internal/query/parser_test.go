package query

import (
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestParser(t *testing.T, opts ...Option) *Parser {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []Option{WithDefaultTimeZone("UTC"), WithLogger(logger)}
	return NewParser(append(base, opts...)...)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2025-08-13 is a Wednesday.
var wednesday = time.Date(2025, time.August, 13, 10, 30, 0, 0, time.UTC)

func TestParse_RelativeDays(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name  string
		query string
		want  time.Time
	}{
		{"today", "What's on my schedule today?", date(2025, time.August, 13)},
		{"this day", "anything this day", date(2025, time.August, 13)},
		{"tomorrow", "Do I have any meetings tomorrow?", date(2025, time.August, 14)},
		{"next day", "what about the next day", date(2025, time.August, 14)},
		{"yesterday", "what did I have yesterday", date(2025, time.August, 12)},
		{"previous day", "events on the previous day", date(2025, time.August, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := p.Parse(tt.query, "", wednesday)
			got, ok := pq.Intent.(SpecificDate)
			if !ok {
				t.Fatalf("Parse(%q) intent = %T, expected SpecificDate", tt.query, pq.Intent)
			}
			if !got.Date.Equal(tt.want) {
				t.Errorf("Parse(%q) date = %v, expected %v", tt.query, got.Date, tt.want)
			}
			if !got.TimeZoneAware {
				t.Errorf("Parse(%q) TimeZoneAware = false, expected true", tt.query)
			}
		})
	}
}

func TestParse_WeekBoundaries(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name      string
		query     string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "this week from wednesday",
			query:     "show me this week's appointments",
			now:       wednesday,
			wantStart: date(2025, time.August, 11),
			wantEnd:   time.Date(2025, time.August, 17, 23, 59, 59, 999999000, time.UTC),
		},
		{
			name:      "next week from wednesday",
			query:     "what's on next week",
			now:       wednesday,
			wantStart: date(2025, time.August, 18),
			wantEnd:   time.Date(2025, time.August, 24, 23, 59, 59, 999999000, time.UTC),
		},
		{
			name:      "this week on a sunday",
			query:     "weekly schedule",
			now:       time.Date(2025, time.August, 17, 23, 0, 0, 0, time.UTC),
			wantStart: date(2025, time.August, 11),
			wantEnd:   time.Date(2025, time.August, 17, 23, 59, 59, 999999000, time.UTC),
		},
		{
			name:      "this week on a monday",
			query:     "this week",
			now:       time.Date(2025, time.August, 11, 0, 0, 0, 0, time.UTC),
			wantStart: date(2025, time.August, 11),
			wantEnd:   time.Date(2025, time.August, 17, 23, 59, 59, 999999000, time.UTC),
		},
		{
			name:      "next week across a year boundary",
			query:     "next week",
			now:       time.Date(2025, time.December, 31, 9, 0, 0, 0, time.UTC),
			wantStart: date(2026, time.January, 5),
			wantEnd:   time.Date(2026, time.January, 11, 23, 59, 59, 999999000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := p.Parse(tt.query, "", tt.now)
			got, ok := pq.Intent.(DateRange)
			if !ok {
				t.Fatalf("Parse(%q) intent = %T, expected DateRange", tt.query, pq.Intent)
			}
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, expected %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, expected %v", got.End, tt.wantEnd)
			}
			if got.Start.Weekday() != time.Monday || got.End.Weekday() != time.Sunday {
				t.Errorf("range %v..%v does not run Monday to Sunday", got.Start.Weekday(), got.End.Weekday())
			}
		})
	}
}

func TestParse_Upcoming(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		query string
		want  UpcomingEvents
	}{
		{"any upcoming events?", UpcomingEvents{DaysAhead: 7, MaxResults: 10}},
		{"what's coming up", UpcomingEvents{DaysAhead: 7, MaxResults: 10}},
		{"show me 75 events", UpcomingEvents{DaysAhead: 7, MaxResults: 50}},
		{"next 3 days", UpcomingEvents{DaysAhead: 3, MaxResults: 10}},
		{"show me the next 5 events in the next 14 days", UpcomingEvents{DaysAhead: 14, MaxResults: 5}},
		{"upcoming meetings for 30 days", UpcomingEvents{DaysAhead: 30, MaxResults: 10}},
		{"first 3 meetings coming up", UpcomingEvents{DaysAhead: 7, MaxResults: 3}},
		{"future events", UpcomingEvents{DaysAhead: 7, MaxResults: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			pq := p.Parse(tt.query, "", wednesday)
			got, ok := pq.Intent.(UpcomingEvents)
			if !ok {
				t.Fatalf("Parse(%q) intent = %T, expected UpcomingEvents", tt.query, pq.Intent)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, expected %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParse_OrderPrecedence(t *testing.T) {
	p := newTestParser(t)

	if got := Classify("today at noon on 2025-08-12"); got != CategoryToday {
		t.Errorf("Classify() = %q, expected %q", got, CategoryToday)
	}

	pq := p.Parse("today at noon on 2025-08-12", "", wednesday)
	got, ok := pq.Intent.(SpecificDate)
	if !ok || !got.Date.Equal(date(2025, time.August, 13)) {
		t.Errorf("Parse() = %+v, expected today's date", pq.Intent)
	}
}

func TestParse_LiteralDates(t *testing.T) {
	p := newTestParser(t)
	now := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		query string
		want  time.Time
	}{
		{"meet on march 5", date(2026, time.March, 5)},
		{"meet on aug 12", date(2026, time.August, 12)},
		{"what is on 08/12/2025", date(2025, time.August, 12)},
		{"events 2025-08-12", date(2025, time.August, 12)},
		{"dentist December 25, 2027", date(2027, time.December, 25)},
		{"lunch on 5 March 2026", date(2026, time.March, 5)},
		{"trip on feb 30 or 12 aug", date(2026, time.August, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			pq := p.Parse(tt.query, "", now)
			got, ok := pq.Intent.(SpecificDate)
			if !ok {
				t.Fatalf("Parse(%q) intent = %T, expected SpecificDate", tt.query, pq.Intent)
			}
			if !got.Date.Equal(tt.want) {
				t.Errorf("Parse(%q) date = %v, expected %v", tt.query, got.Date, tt.want)
			}
			if got.TimeZoneAware {
				t.Errorf("Parse(%q) literal date marked time zone aware", tt.query)
			}
		})
	}
}

func TestParse_Weekday(t *testing.T) {
	p := newTestParser(t)
	monday := time.Date(2025, time.August, 11, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		query string
		now   time.Time
		want  time.Time
	}{
		// The current weekday always means the next one, never today.
		{"monday", monday, date(2025, time.August, 18)},
		{"anything on tues?", monday, date(2025, time.August, 12)},
		{"what about Sunday", monday, date(2025, time.August, 17)},
		{"thurs standup", wednesday, date(2025, time.August, 14)},
		{"wed", wednesday, date(2025, time.August, 20)},
		// An unparseable literal date falls through to the weekday check.
		{"friday or february 31", monday, date(2025, time.August, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			pq := p.Parse(tt.query, "", tt.now)
			got, ok := pq.Intent.(SpecificDate)
			if !ok {
				t.Fatalf("Parse(%q) intent = %T, expected SpecificDate", tt.query, pq.Intent)
			}
			if !got.Date.Equal(tt.want) {
				t.Errorf("Parse(%q) date = %v, expected %v", tt.query, got.Date, tt.want)
			}
		})
	}
}

func TestParse_Fallback(t *testing.T) {
	p := newTestParser(t)
	want := UpcomingEvents{DaysAhead: 7, MaxResults: 10}

	queries := []string{
		"asdkjhasdf random text",
		"",
		"   ",
		"February 31",
		"??!!",
		strings.Repeat("x", 10000),
	}

	for _, q := range queries {
		pq := p.Parse(q, "", wednesday)
		if pq.Intent != want {
			t.Errorf("Parse(%q) = %+v, expected %+v", q, pq.Intent, want)
		}
		if pq.OriginalText != q {
			t.Errorf("Parse(%q) OriginalText = %q", q, pq.OriginalText)
		}
	}
}

func TestParse_ConfiguredDefaults(t *testing.T) {
	p := newTestParser(t, WithDefaults(14, 200))

	pq := p.Parse("nothing recognisable", "", wednesday)
	want := UpcomingEvents{DaysAhead: 14, MaxResults: MaxResultsCap}
	if pq.Intent != want {
		t.Errorf("Parse() = %+v, expected %+v", pq.Intent, want)
	}

	pq = p.Parse("upcoming for 3 days", "", wednesday)
	want = UpcomingEvents{DaysAhead: 3, MaxResults: MaxResultsCap}
	if pq.Intent != want {
		t.Errorf("Parse() = %+v, expected %+v", pq.Intent, want)
	}
}

func TestParse_Totality(t *testing.T) {
	p := newTestParser(t)
	hints := []string{"", "UTC", "Not/AZone", "   ", "+05:00", "America/New_York"}
	queries := []string{"", "today", "next week", "12/31/99", "99/99/9999", "sun sat mon", "0 days", "show me 0 events"}

	for _, h := range hints {
		for _, q := range queries {
			pq := p.Parse(q, h, wednesday)
			if pq.Intent == nil {
				t.Fatalf("Parse(%q, %q) returned nil intent", q, h)
			}
			if pq.TimeZone != h {
				t.Errorf("Parse(%q, %q) TimeZone = %q, expected hint echoed", q, h, pq.TimeZone)
			}
			if ue, ok := pq.Intent.(UpcomingEvents); ok {
				if ue.DaysAhead < 1 || ue.MaxResults < 1 || ue.MaxResults > MaxResultsCap {
					t.Errorf("Parse(%q, %q) = %+v out of bounds", q, h, ue)
				}
			}
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := newTestParser(t)
	for _, q := range []string{"today", "this week", "show me 4 events", "aug 12", "friday", "junk"} {
		a := p.Parse(q, "UTC", wednesday)
		b := p.Parse(q, "UTC", wednesday)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Parse(%q) not deterministic: %+v vs %+v", q, a, b)
		}
	}
}

func TestParse_TimeZoneHint(t *testing.T) {
	p := newTestParser(t)
	// 02:00 UTC on the 13th is still the evening of the 12th in New York.
	now := time.Date(2025, time.August, 13, 2, 0, 0, 0, time.UTC)

	pq := p.Parse("today", "America/New_York", now)
	got := pq.Intent.(SpecificDate)
	if got.Date.Day() != 12 || got.Date.Hour() != 0 {
		t.Errorf("date = %v, expected midnight of the 12th", got.Date)
	}
	if got.Date.Location().String() != "America/New_York" {
		t.Errorf("location = %v, expected America/New_York", got.Date.Location())
	}
	if pq.TimeZone != "America/New_York" {
		t.Errorf("TimeZone = %q, expected hint echoed", pq.TimeZone)
	}

	unknown := p.Parse("today", "Not/AZone", now)
	none := p.Parse("today", "", now)
	if unknown.Location().String() != none.Location().String() {
		t.Errorf("unknown hint resolved to %v, expected %v", unknown.Location(), none.Location())
	}
	if !reflect.DeepEqual(unknown.Intent, none.Intent) {
		t.Errorf("unknown hint intent = %+v, expected %+v", unknown.Intent, none.Intent)
	}
	if unknown.TimeZone != "Not/AZone" {
		t.Errorf("TimeZone = %q, expected the hint verbatim", unknown.TimeZone)
	}
	if !unknown.TimeZoneFellBack() {
		t.Error("TimeZoneFellBack() = false for an unknown hint")
	}
	if none.TimeZoneFellBack() || pq.TimeZoneFellBack() {
		t.Error("TimeZoneFellBack() = true for an empty or known hint")
	}
}

func TestParsedQuery_MarshalJSON(t *testing.T) {
	p := newTestParser(t)
	pq := p.Parse("this week", "", wednesday)

	data, err := json.Marshal(pq)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if out["intent"] != string(KindDateRange) {
		t.Errorf("intent = %v, expected %q", out["intent"], KindDateRange)
	}
	if out["resolved_zone"] != "UTC" {
		t.Errorf("resolved_zone = %v, expected UTC", out["resolved_zone"])
	}
	if _, ok := out["time_zone"]; ok {
		t.Errorf("time_zone should be omitted when no hint was given")
	}
	params, ok := out["params"].(map[string]any)
	if !ok || params["start"] != "2025-08-11T00:00:00Z" {
		t.Errorf("params = %v, expected start 2025-08-11T00:00:00Z", out["params"])
	}
}
