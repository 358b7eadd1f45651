package calendar_tools

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/query"
)

const (
	eventTimeLayout  = "03:04 PM on Monday, January 02"
	dayHeaderLayout  = "Monday, January 02, 2006"
	rangeStartLayout = "January 02"
	rangeEndLayout   = "January 02, 2006"

	maxDescriptionLen = 100
)

// eventTimes returns the display strings for the start and end of ev.
func eventTimes(ev calendar.Event) (start, end string) {
	if ev.AllDay {
		return ev.StartDate, ev.EndDate
	}
	return ev.Start.Format(eventTimeLayout), ev.End.Format(eventTimeLayout)
}

func formatEvent(ev calendar.Event) string {
	var b strings.Builder
	start, end := eventTimes(ev)

	fmt.Fprintf(&b, "📅 %s\n", ev.Summary)
	fmt.Fprintf(&b, "⏰ %s", start)
	if end != "" && end != start {
		fmt.Fprintf(&b, " - %s", end)
	}
	if ev.Location != "" {
		fmt.Fprintf(&b, "\n📍 %s", ev.Location)
	}
	if ev.Description != "" && utf8.RuneCountInString(ev.Description) < maxDescriptionLen {
		fmt.Fprintf(&b, "\n📝 %s", ev.Description)
	}
	return b.String()
}

func writeEvents(b *strings.Builder, events []calendar.Event) {
	for _, ev := range events {
		b.WriteString(formatEvent(ev))
		b.WriteString("\n")
	}
}

// formatQueryResponse renders the events found for a parsed query.
func formatQueryResponse(events []calendar.Event, pq query.ParsedQuery) string {
	if len(events) == 0 {
		return "No events found for your query."
	}

	var b strings.Builder
	switch intent := pq.Intent.(type) {
	case query.SpecificDate:
		fmt.Fprintf(&b, "Schedule for %s:\n\n", intent.Date.Format(dayHeaderLayout))
	case query.DateRange:
		fmt.Fprintf(&b, "Events from %s to %s:\n\n",
			intent.Start.Format(rangeStartLayout), intent.End.Format(rangeEndLayout))
	default:
		fmt.Fprintf(&b, "Calendar events for '%s':\n\n", pq.OriginalText)
	}
	writeEvents(&b, events)
	return b.String()
}

func formatUpcoming(events []calendar.Event, daysAhead int) string {
	if len(events) == 0 {
		return fmt.Sprintf("No upcoming events found in the next %d days.", daysAhead)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Upcoming Events (next %d days):\n\n", daysAhead)
	writeEvents(&b, events)
	return b.String()
}

func formatAvailability(available bool, start, end string, conflicts []calendar.Event) string {
	if available {
		return fmt.Sprintf("✅ You are available from %s to %s", start, end)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "❌ You have conflicts during %s to %s", start, end)
	if len(conflicts) > 0 {
		b.WriteString("\n\nConflicting events:")
		for _, ev := range conflicts {
			fmt.Fprintf(&b, "\n• %s", formatEvent(ev))
		}
	}
	return b.String()
}

func formatCalendars(calendars []calendar.CalendarInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d calendar(s):\n\n", len(calendars))
	for i, cal := range calendars {
		fmt.Fprintf(&b, "%d. %s\n", i+1, cal.Summary)
		fmt.Fprintf(&b, "   ID: %s\n", cal.ID)
		if cal.AccessRole != "" {
			fmt.Fprintf(&b, "   Access Role: %s\n", cal.AccessRole)
		}
		if cal.Primary {
			b.WriteString("   [PRIMARY]\n")
		}
		if cal.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", cal.Description)
		}
		if cal.TimeZone != "" {
			fmt.Fprintf(&b, "   Time Zone: %s\n", cal.TimeZone)
		}
		b.WriteString("\n")
	}
	return b.String()
}
