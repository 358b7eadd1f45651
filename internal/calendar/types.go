package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

const (
	// PrimaryCalendarID addresses the authenticated user's main calendar.
	PrimaryCalendarID = "primary"

	// UntitledEvent is the title shown for events without a summary.
	UntitledEvent = "No title"

	dateLayout = "2006-01-02"

	responseDeclined = "declined"
)

// Event is a calendar event reduced to what the tools display.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Status      string
	HTMLLink    string

	// Start and End are in the location the events were requested in.
	Start time.Time
	End   time.Time

	// AllDay events carry their raw dates as well.
	AllDay    bool
	StartDate string
	EndDate   string

	Attendees []Attendee
}

// Attendee is a single event guest.
type Attendee struct {
	Email          string
	DisplayName    string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
	Self           bool
	Optional       bool
	Organizer      bool
}

// DeclinedBySelf reports whether the authenticated user declined the event.
func (e Event) DeclinedBySelf() bool {
	for _, a := range e.Attendees {
		if a.Self {
			return a.ResponseStatus == responseDeclined
		}
	}
	return false
}

// CalendarInfo describes a calendar from the user's calendar list.
type CalendarInfo struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	Primary     bool
	AccessRole  string // "owner", "writer", "reader", "freeBusyReader"
}

// toEvent converts an API event. Events without a start are dropped.
func toEvent(e *calendar.Event, loc *time.Location) (Event, bool) {
	if e == nil || e.Start == nil {
		return Event{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	ev := Event{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Status:      e.Status,
		HTMLLink:    e.HtmlLink,
	}
	if ev.Summary == "" {
		ev.Summary = UntitledEvent
	}

	switch {
	case e.Start.Date != "":
		start, err := time.ParseInLocation(dateLayout, e.Start.Date, loc)
		if err != nil {
			return Event{}, false
		}
		ev.AllDay = true
		ev.StartDate = e.Start.Date
		ev.EndDate = e.Start.Date
		ev.Start, ev.End = start, start
		if e.End != nil && e.End.Date != "" {
			if end, err := time.ParseInLocation(dateLayout, e.End.Date, loc); err == nil {
				ev.EndDate = e.End.Date
				ev.End = end
			}
		}
	case e.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, e.Start.DateTime)
		if err != nil {
			return Event{}, false
		}
		ev.Start = start.In(loc)
		ev.End = ev.Start
		if e.End != nil && e.End.DateTime != "" {
			if end, err := time.Parse(time.RFC3339, e.End.DateTime); err == nil {
				ev.End = end.In(loc)
			}
		}
	default:
		return Event{}, false
	}

	for _, a := range e.Attendees {
		if a == nil {
			continue
		}
		ev.Attendees = append(ev.Attendees, Attendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
			Self:           a.Self,
			Optional:       a.Optional,
			Organizer:      a.Organizer,
		})
	}
	return ev, true
}

func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}
