package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultScopes are the OAuth scopes requested for every credential kind.
// The server never writes to calendars.
var DefaultScopes = []string{
	calendar.CalendarReadonlyScope,
}
