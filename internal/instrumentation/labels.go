package instrumentation

import "strings"

// Calendar kinds used as a bounded replacement for calendar IDs in labels.
const (
	CalendarKindPrimary  = "primary"
	CalendarKindUser     = "user"
	CalendarKindGroup    = "group"
	CalendarKindResource = "resource"
	CalendarKindOther    = "other"
)

// CalendarKind reduces a calendar ID to a low-cardinality label.
//
//	CalendarKind("")                                    // "primary"
//	CalendarKind("jane@example.com")                    // "user"
//	CalendarKind("abc@group.calendar.google.com")       // "group"
//	CalendarKind("en.usa#holiday@group.v.calendar.google.com") // "group"
func CalendarKind(id string) string {
	id = strings.ToLower(id)
	switch {
	case id == "" || id == "primary":
		return CalendarKindPrimary
	case strings.HasSuffix(id, "@resource.calendar.google.com"):
		return CalendarKindResource
	case strings.Contains(id, "@group.") && strings.HasSuffix(id, "calendar.google.com"):
		return CalendarKindGroup
	case strings.Contains(id, "@"):
		return CalendarKindUser
	default:
		return CalendarKindOther
	}
}
