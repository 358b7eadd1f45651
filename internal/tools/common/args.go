package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teemow/calendar-mcp/internal/calendar"
)

// StringArg returns the trimmed string argument name, or "" when it is
// missing or not a string.
func StringArg(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

// CalendarIDArg returns the calendar_id argument, defaulting to the primary
// calendar.
func CalendarIDArg(args map[string]interface{}) string {
	if id := StringArg(args, "calendar_id"); id != "" {
		return id
	}
	return calendar.PrimaryCalendarID
}

// ListArg returns the list argument name. It accepts a comma separated
// string or a JSON array of strings; blank entries are dropped.
func ListArg(args map[string]interface{}, name string) []string {
	var items []string
	switch v := args[name].(type) {
	case string:
		items = strings.Split(v, ",")
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				items = append(items, str)
			}
		}
	case []string:
		items = v
	}

	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IntArg returns the integer argument name, or def when it is absent.
// JSON numbers arrive as float64; numeric strings are accepted too. The
// value must lie in [min, max].
func IntArg(args map[string]interface{}, name string, def, min, max int) (int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return def, nil
	}

	var n int
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}

	if n < min || n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return n, nil
}
