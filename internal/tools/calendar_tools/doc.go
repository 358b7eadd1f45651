// Package calendar_tools exposes the natural-language calendar queries as
// MCP tools.
//
// query_calendar parses a free-text question, runs the resulting intent
// against the Calendar API and formats the events for a chat client.
// parse_calendar_query returns the parse without touching the API, and
// get_upcoming_events and check_availability cover the structured cases.
// list_calendars is registered only when all calendars are enabled.
package calendar_tools
