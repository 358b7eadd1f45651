package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/logging"
	"github.com/teemow/calendar-mcp/internal/query"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/common"
)

const (
	maxUpcomingResults = query.MaxResultsCap
	maxDaysAhead       = 365
)

// RegisterQueryTools registers the natural-language and upcoming-events tools.
func RegisterQueryTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	queryCalendarTool := mcp.NewTool("query_calendar",
		mcp.WithDescription("Query Google Calendar for appointments and events using natural language"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query about calendar events (e.g., 'What's on my schedule today?', 'Do I have any meetings tomorrow?', 'Show me this week's appointments')"),
		),
		timezoneOption(),
		calendarIDOption(),
	)

	s.AddTool(queryCalendarTool, common.InstrumentedToolHandlerWithService(
		"query_calendar", instrumentation.ServiceCalendar, "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQueryCalendar(ctx, request, sc)
		}))

	parseQueryTool := mcp.NewTool("parse_calendar_query",
		mcp.WithDescription("Show how a natural language calendar query is interpreted, without reading the calendar"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query about calendar events"),
		),
		timezoneOption(),
	)

	s.AddTool(parseQueryTool, common.InstrumentedToolHandler("parse_calendar_query", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleParseQuery(ctx, request, sc)
		}))

	defaults := sc.Parser().Defaults()
	upcomingTool := mcp.NewTool("get_upcoming_events",
		mcp.WithDescription("Get upcoming calendar events within a specified time range"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of events to return"),
			mcp.DefaultNumber(float64(defaults.MaxResults)),
			mcp.Min(1),
			mcp.Max(maxUpcomingResults),
		),
		mcp.WithNumber("days_ahead",
			mcp.Description("Number of days ahead to search for events"),
			mcp.DefaultNumber(float64(defaults.DaysAhead)),
			mcp.Min(1),
			mcp.Max(maxDaysAhead),
		),
		timezoneOption(),
		calendarIDOption(),
	)

	s.AddTool(upcomingTool, common.InstrumentedToolHandlerWithService(
		"get_upcoming_events", instrumentation.ServiceCalendar, "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpcomingEvents(ctx, request, sc)
		}))

	return nil
}

// parse runs the parser and records the outcome.
func parse(ctx context.Context, sc *server.ServerContext, text, hint string) query.ParsedQuery {
	pq := sc.Parser().Parse(text, hint, sc.Now())
	kind := string(pq.Intent.Kind())

	sc.Metrics().RecordQueryIntent(ctx, kind)
	if pq.TimeZoneFellBack() {
		recordZoneFallback(ctx, sc, hint)
	}
	common.SetIntent(ctx, kind, pq.Location().String())

	sc.Logger().Debug("parsed calendar query",
		logging.Intent(kind),
		logging.Timezone(pq.Location().String()),
		logging.RequestID(server.RequestIDFromContext(ctx)))
	return pq
}

// lookupZone resolves a timezone hint for tools that take no query text.
func lookupZone(ctx context.Context, sc *server.ServerContext, hint string) *time.Location {
	loc, known := sc.Parser().Resolver().Lookup(hint)
	if !known {
		recordZoneFallback(ctx, sc, hint)
	}
	return loc
}

func recordZoneFallback(ctx context.Context, sc *server.ServerContext, hint string) {
	sc.Metrics().RecordTimezoneFallback(ctx)
	common.RecordTimezoneFallback(ctx, hint)
}

func handleQueryCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	text := common.StringArg(args, "query")
	if text == "" {
		return errorResult("Query cannot be empty"), nil
	}

	pq := parse(ctx, sc, text, common.StringArg(args, "timezone"))
	calendarID := common.CalendarIDArg(args)

	client, errResult := calendarClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	events, err := runIntent(ctx, client, calendarID, pq, sc.Now())
	if err != nil {
		return errorResult("%v", err), nil
	}

	return mcp.NewToolResultText(formatQueryResponse(events, pq)), nil
}

// runIntent executes the API call that answers pq.
func runIntent(ctx context.Context, client calendar.EventSource, calendarID string, pq query.ParsedQuery, now time.Time) ([]calendar.Event, error) {
	loc := pq.Location()
	switch intent := pq.Intent.(type) {
	case query.SpecificDate:
		return client.EventsForDate(ctx, calendarID, intent.Date, loc)
	case query.DateRange:
		return client.EventsInRange(ctx, calendarID, intent.Start, intent.End, loc)
	case query.UpcomingEvents:
		return client.UpcomingEvents(ctx, calendarID, now, intent.DaysAhead, intent.MaxResults, loc)
	default:
		return nil, fmt.Errorf("unsupported intent %T", pq.Intent)
	}
}

func handleParseQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	text := common.StringArg(args, "query")
	if text == "" {
		return errorResult("Query cannot be empty"), nil
	}

	pq := parse(ctx, sc, text, common.StringArg(args, "timezone"))
	data, err := json.MarshalIndent(pq, "", "  ")
	if err != nil {
		return errorResult("failed to encode parsed query: %v", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleUpcomingEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	defaults := sc.Parser().Defaults()

	maxResults, err := common.IntArg(args, "max_results", defaults.MaxResults, 1, maxUpcomingResults)
	if err != nil {
		return errorResult("%v", err), nil
	}
	daysAhead, err := common.IntArg(args, "days_ahead", defaults.DaysAhead, 1, maxDaysAhead)
	if err != nil {
		return errorResult("%v", err), nil
	}

	loc := lookupZone(ctx, sc, common.StringArg(args, "timezone"))

	client, errResult := calendarClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	events, err := client.UpcomingEvents(ctx, common.CalendarIDArg(args), sc.Now(), daysAhead, maxResults, loc)
	if err != nil {
		sc.Logger().Warn("failed to fetch upcoming events", logging.Err(err), slog.Int("days_ahead", daysAhead))
		return errorResult("%v", err), nil
	}

	return mcp.NewToolResultText(formatUpcoming(events, daysAhead)), nil
}
