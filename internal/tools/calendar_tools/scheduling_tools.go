package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/common"
)

// RegisterSchedulingTools registers scheduling and availability tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	checkAvailabilityTool := mcp.NewTool("check_availability",
		mcp.WithDescription("Check if a specific time slot is available in the calendar"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time in ISO format (e.g., '2025-08-12T14:00:00'). Times without an offset are read in the query timezone."),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("End time in ISO format (e.g., '2025-08-12T15:00:00')"),
		),
		timezoneOption(),
		calendarIDOption(),
	)

	s.AddTool(checkAvailabilityTool, common.InstrumentedToolHandlerWithService(
		"check_availability", instrumentation.ServiceCalendar, "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckAvailability(ctx, request, sc)
		}))

	return nil
}

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// parseTimeArg reads an ISO 8601 timestamp. A value without an offset is
// interpreted in loc.
func parseTimeArg(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected ISO 8601 such as 2025-08-12T14:00:00", value)
}

func handleCheckAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	startArg := common.StringArg(args, "start_time")
	endArg := common.StringArg(args, "end_time")
	if startArg == "" || endArg == "" {
		return errorResult("Both start_time and end_time are required"), nil
	}

	loc := lookupZone(ctx, sc, common.StringArg(args, "timezone"))

	start, err := parseTimeArg(startArg, loc)
	if err != nil {
		return errorResult("start_time: %v", err), nil
	}
	end, err := parseTimeArg(endArg, loc)
	if err != nil {
		return errorResult("end_time: %v", err), nil
	}
	if !end.After(start) {
		return errorResult("end_time must be after start_time"), nil
	}

	client, errResult := calendarClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	calendarID := common.CalendarIDArg(args)
	available, err := client.CheckAvailability(ctx, calendarID, start, end)
	if err != nil {
		return errorResult("%v", err), nil
	}

	var conflicts []calendar.Event
	if !available {
		conflicts, err = client.ConflictingEvents(ctx, calendarID, start, end, loc)
		if err != nil {
			return errorResult("%v", err), nil
		}
	}

	return mcp.NewToolResultText(formatAvailability(available, startArg, endArg, conflicts)), nil
}
