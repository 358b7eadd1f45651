package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/common"
)

// RegisterCalendarListTools registers calendar list tools with the MCP server
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCalendarsTool := mcp.NewTool("list_calendars",
		mcp.WithDescription("List the calendars accessible to the user with their time zone and access role"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("calendar_ids",
			mcp.Description("Optional comma-separated calendar IDs to look up instead of the full list"),
		),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandlerWithService(
		"list_calendars", instrumentation.ServiceCalendar, "calendarList.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ids := common.ListArg(request.GetArguments(), "calendar_ids")

	client, errResult := calendarClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	var (
		calendars []calendar.CalendarInfo
		err       error
	)
	if len(ids) > 0 {
		calendars, err = client.Calendars(ctx, ids)
	} else {
		calendars, err = client.ListCalendars(ctx)
	}
	if err != nil {
		return errorResult("%v", err), nil
	}

	return mcp.NewToolResultText(formatCalendars(calendars)), nil
}
