package calendar_tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/google"
	"github.com/teemow/calendar-mcp/internal/server"
)

// RegisterCalendarTools registers all Calendar-related tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterQueryTools(s, sc); err != nil {
		return fmt.Errorf("failed to register query tools: %w", err)
	}

	if err := RegisterSchedulingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	if sc.Config().Features.EnableAllCalendars {
		if err := RegisterCalendarListTools(s, sc); err != nil {
			return fmt.Errorf("failed to register calendar list tools: %w", err)
		}
	}

	return nil
}

// errorResult renders a failure the way chat clients expect it.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + fmt.Sprintf(format, args...))
}

// calendarClient returns the calendar client or a result explaining why
// there is none.
func calendarClient(sc *server.ServerContext) (calendar.EventSource, *mcp.CallToolResult) {
	client, err := sc.CalendarClient()
	if err == nil {
		return client, nil
	}
	if errors.Is(err, google.ErrNoCredentials) {
		return nil, errorResult("%v\n\n%s", err, google.AuthenticationErrorMessage(sc.Config().Google))
	}
	return nil, errorResult("%v", err)
}

func timezoneOption() mcp.ToolOption {
	return mcp.WithString("timezone",
		mcp.Description("Optional IANA timezone for the query (e.g., 'America/New_York'). Defaults to the server timezone."),
	)
}

func calendarIDOption() mcp.ToolOption {
	return mcp.WithString("calendar_id",
		mcp.Description("Optional calendar ID or email address to query. Defaults to 'primary'."),
		mcp.DefaultString(calendar.PrimaryCalendarID),
	)
}
