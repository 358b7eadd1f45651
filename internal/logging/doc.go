// Package logging provides structured logging utilities for calendar-mcp.
//
// It builds the process logger from configuration and supplies attribute
// helpers so that log lines use the same keys everywhere.
//
// # Usage Patterns
//
// Build the process logger once at startup:
//
//	logger, closer, err := logging.Setup(logging.Options{Level: "info", File: "calendar_mcp.log"})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	slog.SetDefault(logger)
//
// Attach standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "query_calendar")
//	logger.Info("query parsed",
//	    logging.Intent("date_range"),
//	    logging.Calendar(calendarID))
//
// # Stdout
//
// The stdio MCP transport owns stdout, so Setup only ever writes to stderr
// and the optional log file.
//
// # Privacy
//
// Calendar IDs are frequently email addresses. Calendar() hashes them so log
// lines can be correlated without exposing the address.
package logging
