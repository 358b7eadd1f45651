// Package calendar is a read-only client for the Google Calendar API.
//
// Every call waits on a rate limiter, runs inside a tracing span and reports
// its outcome to an optional Recorder. Calendar metadata is cached.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, calendar.Options{Config: cfg.Calendar},
//	    option.WithTokenSource(creds.TokenSource))
//	if err != nil {
//	    return err
//	}
//
//	events, err := client.EventsForDate(ctx, "primary", day, loc)
package calendar
