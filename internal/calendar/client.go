package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calendar-mcp/internal/config"
	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/logging"
)

// RangeMaxResults caps the events returned for a date range.
const RangeMaxResults = 50

// ErrNotConfigured is returned when no calendar client could be created.
var ErrNotConfigured = errors.New("calendar service not initialized")

// Recorder receives the outcome of every API call.
// *instrumentation.Metrics satisfies it.
type Recorder interface {
	RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

// EventSource is the read surface the MCP tools depend on.
type EventSource interface {
	EventsForDate(ctx context.Context, calendarID string, date time.Time, loc *time.Location) ([]Event, error)
	EventsInRange(ctx context.Context, calendarID string, start, end time.Time, loc *time.Location) ([]Event, error)
	UpcomingEvents(ctx context.Context, calendarID string, now time.Time, daysAhead, maxResults int, loc *time.Location) ([]Event, error)
	CheckAvailability(ctx context.Context, calendarID string, start, end time.Time) (bool, error)
	ConflictingEvents(ctx context.Context, calendarID string, start, end time.Time, loc *time.Location) ([]Event, error)
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	Calendars(ctx context.Context, ids []string) ([]CalendarInfo, error)
}

// Options configures a Client.
type Options struct {
	Config   config.CalendarConfig
	Recorder Recorder
	Logger   logging.Logger
}

// Client wraps the Google Calendar service
type Client struct {
	svc      *calendar.Service
	limiter  *rate.Limiter
	cache    *metadataCache
	recorder Recorder
	logger   logging.Logger
}

var _ EventSource = (*Client)(nil)

// NewClient creates a Calendar client. clientOpts carry the credentials,
// for example option.WithTokenSource or option.WithHTTPClient.
func NewClient(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	rps := opts.Config.RequestsPerSecond
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	burst := opts.Config.Burst
	if burst < 1 {
		burst = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewSlogAdapter(slog.Default())
	}

	return &Client{
		svc:      svc,
		limiter:  rate.NewLimiter(limit, burst),
		cache:    newMetadataCache(opts.Config.CacheSize, opts.Config.CacheTTL),
		recorder: opts.Recorder,
		logger:   logger,
	}, nil
}

// call runs one API operation under the limiter, a span and the recorder.
func (c *Client) call(ctx context.Context, operation, calendarID string, fn func(ctx context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(calendarID).Build()...)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		instrumentation.SetSpanError(span, err)
		return fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	if c.recorder != nil {
		c.recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, duration)
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.logger.Warn("calendar API call failed",
			logging.Operation(operation), logging.Calendar(calendarID), logging.Err(err))
		return err
	}
	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("calendar API call",
		logging.Operation(operation), logging.Calendar(calendarID), slog.Duration(logging.KeyDuration, duration))
	return nil
}

// ListOptions selects events for ListEvents.
type ListOptions struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	// MaxResults limits the result to one page of that size. Zero reads
	// every page.
	MaxResults int
	// Location is used to interpret all-day dates and is sent to the API
	// as the response time zone.
	Location *time.Location
}

// ListEvents lists single events ordered by start time.
func (c *Client) ListEvents(ctx context.Context, opts ListOptions) ([]Event, error) {
	calendarID := opts.CalendarID
	if calendarID == "" {
		calendarID = PrimaryCalendarID
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var items []*calendar.Event
	err := c.call(ctx, "events.list", calendarID, func(ctx context.Context) error {
		call := c.svc.Events.List(calendarID).
			TimeMin(opts.TimeMin.Format(time.RFC3339Nano)).
			TimeMax(opts.TimeMax.Format(time.RFC3339Nano)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if name := loc.String(); name != "Local" {
			call = call.TimeZone(name)
		}

		if opts.MaxResults > 0 {
			resp, err := call.MaxResults(int64(opts.MaxResults)).Do()
			if err != nil {
				return err
			}
			items = resp.Items
			return nil
		}
		return call.Pages(ctx, func(page *calendar.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(items))
	for _, item := range items {
		if ev, ok := toEvent(item, loc); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

// EventsForDate returns the events from midnight of date to the next
// midnight, both in loc.
func (c *Client) EventsForDate(ctx context.Context, calendarID string, date time.Time, loc *time.Location) ([]Event, error) {
	if loc != nil {
		date = date.In(loc)
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return c.ListEvents(ctx, ListOptions{
		CalendarID: calendarID,
		TimeMin:    start,
		TimeMax:    start.AddDate(0, 0, 1),
		Location:   loc,
	})
}

// EventsInRange returns at most RangeMaxResults events between start and end.
func (c *Client) EventsInRange(ctx context.Context, calendarID string, start, end time.Time, loc *time.Location) ([]Event, error) {
	return c.ListEvents(ctx, ListOptions{
		CalendarID: calendarID,
		TimeMin:    start,
		TimeMax:    end,
		MaxResults: RangeMaxResults,
		Location:   loc,
	})
}

// UpcomingEvents returns at most maxResults events between now and
// daysAhead days later.
func (c *Client) UpcomingEvents(ctx context.Context, calendarID string, now time.Time, daysAhead, maxResults int, loc *time.Location) ([]Event, error) {
	if maxResults < 1 {
		maxResults = 1
	}
	return c.ListEvents(ctx, ListOptions{
		CalendarID: calendarID,
		TimeMin:    now,
		TimeMax:    now.AddDate(0, 0, daysAhead),
		MaxResults: maxResults,
		Location:   loc,
	})
}

// ConflictingEvents returns the events between start and end that the user
// has not declined.
func (c *Client) ConflictingEvents(ctx context.Context, calendarID string, start, end time.Time, loc *time.Location) ([]Event, error) {
	events, err := c.ListEvents(ctx, ListOptions{
		CalendarID: calendarID,
		TimeMin:    start,
		TimeMax:    end,
		Location:   loc,
	})
	if err != nil {
		return nil, err
	}
	return withoutDeclined(events), nil
}

// CheckAvailability reports whether no timed, non-declined event falls
// between start and end. All-day events do not block availability.
func (c *Client) CheckAvailability(ctx context.Context, calendarID string, start, end time.Time) (bool, error) {
	events, err := c.ConflictingEvents(ctx, calendarID, start, end, start.Location())
	if err != nil {
		return false, err
	}
	return Available(events), nil
}

// Available reports whether events contains no timed event.
func Available(events []Event) bool {
	for _, ev := range events {
		if !ev.AllDay && !ev.DeclinedBySelf() {
			return false
		}
	}
	return true
}

func withoutDeclined(events []Event) []Event {
	kept := events[:0]
	for _, ev := range events {
		if !ev.DeclinedBySelf() {
			kept = append(kept, ev)
		}
	}
	return kept
}

// ListCalendars returns the user's calendar list and refreshes the
// metadata cache.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var calendars []CalendarInfo
	err := c.call(ctx, "calendarList.list", "", func(ctx context.Context) error {
		return c.svc.CalendarList.List().Context(ctx).Pages(ctx, func(page *calendar.CalendarList) error {
			for _, entry := range page.Items {
				calendars = append(calendars, toCalendarInfo(entry))
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	for _, info := range calendars {
		c.cache.put(info)
	}
	return calendars, nil
}

// Calendar returns metadata for one calendar, from the cache when possible.
func (c *Client) Calendar(ctx context.Context, id string) (CalendarInfo, error) {
	if id == "" {
		id = PrimaryCalendarID
	}
	if info, ok := c.cache.get(id); ok {
		return info, nil
	}

	var entry *calendar.CalendarListEntry
	err := c.call(ctx, "calendarList.get", id, func(ctx context.Context) error {
		var err error
		entry, err = c.svc.CalendarList.Get(id).Context(ctx).Do()
		return err
	})
	if err != nil {
		return CalendarInfo{}, fmt.Errorf("failed to get calendar: %w", err)
	}

	info := toCalendarInfo(entry)
	c.cache.put(info)
	if id != info.ID {
		c.cache.lru.Add(id, info)
	}
	return info, nil
}

// maxConcurrentLookups bounds the parallel metadata requests in Calendars.
const maxConcurrentLookups = 4

// Calendars fetches metadata for several calendars concurrently, keeping
// the order of ids.
func (c *Client) Calendars(ctx context.Context, ids []string) ([]CalendarInfo, error) {
	out := make([]CalendarInfo, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, id := range ids {
		g.Go(func() error {
			info, err := c.Calendar(ctx, id)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			out[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
