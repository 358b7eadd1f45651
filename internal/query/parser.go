package query

import (
	"log/slog"
	"time"
)

const (
	// DefaultDaysAhead is the look-ahead window used when a query names none.
	DefaultDaysAhead = 7

	// DefaultMaxResults is the event count used when a query names none.
	DefaultMaxResults = 10
)

// Parser classifies calendar queries. The zero value is not usable; create
// one with NewParser.
type Parser struct {
	resolver   *Resolver
	daysAhead  int
	maxResults int
	logger     *slog.Logger
}

// Option configures a Parser.
type Option func(*parserOptions)

type parserOptions struct {
	timeZone   string
	resolver   *Resolver
	daysAhead  int
	maxResults int
	logger     *slog.Logger
}

// WithDefaultTimeZone sets the zone used when a query carries no usable hint.
// An empty name means detect the host zone.
func WithDefaultTimeZone(name string) Option {
	return func(o *parserOptions) { o.timeZone = name }
}

// WithResolver shares an existing Resolver instead of building one.
func WithResolver(r *Resolver) Option {
	return func(o *parserOptions) { o.resolver = r }
}

// WithDefaults sets the fallback look-ahead window and event count. Values
// below 1 keep the package defaults; maxResults is capped at MaxResultsCap.
func WithDefaults(daysAhead, maxResults int) Option {
	return func(o *parserOptions) {
		if daysAhead >= 1 {
			o.daysAhead = daysAhead
		}
		if maxResults >= 1 {
			o.maxResults = min(maxResults, MaxResultsCap)
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *parserOptions) { o.logger = logger }
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	o := parserOptions{
		daysAhead:  DefaultDaysAhead,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.resolver == nil {
		o.resolver = NewResolver(o.timeZone, o.logger)
	}
	return &Parser{
		resolver:   o.resolver,
		daysAhead:  o.daysAhead,
		maxResults: o.maxResults,
		logger:     o.logger,
	}
}

// Resolver returns the timezone resolver used by the parser.
func (p *Parser) Resolver() *Resolver {
	return p.resolver
}

// Defaults returns the fallback look-ahead window and event count.
func (p *Parser) Defaults() UpcomingEvents {
	return UpcomingEvents{DaysAhead: p.daysAhead, MaxResults: p.maxResults}
}

// Parse classifies query and extracts the parameters of its intent. now is
// the reference instant and is interpreted in the zone resolved from hint.
// Parse always returns a usable ParsedQuery.
func (p *Parser) Parse(query, hint string, now time.Time) ParsedQuery {
	loc, known := p.resolver.Lookup(hint)
	now = now.In(loc)

	return ParsedQuery{
		Intent:       p.resolve(Classify(query), query, now),
		TimeZone:     hint,
		OriginalText: query,
		loc:          loc,
		fellBack:     !known,
	}
}

func (p *Parser) resolve(category Category, query string, now time.Time) Intent {
	today := StartOfDay(now)

	switch category {
	case CategoryToday:
		return SpecificDate{Date: today, TimeZoneAware: true}
	case CategoryTomorrow:
		return SpecificDate{Date: today.AddDate(0, 0, 1), TimeZoneAware: true}
	case CategoryYesterday:
		return SpecificDate{Date: today.AddDate(0, 0, -1), TimeZoneAware: true}
	case CategoryThisWeek:
		start := WeekStart(now)
		return DateRange{Start: start, End: EndOfDay(start.AddDate(0, 0, 6))}
	case CategoryNextWeek:
		start := WeekStart(now).AddDate(0, 0, 7)
		return DateRange{Start: start, End: EndOfDay(start.AddDate(0, 0, 6))}
	case CategoryUpcoming:
		return UpcomingEvents{
			DaysAhead:  ExtractDaysAhead(query, p.daysAhead),
			MaxResults: ExtractMaxResults(query, p.maxResults),
		}
	case CategoryLiteralDate:
		if date, ok := ExtractLiteralDate(query, now.Location(), now); ok {
			return SpecificDate{Date: date}
		}
		p.logger.Debug("query looked like a date but none could be parsed",
			slog.String("query", query))
	}

	if day, ok := ExtractWeekday(query); ok {
		return SpecificDate{Date: NextOccurrence(now, day), TimeZoneAware: true}
	}
	return p.Defaults()
}
