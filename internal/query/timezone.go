package query

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const zoneinfoMarker = "zoneinfo" + string(filepath.Separator)

// Resolver maps timezone hints onto locations. Its default location is fixed
// at construction.
type Resolver struct {
	def      *time.Location
	fellBack bool
	logger   *slog.Logger
}

// NewResolver builds a Resolver. A non-empty name is used as the default
// location when it loads; otherwise the host zone is detected, and UTC is
// used when detection is not possible.
func NewResolver(name string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{logger: logger}

	if name = strings.TrimSpace(name); name != "" {
		loc, err := time.LoadLocation(name)
		if err == nil {
			r.def = loc
			return r
		}
		logger.Warn("configured default timezone is unknown, detecting host timezone",
			slog.String("timezone", name),
			slog.String("error", err.Error()))
	}

	if loc, ok := DetectLocation(); ok {
		r.def = loc
		return r
	}

	r.def = time.UTC
	r.fellBack = true
	logger.Warn("host timezone could not be detected, using UTC as default timezone")
	return r
}

// Default returns the process default location.
func (r *Resolver) Default() *time.Location {
	if r == nil || r.def == nil {
		return time.UTC
	}
	return r.def
}

// FellBack reports whether the default location is UTC because the host
// zone could not be detected.
func (r *Resolver) FellBack() bool {
	return r != nil && r.fellBack
}

// Resolve returns the location named by hint, or the default location when
// hint is empty or unknown. It never fails.
func (r *Resolver) Resolve(hint string) *time.Location {
	loc, _ := r.Lookup(hint)
	return loc
}

// Lookup is Resolve that also reports whether a non-empty hint was unknown
// and replaced by the default.
func (r *Resolver) Lookup(hint string) (loc *time.Location, known bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return r.Default(), true
	}
	loc, err := time.LoadLocation(hint)
	if err != nil {
		if r != nil && r.logger != nil {
			r.logger.Warn("unknown timezone, using default",
				slog.String("timezone", hint),
				slog.String("default", r.Default().String()))
		}
		return r.Default(), false
	}
	return loc, true
}

// DetectLocation finds the host's IANA zone from $TZ or the /etc/localtime
// symlink. The boolean is false when neither names a loadable zone.
func DetectLocation() (*time.Location, bool) {
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc, true
		}
	}

	target, err := os.Readlink("/etc/localtime")
	if err != nil {
		return nil, false
	}
	i := strings.LastIndex(target, zoneinfoMarker)
	if i < 0 {
		return nil, false
	}
	loc, err := time.LoadLocation(target[i+len(zoneinfoMarker):])
	if err != nil {
		return nil, false
	}
	return loc, true
}
