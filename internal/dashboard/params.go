package dashboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/tigerroll/gridwatch/internal/query"
)

// defaultMonthlyYear is the year the monthly source totals show when none is given.
const defaultMonthlyYear = 2012

// reportRequest holds the parsed common parameters of a report request.
type reportRequest struct {
	dates query.DateRange
	// window is the number of preceding rows, one less than the user-facing width.
	window int
}

func parseDate(field, raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, paramError(field, "'%s' is not a YYYY-MM-DD date", raw)
	}
	return t, nil
}

// parseDates reads start and end. start defaults to the configured start date and end to today.
func (s *Server) parseDates(start, end string) (query.DateRange, error) {
	from, err := parseDate("start", start, s.defaultStart)
	if err != nil {
		return query.DateRange{}, err
	}
	today := s.now().UTC()
	to, err := parseDate("end", end, time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC))
	if err != nil {
		return query.DateRange{}, err
	}
	return query.NewDateRange(from, to), nil
}

// windowBounds is the default and the accepted range of a user-facing window width.
type windowBounds struct {
	def, min, max int
}

func (s *Server) dailyWindow() windowBounds {
	return windowBounds{def: s.cfg.DefaultWindow, min: s.cfg.MinWindow, max: s.cfg.MaxWindow}
}

func (s *Server) weeklyWindow() windowBounds {
	return windowBounds{def: s.cfg.WeeklyDefaultWindow, min: s.cfg.WeeklyMinWindow, max: s.cfg.MaxWindow}
}

// parseWindow reads the user-facing window width and converts it to a preceding-row count.
func parseWindow(raw string, b windowBounds) (int, error) {
	width := b.def
	if raw = strings.TrimSpace(raw); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, paramError("window", "'%s' is not an integer", raw)
		}
		width = n
	}
	if width < b.min || width > b.max {
		return 0, paramError("window", "must be between %d and %d, got %d", b.min, b.max, width)
	}
	return width - 1, nil
}

func parseYear(field, raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1 || y > 9999 {
		return 0, paramError(field, "'%s' is not a year", raw)
	}
	return y, nil
}
