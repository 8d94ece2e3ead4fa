package domain

import (
	"strconv"
	"time"

	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
)

// Temporal layouts accepted for report boundaries, tried in order.
var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseTimePoint normalizes a report boundary value to an instant. It accepts
// a time.Time, an integer type (epoch seconds), or a string holding epoch
// seconds, a date, or a date-time. Anything else fails with a TimeParseError
// naming the field, before any query runs.
func ParseTimePoint(field string, value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case string:
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(epoch, 0).UTC(), nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
	}

	return time.Time{}, apperrors.NewTimeParseError(field, value)
}

// DateRange is an inclusive range of calendar days. Since and Until are
// always truncated to day precision in UTC.
type DateRange struct {
	Since time.Time
	Until time.Time
}

// NewDateRange parses both boundaries and truncates them to calendar days.
func NewDateRange(since, until any) (DateRange, error) {
	start, err := ParseTimePoint("since", since)
	if err != nil {
		return DateRange{}, err
	}

	end, err := ParseTimePoint("until", until)
	if err != nil {
		return DateRange{}, err
	}

	return DateRange{
		Since: truncateToDay(start),
		Until: truncateToDay(end),
	}, nil
}

// Days returns every calendar day from Since to Until inclusive, in order.
// Every returned series must carry exactly one bucket per day in this set,
// so this is the source of truth for bucket-completeness.
func (r DateRange) Days() []time.Time {
	if r.Since.After(r.Until) {
		return nil
	}

	days := make([]time.Time, 0, int(r.Until.Sub(r.Since).Hours()/24)+1)
	for day := r.Since; !day.After(r.Until); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// Contains reports whether the instant falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateToDay(t)
	return !day.Before(r.Since) && !day.After(r.Until)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TruncateToDay normalizes an instant to its UTC calendar day. Storage
// adapters use it to line up grouped rows with the bucket calendar.
func TruncateToDay(t time.Time) time.Time {
	return truncateToDay(t)
}
