package domain

import (
	"time"

	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
)

// Metric identifies one of the report series the engine knows how to build.
type Metric string

const (
	MetricConversationsCount    Metric = "conversations_count"
	MetricIncomingMessagesCount Metric = "incoming_messages_count"
	MetricOutgoingMessagesCount Metric = "outgoing_messages_count"
	MetricResolutionsCount      Metric = "resolutions_count"
	MetricAvgFirstResponseTime  Metric = "avg_first_response_time"
	MetricAvgResolutionTime     Metric = "avg_resolution_time"
)

// Metrics is the full fixed set, in the order the summary reports them.
var Metrics = []Metric{
	MetricConversationsCount,
	MetricIncomingMessagesCount,
	MetricOutgoingMessagesCount,
	MetricResolutionsCount,
	MetricAvgFirstResponseTime,
	MetricAvgResolutionTime,
}

// ParseMetric validates a metric name against the fixed set.
func ParseMetric(name string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == name {
			return m, nil
		}
	}
	return "", apperrors.ErrUnknownMetric
}

// ScopeKind selects which entity a report is computed over.
type ScopeKind string

const (
	ScopeAccount ScopeKind = "account"
	ScopeInbox   ScopeKind = "inbox"
	ScopeAgent   ScopeKind = "agent"
)

// ParseScopeKind validates a scope type received at the boundary.
func ParseScopeKind(kind string) (ScopeKind, error) {
	switch ScopeKind(kind) {
	case ScopeAccount, ScopeInbox, ScopeAgent:
		return ScopeKind(kind), nil
	}
	return "", apperrors.ErrInvalidScopeKind
}

// ScopeRef names a concrete scope before resolution. ID is ignored for
// account scope.
type ScopeRef struct {
	AccountID int64
	Kind      ScopeKind
	ID        int64
}

// DataPoint is one calendar-day bucket of a time series.
type DataPoint struct {
	Day   time.Time
	Value float64
}

// TimeSeries is an ordered, gap-free sequence of day buckets covering the
// requested range. Days the store had no rows for carry the default value 0.
type TimeSeries struct {
	Metric Metric
	Points []DataPoint
}

// LegacyPoint is the historical flattened series shape: the bucket value
// paired with the day as epoch seconds. Kept for wire compatibility with
// older dashboard consumers.
type LegacyPoint struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

// Summary rolls the six metric series into scalars. Count series fold by
// summation. Average series fold into the mean of the per-day values over
// every bucket day in range, zero-filled days included; the result is 0 when
// no day had a contributing row. That average-of-averages is a deliberate
// approximation carried over from the original dashboards and must not be
// replaced with an event-weighted mean.
type Summary struct {
	ConversationsCount    int64
	IncomingMessagesCount int64
	OutgoingMessagesCount int64
	AvgFirstResponseTime  float64
	AvgResolutionTime     float64
	ResolutionsCount      int64
}
