package services

import (
	"context"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// metricKind separates the two aggregation shapes the engine supports.
type metricKind int

const (
	countMetric metricKind = iota
	averageMetric
)

// metricStrategy binds a metric to the relation read that produces it.
// Exactly one of count/average is set, matching kind.
type metricStrategy struct {
	kind    metricKind
	count   func(ctx context.Context, scope ports.ScopeReader, r domain.DateRange) ([]ports.DailyCount, error)
	average func(ctx context.Context, scope ports.ScopeReader, r domain.DateRange) ([]ports.DailyAverage, error)
}

// metricStrategies is the fixed registry. Metric names are validated
// against domain.Metrics before lookup, so a missing entry here is a
// programming error, not an input error.
var metricStrategies = map[domain.Metric]metricStrategy{
	domain.MetricConversationsCount: {
		kind: countMetric,
		count: func(ctx context.Context, scope ports.ScopeReader, r domain.DateRange) ([]ports.DailyCount, error) {
			return scope.ConversationCountsByDay(ctx, r)
		},
	},
	domain.MetricIncomingMessagesCount: {
		kind: countMetric,
		count: func(ctx context.Context, scope ports.ScopeReader, r domain.DateRange) ([]ports.DailyCount, error) {
			return scope.MessageCountsByDay(ctx, r, domain.MessageIncoming)
		},
	},
	domain.MetricOutgoingMessagesCount: {
		kind: countMetric,
		count: func(ctx context.Context, scope ports.ScopeReader, r domain.DateRange) ([]ports.DailyCount, error) {
			return scope.MessageCountsByDay(ctx, r, domain.MessageOutgoing)
		},
	},
	domain.MetricResolutionsCount: {
		kind: countMetric,
		count: func(ctx context.Context, scope ports.ScopeReader, r domain.DateRange) ([]ports.DailyCount, error) {
			return scope.ResolvedConversationCountsByDay(ctx, r)
		},
	},
	domain.MetricAvgFirstResponseTime: {
		kind: averageMetric,
		average: func(ctx context.Context, scope ports.ScopeReader, r domain.DateRange) ([]ports.DailyAverage, error) {
			return scope.EventValueAveragesByDay(ctx, r, domain.ReportingEventFirstResponse)
		},
	},
	domain.MetricAvgResolutionTime: {
		kind: averageMetric,
		average: func(ctx context.Context, scope ports.ScopeReader, r domain.DateRange) ([]ports.DailyAverage, error) {
			return scope.EventValueAveragesByDay(ctx, r, domain.ReportingEventConversationResolved)
		},
	},
}
