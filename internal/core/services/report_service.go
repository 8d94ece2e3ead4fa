package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// ReportService is the metric aggregation engine. It is stateless per
// request: the scope is resolved once, shared read-only by every metric
// computed for the request, and dropped afterwards.
type ReportService struct {
	scopes ports.ScopeResolver
	logger *slog.Logger
}

var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new report service.
func NewReportService(scopes ports.ScopeResolver, logger *slog.Logger) ports.ReportService {
	return &ReportService{
		scopes: scopes,
		logger: logger.With("service", "reports"),
	}
}

// TimeSeries computes a single metric over the requested range. Input
// validation runs front to back before any read: range parsing, metric
// lookup, scope kind, then a single scope resolution.
func (s *ReportService) TimeSeries(ctx context.Context, query ports.ReportQuery) (*domain.TimeSeries, error) {
	rng, metric, reader, err := s.prepare(ctx, query)
	if err != nil {
		return nil, err
	}

	series, _, err := buildSeries(ctx, reader, rng, metric)
	if err != nil {
		return nil, err
	}
	return series, nil
}

// LegacySeries computes the same series as TimeSeries but flattens it to
// the historical {value, timestamp} shape. No new behavior, no extra
// validation; older consumers depend on this exact wire format.
func (s *ReportService) LegacySeries(ctx context.Context, query ports.ReportQuery) ([]domain.LegacyPoint, error) {
	series, err := s.TimeSeries(ctx, query)
	if err != nil {
		return nil, err
	}

	points := make([]domain.LegacyPoint, 0, len(series.Points))
	for _, p := range series.Points {
		points = append(points, domain.LegacyPoint{
			Value:     p.Value,
			Timestamp: p.Day.Unix(),
		})
	}
	return points, nil
}

// Summary computes the six metrics concurrently over a single resolved
// scope and folds each series into its scalar. The fan-out is bounded to
// the fixed metric set; the first failure cancels the sibling reads and
// fails the whole summary.
func (s *ReportService) Summary(ctx context.Context, query ports.SummaryQuery) (*domain.Summary, error) {
	rng, err := domain.NewDateRange(query.Since, query.Until)
	if err != nil {
		return nil, err
	}

	reader, err := s.resolveScope(ctx, query.AccountID, query.ScopeType, query.ScopeID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	folds := make([]seriesFold, len(domain.Metrics))
	errs := make([]error, len(domain.Metrics))

	var wg sync.WaitGroup
	wg.Add(len(domain.Metrics))
	for i, metric := range domain.Metrics {
		go func(i int, metric domain.Metric) {
			defer wg.Done()

			_, fold, err := buildSeries(ctx, reader, rng, metric)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", metric, err)
				cancel()
				return
			}
			folds[i] = fold
		}(i, metric)
	}
	wg.Wait()

	// The failing read cancels its siblings, so slots may hold
	// context.Canceled. Surface the causal failure, not the fallout.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		if !errors.Is(err, context.Canceled) {
			firstErr = err
			break
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	summary := &domain.Summary{}
	for i, metric := range domain.Metrics {
		fold := folds[i]
		switch metric {
		case domain.MetricConversationsCount:
			summary.ConversationsCount = fold.totalCount
		case domain.MetricIncomingMessagesCount:
			summary.IncomingMessagesCount = fold.totalCount
		case domain.MetricOutgoingMessagesCount:
			summary.OutgoingMessagesCount = fold.totalCount
		case domain.MetricResolutionsCount:
			summary.ResolutionsCount = fold.totalCount
		case domain.MetricAvgFirstResponseTime:
			summary.AvgFirstResponseTime = fold.avgOfDailyAverages()
		case domain.MetricAvgResolutionTime:
			summary.AvgResolutionTime = fold.avgOfDailyAverages()
		}
	}
	return summary, nil
}

// prepare runs the shared validation pipeline for the single-metric
// operations and resolves the scope exactly once.
func (s *ReportService) prepare(ctx context.Context, query ports.ReportQuery) (domain.DateRange, domain.Metric, ports.ScopeReader, error) {
	rng, err := domain.NewDateRange(query.Since, query.Until)
	if err != nil {
		return domain.DateRange{}, "", nil, err
	}

	metric, err := domain.ParseMetric(query.Metric)
	if err != nil {
		return domain.DateRange{}, "", nil, err
	}

	reader, err := s.resolveScope(ctx, query.AccountID, query.ScopeType, query.ScopeID)
	if err != nil {
		return domain.DateRange{}, "", nil, err
	}

	return rng, metric, reader, nil
}

func (s *ReportService) resolveScope(ctx context.Context, accountID int64, scopeType string, scopeID int64) (ports.ScopeReader, error) {
	kind, err := domain.ParseScopeKind(scopeType)
	if err != nil {
		return nil, err
	}

	return s.scopes.Resolve(ctx, domain.ScopeRef{
		AccountID: accountID,
		Kind:      kind,
		ID:        scopeID,
	})
}

// seriesFold carries the per-series aggregates the summary needs, computed
// while the series is filled.
type seriesFold struct {
	// totalCount is the sum over a count series.
	totalCount int64
	// valueSum is the sum of bucket values over an average series,
	// zero-filled days included.
	valueSum float64
	// samples is the number of store rows that contributed to the series.
	samples int64
	// buckets is the number of calendar days in range.
	buckets int
}

// avgOfDailyAverages folds an average series the way the original
// dashboards did: the arithmetic mean over every bucket day in range,
// zero-filled gap days included, or 0 when nothing contributed at all.
// Averaging per-day averages is statistically naive (gap days drag the
// result down and busy days weigh the same as quiet ones) but consumers
// depend on these exact numbers.
func (f seriesFold) avgOfDailyAverages() float64 {
	if f.samples == 0 || f.buckets == 0 {
		return 0
	}
	return f.valueSum / float64(f.buckets)
}

// buildSeries executes one metric strategy and default-fills the result so
// that every calendar day in range appears exactly once.
func buildSeries(ctx context.Context, scope ports.ScopeReader, rng domain.DateRange, metric domain.Metric) (*domain.TimeSeries, seriesFold, error) {
	strategy, ok := metricStrategies[metric]
	if !ok {
		return nil, seriesFold{}, fmt.Errorf("metric %q has no registered strategy", metric)
	}

	days := rng.Days()
	fold := seriesFold{buckets: len(days)}
	points := make([]domain.DataPoint, 0, len(days))

	switch strategy.kind {
	case countMetric:
		rows, err := strategy.count(ctx, scope, rng)
		if err != nil {
			return nil, seriesFold{}, err
		}

		byDay := make(map[int64]int64, len(rows))
		for _, row := range rows {
			byDay[domain.TruncateToDay(row.Day).Unix()] = row.Count
		}

		for _, day := range days {
			count := byDay[day.Unix()]
			points = append(points, domain.DataPoint{Day: day, Value: float64(count)})
			fold.totalCount += count
		}

	case averageMetric:
		rows, err := strategy.average(ctx, scope, rng)
		if err != nil {
			return nil, seriesFold{}, err
		}

		byDay := make(map[int64]ports.DailyAverage, len(rows))
		for _, row := range rows {
			byDay[domain.TruncateToDay(row.Day).Unix()] = row
			fold.samples += row.Samples
		}

		for _, day := range days {
			row := byDay[day.Unix()]
			points = append(points, domain.DataPoint{Day: day, Value: row.Average})
			fold.valueSum += row.Average
		}
	}

	return &domain.TimeSeries{Metric: metric, Points: points}, fold, nil
}
