package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/mocks"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
	"github.com/arvik/support-analytics-backend/internal/core/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(value string) time.Time {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

// threeDayRange is 2024-03-05 through 2024-03-07 inclusive.
func threeDayRange() domain.DateRange {
	rng, err := domain.NewDateRange("2024-03-05", "2024-03-07")
	if err != nil {
		panic(err)
	}
	return rng
}

func TestReportService_TimeSeries(t *testing.T) {
	ctx := context.Background()

	t.Run("count series fills gap days with zero", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockReader := mocks.NewMockScopeReader()

		mockScopes.On("Resolve", ctx, domain.ScopeRef{AccountID: 1, Kind: domain.ScopeAccount}).
			Return(mockReader, nil)
		mockReader.On("ConversationCountsByDay", ctx, threeDayRange()).
			Return([]ports.DailyCount{
				{Day: day("2024-03-05"), Count: 2},
				{Day: day("2024-03-07"), Count: 1},
			}, nil)

		svc := services.NewReportService(mockScopes, testLogger())

		series, err := svc.TimeSeries(ctx, ports.ReportQuery{
			AccountID: 1,
			ScopeType: "account",
			Metric:    "conversations_count",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		require.NoError(t, err)
		require.Len(t, series.Points, 3)
		assert.Equal(t, domain.MetricConversationsCount, series.Metric)
		assert.Equal(t, []float64{2, 0, 1}, pointValues(series))
		assert.Equal(t, day("2024-03-06"), series.Points[1].Day)
		mockScopes.AssertNumberOfCalls(t, "Resolve", 1)
	})

	t.Run("average series fills gap days with zero", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockReader := mocks.NewMockScopeReader()

		mockScopes.On("Resolve", ctx, mock.Anything).Return(mockReader, nil)
		mockReader.On("EventValueAveragesByDay", ctx, threeDayRange(), domain.ReportingEventFirstResponse).
			Return([]ports.DailyAverage{
				{Day: day("2024-03-05"), Average: 15, Samples: 2},
				{Day: day("2024-03-07"), Average: 30, Samples: 1},
			}, nil)

		svc := services.NewReportService(mockScopes, testLogger())

		series, err := svc.TimeSeries(ctx, ports.ReportQuery{
			AccountID: 1,
			ScopeType: "account",
			Metric:    "avg_first_response_time",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		require.NoError(t, err)
		assert.Equal(t, []float64{15, 0, 30}, pointValues(series))
	})

	t.Run("inbox scope reads messages through the same contract", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockReader := mocks.NewMockScopeReader()

		mockScopes.On("Resolve", ctx, domain.ScopeRef{AccountID: 1, Kind: domain.ScopeInbox, ID: 42}).
			Return(mockReader, nil)
		mockReader.On("MessageCountsByDay", ctx, threeDayRange(), domain.MessageIncoming).
			Return([]ports.DailyCount{{Day: day("2024-03-06"), Count: 4}}, nil)

		svc := services.NewReportService(mockScopes, testLogger())

		series, err := svc.TimeSeries(ctx, ports.ReportQuery{
			AccountID: 1,
			ScopeType: "inbox",
			ScopeID:   42,
			Metric:    "incoming_messages_count",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		require.NoError(t, err)
		assert.Equal(t, []float64{0, 4, 0}, pointValues(series))
	})

	t.Run("unknown metric fails before any read", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		svc := services.NewReportService(mockScopes, testLogger())

		series, err := svc.TimeSeries(ctx, ports.ReportQuery{
			AccountID: 1,
			ScopeType: "account",
			Metric:    "nonexistent_metric",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		assert.Nil(t, series)
		assert.ErrorIs(t, err, apperrors.ErrUnknownMetric)
		mockScopes.AssertNotCalled(t, "Resolve")
	})

	t.Run("unparsable boundary names the field", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		svc := services.NewReportService(mockScopes, testLogger())

		_, err := svc.TimeSeries(ctx, ports.ReportQuery{
			AccountID: 1,
			ScopeType: "account",
			Metric:    "conversations_count",
			Since:     "2024-03-05",
			Until:     "whenever",
		})

		var parseErr *apperrors.TimeParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "until", parseErr.Field)
		mockScopes.AssertNotCalled(t, "Resolve")
	})

	t.Run("invalid scope kind rejected", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		svc := services.NewReportService(mockScopes, testLogger())

		_, err := svc.TimeSeries(ctx, ports.ReportQuery{
			AccountID: 1,
			ScopeType: "label",
			Metric:    "conversations_count",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidScopeKind)
		mockScopes.AssertNotCalled(t, "Resolve")
	})

	t.Run("missing inbox propagates not found", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockScopes.On("Resolve", ctx, mock.Anything).Return(nil, apperrors.ErrInboxNotFound)

		svc := services.NewReportService(mockScopes, testLogger())

		_, err := svc.TimeSeries(ctx, ports.ReportQuery{
			AccountID: 1,
			ScopeType: "inbox",
			ScopeID:   999,
			Metric:    "conversations_count",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		assert.ErrorIs(t, err, apperrors.ErrInboxNotFound)
	})

	t.Run("empty range yields empty series", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockReader := mocks.NewMockScopeReader()

		mockScopes.On("Resolve", ctx, mock.Anything).Return(mockReader, nil)
		mockReader.On("ConversationCountsByDay", ctx, mock.Anything).
			Return([]ports.DailyCount{}, nil)

		svc := services.NewReportService(mockScopes, testLogger())

		series, err := svc.TimeSeries(ctx, ports.ReportQuery{
			AccountID: 1,
			ScopeType: "account",
			Metric:    "conversations_count",
			Since:     "2024-03-08",
			Until:     "2024-03-05",
		})

		require.NoError(t, err)
		assert.Empty(t, series.Points)
	})
}

func TestReportService_LegacySeries(t *testing.T) {
	ctx := context.Background()

	mockScopes := mocks.NewMockScopeResolver()
	mockReader := mocks.NewMockScopeReader()

	mockScopes.On("Resolve", ctx, mock.Anything).Return(mockReader, nil)
	mockReader.On("ConversationCountsByDay", ctx, threeDayRange()).
		Return([]ports.DailyCount{{Day: day("2024-03-05"), Count: 2}}, nil)

	svc := services.NewReportService(mockScopes, testLogger())

	points, err := svc.LegacySeries(ctx, ports.ReportQuery{
		AccountID: 1,
		ScopeType: "account",
		Metric:    "conversations_count",
		Since:     "2024-03-05",
		Until:     "2024-03-07",
	})

	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, domain.LegacyPoint{Value: 2, Timestamp: day("2024-03-05").Unix()}, points[0])
	assert.Equal(t, domain.LegacyPoint{Value: 0, Timestamp: day("2024-03-06").Unix()}, points[1])
	assert.Equal(t, domain.LegacyPoint{Value: 0, Timestamp: day("2024-03-07").Unix()}, points[2])
}

func TestReportService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("folds all six metrics over one resolved scope", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockReader := mocks.NewMockScopeReader()

		mockScopes.On("Resolve", mock.Anything, domain.ScopeRef{AccountID: 1, Kind: domain.ScopeAccount}).
			Return(mockReader, nil)

		mockReader.On("ConversationCountsByDay", mock.Anything, threeDayRange()).
			Return([]ports.DailyCount{
				{Day: day("2024-03-05"), Count: 2},
				{Day: day("2024-03-07"), Count: 1},
			}, nil)
		mockReader.On("MessageCountsByDay", mock.Anything, threeDayRange(), domain.MessageIncoming).
			Return([]ports.DailyCount{{Day: day("2024-03-06"), Count: 4}}, nil)
		mockReader.On("MessageCountsByDay", mock.Anything, threeDayRange(), domain.MessageOutgoing).
			Return([]ports.DailyCount{{Day: day("2024-03-06"), Count: 2}}, nil)
		mockReader.On("ResolvedConversationCountsByDay", mock.Anything, threeDayRange()).
			Return([]ports.DailyCount{{Day: day("2024-03-07"), Count: 1}}, nil)
		mockReader.On("EventValueAveragesByDay", mock.Anything, threeDayRange(), domain.ReportingEventFirstResponse).
			Return([]ports.DailyAverage{
				{Day: day("2024-03-05"), Average: 15, Samples: 2},
				{Day: day("2024-03-07"), Average: 30, Samples: 1},
			}, nil)
		mockReader.On("EventValueAveragesByDay", mock.Anything, threeDayRange(), domain.ReportingEventConversationResolved).
			Return([]ports.DailyAverage{}, nil)

		svc := services.NewReportService(mockScopes, testLogger())

		summary, err := svc.Summary(ctx, ports.SummaryQuery{
			AccountID: 1,
			ScopeType: "account",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), summary.ConversationsCount)
		assert.Equal(t, int64(4), summary.IncomingMessagesCount)
		assert.Equal(t, int64(2), summary.OutgoingMessagesCount)
		assert.Equal(t, int64(1), summary.ResolutionsCount)
		// (15 + 0 + 30) / 3 bucket days, zero-filled day included
		assert.InDelta(t, 15.0, summary.AvgFirstResponseTime, 1e-9)
		// no contributing rows at all folds to 0, not NaN
		assert.Zero(t, summary.AvgResolutionTime)

		mockScopes.AssertNumberOfCalls(t, "Resolve", 1)
	})

	t.Run("single metric failure fails the whole summary", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockReader := mocks.NewMockScopeReader()
		storeErr := errors.New("connection reset")

		mockScopes.On("Resolve", mock.Anything, mock.Anything).Return(mockReader, nil)
		mockReader.On("ConversationCountsByDay", mock.Anything, mock.Anything).
			Return(nil, storeErr).Maybe()
		mockReader.On("MessageCountsByDay", mock.Anything, mock.Anything, mock.Anything).
			Return([]ports.DailyCount{}, nil).Maybe()
		mockReader.On("ResolvedConversationCountsByDay", mock.Anything, mock.Anything).
			Return([]ports.DailyCount{}, nil).Maybe()
		mockReader.On("EventValueAveragesByDay", mock.Anything, mock.Anything, mock.Anything).
			Return([]ports.DailyAverage{}, nil).Maybe()

		svc := services.NewReportService(mockScopes, testLogger())

		summary, err := svc.Summary(ctx, ports.SummaryQuery{
			AccountID: 1,
			ScopeType: "account",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		assert.Nil(t, summary)
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("cancelled sibling reads never mask the causal failure", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockReader := mocks.NewMockScopeReader()
		storeErr := errors.New("connection reset")

		mockScopes.On("Resolve", mock.Anything, mock.Anything).Return(mockReader, nil)

		// The conversations read (first in metric order) parks until the
		// failing message read cancels it.
		mockReader.On("ConversationCountsByDay", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				readCtx := args.Get(0).(context.Context)
				<-readCtx.Done()
			}).
			Return(nil, context.Canceled)
		mockReader.On("MessageCountsByDay", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, storeErr)
		mockReader.On("ResolvedConversationCountsByDay", mock.Anything, mock.Anything).
			Return([]ports.DailyCount{}, nil).Maybe()
		mockReader.On("EventValueAveragesByDay", mock.Anything, mock.Anything, mock.Anything).
			Return([]ports.DailyAverage{}, nil).Maybe()

		svc := services.NewReportService(mockScopes, testLogger())

		summary, err := svc.Summary(ctx, ports.SummaryQuery{
			AccountID: 1,
			ScopeType: "account",
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		assert.Nil(t, summary)
		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, context.Canceled)
	})

	t.Run("scope resolution failure skips every read", func(t *testing.T) {
		mockScopes := mocks.NewMockScopeResolver()
		mockScopes.On("Resolve", mock.Anything, mock.Anything).Return(nil, apperrors.ErrAgentNotFound)

		svc := services.NewReportService(mockScopes, testLogger())

		summary, err := svc.Summary(ctx, ports.SummaryQuery{
			AccountID: 1,
			ScopeType: "agent",
			ScopeID:   7,
			Since:     "2024-03-05",
			Until:     "2024-03-07",
		})

		assert.Nil(t, summary)
		assert.ErrorIs(t, err, apperrors.ErrAgentNotFound)
	})
}

func pointValues(series *domain.TimeSeries) []float64 {
	values := make([]float64, 0, len(series.Points))
	for _, p := range series.Points {
		values = append(values, p.Value)
	}
	return values
}
