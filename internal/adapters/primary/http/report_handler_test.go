package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mw "github.com/arvik/support-analytics-backend/internal/adapters/primary/http/middleware"
	"github.com/arvik/support-analytics-backend/internal/auth"
	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/mocks"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

func newReportRouter(service *mocks.MockReportService) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewReportHandler(service, NewErrorHandler(logger), logger)

	r := chi.NewRouter()
	r.Route("/accounts/{accountID}/reports", handler.RegisterRoutes)
	return r
}

func reportRequest(t *testing.T, target string, claims *auth.Claims) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(mw.ContextWithClaims(req.Context(), claims))
}

func agentClaims(accountID int64) *auth.Claims {
	return &auth.Claims{UserID: 9, AccountID: accountID}
}

func TestReportHandler_TimeSeries(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	series := &domain.TimeSeries{
		Metric: domain.MetricConversationsCount,
		Points: []domain.DataPoint{
			{Day: day, Value: 2},
			{Day: day.AddDate(0, 0, 1), Value: 0},
		},
	}

	service.On("TimeSeries", mock.Anything, ports.ReportQuery{
		AccountID: 7,
		ScopeType: "account",
		Metric:    "conversations_count",
		Since:     "2024-03-05",
		Until:     "2024-03-06",
	}).Return(series, nil)

	req := reportRequest(t,
		"/accounts/7/reports/timeseries?metric=conversations_count&since=2024-03-05&until=2024-03-06",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body TimeSeriesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "conversations_count", body.Metric)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "2024-03-05", body.Data[0].Date)
	assert.Equal(t, 2.0, body.Data[0].Value)
	assert.Equal(t, "2024-03-06", body.Data[1].Date)
	assert.Equal(t, 0.0, body.Data[1].Value)

	service.AssertExpectations(t)
}

func TestReportHandler_TimeSeries_ScopeParams(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	service.On("TimeSeries", mock.Anything, ports.ReportQuery{
		AccountID: 7,
		ScopeType: "inbox",
		ScopeID:   3,
		Metric:    "incoming_messages_count",
		Since:     "1709596800",
		Until:     "1709769600",
	}).Return(&domain.TimeSeries{Metric: domain.MetricIncomingMessagesCount}, nil)

	req := reportRequest(t,
		"/accounts/7/reports/timeseries?metric=incoming_messages_count&type=inbox&id=3&since=1709596800&until=1709769600",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestReportHandler_TimeSeries_DefaultsToAccountScope(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	service.On("TimeSeries", mock.Anything, mock.MatchedBy(func(q ports.ReportQuery) bool {
		return q.ScopeType == "account" && q.ScopeID == 0
	})).Return(&domain.TimeSeries{Metric: domain.MetricConversationsCount}, nil)

	req := reportRequest(t,
		"/accounts/7/reports/timeseries?metric=conversations_count&since=2024-03-05&until=2024-03-06",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestReportHandler_TimeSeries_UnknownMetric(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	service.On("TimeSeries", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrUnknownMetric)

	req := reportRequest(t,
		"/accounts/7/reports/timeseries?metric=nonsense&since=2024-03-05&until=2024-03-06",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "UNKNOWN_METRIC", body.Code)
}

func TestReportHandler_TimeSeries_UnparsableTime(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	service.On("TimeSeries", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewTimeParseError("until", "not-a-date"))

	req := reportRequest(t,
		"/accounts/7/reports/timeseries?metric=conversations_count&since=2024-03-05&until=not-a-date",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "UNPARSABLE_TIME", body.Code)
	assert.Equal(t, "until", body.Details["field"])
}

func TestReportHandler_TimeSeries_ForeignAccountForbidden(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	req := reportRequest(t,
		"/accounts/8/reports/timeseries?metric=conversations_count",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	service.AssertNotCalled(t, "TimeSeries")
}

func TestReportHandler_TimeSeries_MissingClaims(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/accounts/7/reports/timeseries?metric=conversations_count", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	service.AssertNotCalled(t, "TimeSeries")
}

func TestReportHandler_TimeSeries_NonNumericScopeID(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	req := reportRequest(t,
		"/accounts/7/reports/timeseries?metric=conversations_count&type=inbox&id=abc",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "TimeSeries")
}

func TestReportHandler_LegacyReport(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	points := []domain.LegacyPoint{
		{Value: 2, Timestamp: day.Unix()},
		{Value: 0, Timestamp: day.AddDate(0, 0, 1).Unix()},
	}

	service.On("LegacySeries", mock.Anything, mock.Anything).Return(points, nil)

	req := reportRequest(t,
		"/accounts/7/reports/?metric=conversations_count&since=2024-03-05&until=2024-03-06",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// The legacy body is a bare array, not an envelope.
	var body []domain.LegacyPoint
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, points, body)
}

func TestReportHandler_LegacyReport_EmptySeriesIsEmptyArray(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	service.On("LegacySeries", mock.Anything, mock.Anything).
		Return([]domain.LegacyPoint(nil), nil)

	req := reportRequest(t,
		"/accounts/7/reports/?metric=conversations_count&since=2024-03-07&until=2024-03-05",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestReportHandler_Summary(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	summary := &domain.Summary{
		ConversationsCount:    3,
		IncomingMessagesCount: 4,
		OutgoingMessagesCount: 2,
		AvgFirstResponseTime:  15.5,
		AvgResolutionTime:     0,
		ResolutionsCount:      1,
	}

	service.On("Summary", mock.Anything, ports.SummaryQuery{
		AccountID: 7,
		ScopeType: "agent",
		ScopeID:   12,
		Since:     "2024-03-05",
		Until:     "2024-03-07",
	}).Return(summary, nil)

	req := reportRequest(t,
		"/accounts/7/reports/summary?type=agent&id=12&since=2024-03-05&until=2024-03-07",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]float64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 3.0, body["conversations_count"])
	assert.Equal(t, 4.0, body["incoming_messages_count"])
	assert.Equal(t, 2.0, body["outgoing_messages_count"])
	assert.Equal(t, 15.5, body["avg_first_response_time"])
	assert.Equal(t, 0.0, body["avg_resolution_time"])
	assert.Equal(t, 1.0, body["resolutions_count"])

	service.AssertExpectations(t)
}

func TestReportHandler_Summary_AgentNotFound(t *testing.T) {
	service := new(mocks.MockReportService)
	router := newReportRouter(service)

	service.On("Summary", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrAgentNotFound)

	req := reportRequest(t,
		"/accounts/7/reports/summary?type=agent&id=9999&since=2024-03-05&until=2024-03-07",
		agentClaims(7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
