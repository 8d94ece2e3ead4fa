package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/arvik/support-analytics-backend/internal/adapters/primary/http/middleware"
	"github.com/arvik/support-analytics-backend/internal/auth"
	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// ReportHandler handles HTTP requests for account reports.
type ReportHandler struct {
	reportService ports.ReportService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	reportService ports.ReportService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "reports"),
	}
}

// RegisterRoutes sets up the routing for all report endpoints. The routes
// are mounted under /accounts/{accountID}/reports.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleLegacyReport)
	r.Get("/timeseries", h.HandleTimeSeries)
	r.Get("/summary", h.HandleSummary)
}

// --- Response DTOs ---

// TimeSeriesPointDTO is one day bucket of a report series.
type TimeSeriesPointDTO struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// TimeSeriesResponse is the JSON shape of a single-metric report.
type TimeSeriesResponse struct {
	Metric string               `json:"metric"`
	Data   []TimeSeriesPointDTO `json:"data"`
}

// SummaryResponse folds the six metrics into scalars, keyed the way the
// historical dashboards expect them.
type SummaryResponse struct {
	ConversationsCount    int64   `json:"conversations_count"`
	IncomingMessagesCount int64   `json:"incoming_messages_count"`
	OutgoingMessagesCount int64   `json:"outgoing_messages_count"`
	AvgFirstResponseTime  float64 `json:"avg_first_response_time"`
	AvgResolutionTime     float64 `json:"avg_resolution_time"`
	ResolutionsCount      int64   `json:"resolutions_count"`
}

// --- Handlers ---

// HandleTimeSeries handles GET /accounts/{accountID}/reports/timeseries
func (h *ReportHandler) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	query, err := h.reportQuery(r, accountID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	series, err := h.reportService.TimeSeries(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	data := make([]TimeSeriesPointDTO, 0, len(series.Points))
	for _, p := range series.Points {
		data = append(data, TimeSeriesPointDTO{
			Date:  p.Day.Format("2006-01-02"),
			Value: p.Value,
		})
	}

	WriteJSON(w, http.StatusOK, TimeSeriesResponse{
		Metric: string(series.Metric),
		Data:   data,
	})
}

// HandleLegacyReport handles GET /accounts/{accountID}/reports. The body
// is a bare array of {value, timestamp} pairs; older dashboard consumers
// parse exactly this shape.
func (h *ReportHandler) HandleLegacyReport(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	query, err := h.reportQuery(r, accountID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	points, err := h.reportService.LegacySeries(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if points == nil {
		points = []domain.LegacyPoint{}
	}
	WriteJSON(w, http.StatusOK, points)
}

// HandleSummary handles GET /accounts/{accountID}/reports/summary
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	query := ports.SummaryQuery{
		AccountID: accountID,
		ScopeType: scopeTypeParam(params.Get("type")),
		Since:     params.Get("since"),
		Until:     params.Get("until"),
	}

	scopeID, err := scopeIDParam(params.Get("id"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	query.ScopeID = scopeID

	start := time.Now()
	summary, err := h.reportService.Summary(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Debug("summary computed",
		"account_id", accountID,
		"scope_type", query.ScopeType,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	WriteJSON(w, http.StatusOK, SummaryResponse{
		ConversationsCount:    summary.ConversationsCount,
		IncomingMessagesCount: summary.IncomingMessagesCount,
		OutgoingMessagesCount: summary.OutgoingMessagesCount,
		AvgFirstResponseTime:  summary.AvgFirstResponseTime,
		AvgResolutionTime:     summary.AvgResolutionTime,
		ResolutionsCount:      summary.ResolutionsCount,
	})
}

// reportQuery assembles the raw single-metric query from the request.
// Values pass through unvalidated; the report service owns validation
// order and error shapes.
func (h *ReportHandler) reportQuery(r *http.Request, accountID int64) (ports.ReportQuery, error) {
	params := r.URL.Query()

	scopeID, err := scopeIDParam(params.Get("id"))
	if err != nil {
		return ports.ReportQuery{}, err
	}

	return ports.ReportQuery{
		AccountID: accountID,
		ScopeType: scopeTypeParam(params.Get("type")),
		ScopeID:   scopeID,
		Metric:    params.Get("metric"),
		Since:     params.Get("since"),
		Until:     params.Get("until"),
	}, nil
}

// scopeTypeParam defaults an absent type to the account scope, matching
// the behavior report consumers have always relied on.
func scopeTypeParam(value string) string {
	if value == "" {
		return string(domain.ScopeAccount)
	}
	return value
}

func scopeIDParam(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequestError(err, "id must be an integer")
	}
	return id, nil
}

// authorizeAccount checks that the authenticated user belongs to the
// account named in the URL.
func (h *ReportHandler) authorizeAccount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return 0, false
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "accountID must be an integer"))
		return 0, false
	}

	if claims.AccountID != accountID {
		h.errorHandler.Handle(w, r, apperrors.ErrForbidden)
		return 0, false
	}

	return accountID, true
}

// getClaims extracts and validates user claims from the request context.
func (h *ReportHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}
