package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"github.com/vfg2006/marketing-insights-api/internal/usecases/insighting"
	"github.com/vfg2006/marketing-insights-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-insights-api/pkg/log"
	"github.com/vfg2006/marketing-insights-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxRunBodyBytes  = 16 * 1024
	maxListLimit     = 200
	defaultListLimit = 50
)

// now é trocado nos testes
var now = time.Now

// RunInsightsRequest é o corpo de POST /v1/businesses/:id/insights/run. Datas são inclusivas.
type RunInsightsRequest struct {
	InsightTypes []string `json:"insight_types"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
}

func RunInsights(runner insighting.Runner, defaultWindowDays int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		businessID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req RunInsightsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.WithField("business_id", businessID).WithError(err).Warn("insights: invalid run request body")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "invalid request body", nil)
			return
		}

		types, err := domain.ParseInsightTypes(req.InsightTypes)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidInsightType, err.Error(), map[string]any{"accepted": domain.AllInsightTypes})
			return
		}

		window, err := parseWindow(req.StartDate, req.EndDate, defaultWindowDays)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidWindow, err.Error(), nil)
			return
		}

		logger.WithFields(log.Fields{
			"business_id":  businessID,
			"window_start": window.Start.Format(time.DateOnly),
			"window_end":   window.End.Format(time.DateOnly),
		}).Info("insights: running pipeline for business")

		report, err := runner.RunPipeline(r.Context(), businessID, types, window)
		if err != nil {
			writeRunError(w, logger.WithField("business_id", businessID), err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	})
}

func ListInsights(runner insighting.Runner) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		businessID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		query := r.URL.Query()

		filters := domain.InsightFilters{BusinessID: businessID, Limit: defaultListLimit}

		if raw := query.Get("type"); raw != "" {
			types, err := domain.ParseInsightTypes(strings.Split(raw, ","))
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidInsightType, err.Error(), map[string]any{"accepted": domain.AllInsightTypes})
				return
			}
			filters.Types = types
		}

		if raw := query.Get("limit"); raw != "" {
			limit, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || limit == 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit must be a positive integer", nil)
				return
			}
			filters.Limit = min(limit, maxListLimit)
		}

		insights, err := runner.ListInsights(r.Context(), filters)
		if err != nil {
			logger.WithField("business_id", businessID).WithError(err).Error("insights: failed to list insights")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list insights", nil)
			return
		}
		if insights == nil {
			insights = []*domain.Insight{}
		}

		writeJSON(w, http.StatusOK, insights)
	})
}

func parseWindow(startDate, endDate string, defaultDays int) (domain.TimeRange, error) {
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return domain.TimeRange{}, errors.New("start_date must be YYYY-MM-DD")
	}

	end, err := utils.ParseDate(endDate)
	if err != nil {
		return domain.TimeRange{}, errors.New("end_date must be YYYY-MM-DD")
	}

	return domain.ResolveWindow(start, end, defaultDays, now())
}

func writeRunError(w http.ResponseWriter, logger log.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrBusinessNotFound):
		apiErrors.WriteError(w, apiErrors.ErrBusinessNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrNoBusinesses):
		apiErrors.WriteError(w, apiErrors.ErrNoBusinesses, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidTimeRange):
		apiErrors.WriteError(w, apiErrors.ErrInvalidWindow, err.Error(), nil)
	default:
		logger.WithError(err).Error("insights: pipeline run failed")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "pipeline run failed", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
