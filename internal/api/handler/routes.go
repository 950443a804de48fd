package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/marketing-insights-api/internal/api/handler/router"
	"github.com/vfg2006/marketing-insights-api/internal/usecases/insighting"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func Insights(runner insighting.Runner, defaultWindowDays int) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/businesses/:id/insights/run",
			Method:      http.MethodPost,
			Handler:     RunInsights(runner, defaultWindowDays),
			Middlewares: []func(http.Handler) http.Handler{limitBody(maxRunBodyBytes)},
		},
		{
			Path:    "/v1/businesses/:id/insights",
			Method:  http.MethodGet,
			Handler: ListInsights(runner),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/insights/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
