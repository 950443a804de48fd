package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/vfg2006/marketing-insights-api/internal/scheduler"
	"github.com/vfg2006/marketing-insights-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-insights-api/pkg/log"
)

// SyncService é o agendador que pode ser disparado manualmente
type SyncService interface {
	TriggerManualSync(ctx context.Context) error
	GetStatus() map[string]any
}

// CronJobServices contém os serviços de cron que podem ser executados manualmente
type CronJobServices struct {
	InsightSync SyncService
}

// RunCronJob dispara a geração de insights para todos os negócios em segundo plano
func RunCronJob(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		if services.InsightSync == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "insight sync service unavailable", nil)
			return
		}

		err := services.InsightSync.TriggerManualSync(r.Context())
		if errors.Is(err, scheduler.ErrSyncAlreadyRunning) {
			apiErrors.WriteError(w, apiErrors.ErrSyncAlreadyRunning, err.Error(), nil)
			return
		}
		if err != nil {
			logger.WithError(err).Error("cron: failed to trigger insight sync")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "failed to trigger insight sync", nil)
			return
		}

		logger.Info("cron: insight sync triggered manually")
		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "insight sync started",
			"type":    "insights",
		})
	})
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.InsightSync != nil {
			status["insights"] = services.InsightSync.GetStatus()
		}
		writeJSON(w, http.StatusOK, status)
	})
}
