package domain

import "time"

type UnitStatus string

const (
	UnitSucceeded UnitStatus = "succeeded"
	UnitFailed    UnitStatus = "failed"
)

// UnitOfWork é uma tupla (negócio, tipo de insight, janela).
type UnitOfWork struct {
	BusinessID  string      `json:"business_id"`
	InsightType InsightType `json:"insight_type"`
	Window      TimeRange   `json:"window"`
}

type UnitOutcome struct {
	UnitOfWork
	Status      UnitStatus    `json:"status"`
	InsightID   string        `json:"insight_id,omitempty"`
	Created     bool          `json:"created"`
	FailureKind FailureKind   `json:"failure_kind,omitempty"`
	Error       string        `json:"error,omitempty"`
	Retries     int           `json:"retries"`
	Duration    time.Duration `json:"duration_ns"`
}

type RunReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Outcomes   []UnitOutcome `json:"outcomes"`
}

// FailedInsightTypes lista os tipos que falharam para um negócio, permitindo retentar só esse subconjunto.
func (r *RunReport) FailedInsightTypes(businessID string) []InsightType {
	types := make([]InsightType, 0)
	for _, o := range r.Outcomes {
		if o.Status == UnitFailed && o.BusinessID == businessID {
			types = append(types, o.InsightType)
		}
	}
	return types
}

// FailuresByKind conta as falhas por tipo.
func (r *RunReport) FailuresByKind() map[FailureKind]int {
	counts := make(map[FailureKind]int)
	for _, o := range r.Outcomes {
		if o.Status == UnitFailed {
			counts[o.FailureKind]++
		}
	}
	return counts
}
