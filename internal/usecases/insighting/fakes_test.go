package insighting

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

// memoryInsightRepository imita o upsert por idempotency_key da tabela insights
type memoryInsightRepository struct {
	mu    sync.Mutex
	byKey map[string]*domain.Insight
	seq   int
}

func newMemoryInsightRepository() *memoryInsightRepository {
	return &memoryInsightRepository{byKey: make(map[string]*domain.Insight)}
}

func (r *memoryInsightRepository) Upsert(_ context.Context, insight *domain.Insight) (*domain.WriteOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byKey[insight.IdempotencyKey]; ok {
		existing.Title = insight.Title
		existing.Body = insight.Body
		existing.GeneratedAt = insight.GeneratedAt
		return &domain.WriteOutcome{InsightID: existing.ID, Created: false}, nil
	}

	r.seq++
	stored := *insight
	stored.ID = fmt.Sprintf("ins-%d", r.seq)
	r.byKey[insight.IdempotencyKey] = &stored
	return &domain.WriteOutcome{InsightID: stored.ID, Created: true}, nil
}

func (r *memoryInsightRepository) List(_ context.Context, filters domain.InsightFilters) ([]*domain.Insight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Insight, 0)
	for _, in := range r.byKey {
		if in.BusinessID != filters.BusinessID {
			continue
		}
		if len(filters.Types) > 0 && !slices.Contains(filters.Types, in.InsightType) {
			continue
		}
		if !filters.WindowStart.IsZero() && !in.WindowStart.Equal(filters.WindowStart) {
			continue
		}
		if !filters.WindowEnd.IsZero() && !in.WindowEnd.Equal(filters.WindowEnd) {
			continue
		}
		copied := *in
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filters.Limit > 0 && uint64(len(out)) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *memoryInsightRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

func (r *memoryInsightRepository) byType(businessID string, t domain.InsightType) *domain.Insight {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.byKey {
		if in.BusinessID == businessID && in.InsightType == t {
			copied := *in
			return &copied
		}
	}
	return nil
}
