package domain

import (
	"fmt"
	"strings"
)

type InsightType string

const (
	InsightTypeEngagementTrend InsightType = "engagement_trend"
	InsightTypeProductDemand   InsightType = "product_demand"
	InsightTypeVideoAnalysis   InsightType = "video_analysis"
	InsightTypeRecommendation  InsightType = "recommendation"
)

// AllInsightTypes na ordem em que as unidades são agendadas.
var AllInsightTypes = []InsightType{
	InsightTypeEngagementTrend,
	InsightTypeProductDemand,
	InsightTypeVideoAnalysis,
	InsightTypeRecommendation,
}

func (t InsightType) Valid() bool {
	switch t {
	case InsightTypeEngagementTrend, InsightTypeProductDemand, InsightTypeVideoAnalysis, InsightTypeRecommendation:
		return true
	}
	return false
}

func (t InsightType) String() string {
	return string(t)
}

// ParseInsightTypes valida e remove duplicados. Lista vazia significa todos os tipos.
func ParseInsightTypes(values []string) ([]InsightType, error) {
	if len(values) == 0 {
		return append([]InsightType(nil), AllInsightTypes...), nil
	}

	seen := make(map[InsightType]struct{}, len(values))
	types := make([]InsightType, 0, len(values))
	for _, v := range values {
		t := InsightType(strings.TrimSpace(strings.ToLower(v)))
		if t == "" {
			continue
		}
		if !t.Valid() {
			return nil, fmt.Errorf("unknown insight type %q", v)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}

	if len(types) == 0 {
		return append([]InsightType(nil), AllInsightTypes...), nil
	}
	return types, nil
}
