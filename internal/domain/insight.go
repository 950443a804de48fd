package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

type Insight struct {
	ID             string      `json:"id"`
	BusinessID     string      `json:"business_id"`
	InsightType    InsightType `json:"insight_type"`
	Title          string      `json:"title"`
	Body           string      `json:"body"`
	WindowStart    time.Time   `json:"window_start"`
	WindowEnd      time.Time   `json:"window_end"`
	IdempotencyKey string      `json:"idempotency_key"`
	GeneratedAt    time.Time   `json:"generated_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type InsightFilters struct {
	BusinessID string
	Types      []InsightType
	// WindowStart e WindowEnd, quando preenchidos, restringem à janela exata
	WindowStart time.Time
	WindowEnd   time.Time
	Limit       uint64
}

type WriteOutcome struct {
	InsightID string `json:"insight_id"`
	Created   bool   `json:"created"`
}

// IdempotencyKey identifica o slot de saída de uma unidade de trabalho.
func IdempotencyKey(businessID string, insightType InsightType, window TimeRange) string {
	raw := strings.Join([]string{
		businessID,
		string(insightType),
		window.Start.UTC().Format(time.RFC3339Nano),
		window.End.UTC().Format(time.RFC3339Nano),
	}, "|")

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
