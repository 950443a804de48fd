package domain

import "time"

// MetricSample é uma leitura pontual das métricas de uma conta social.
// PlatformData é preservado como recebido e nunca interpretado pelo pipeline.
type MetricSample struct {
	ID              string         `json:"id"`
	SocialAccountID string         `json:"social_account_id"`
	Timestamp       time.Time      `json:"timestamp"`
	Followers       int64          `json:"followers"`
	Likes           int64          `json:"likes"`
	Comments        int64          `json:"comments"`
	Shares          int64          `json:"shares"`
	Views           int64          `json:"views"`
	PlatformData    map[string]any `json:"platform_data,omitempty"`
}
