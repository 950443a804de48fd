package domain

// RankedContent é um item do top-N por taxa de engajamento.
type RankedContent struct {
	ContentID      string         `json:"content_id"`
	ContentType    ContentType    `json:"content_type"`
	Title          string         `json:"title"`
	PublishedAt    string         `json:"published_at"`
	Likes          int64          `json:"likes"`
	Comments       int64          `json:"comments"`
	Shares         int64          `json:"shares"`
	Views          int64          `json:"views"`
	EngagementRate float64        `json:"engagement_rate"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type ContentTypeStats struct {
	Count              int     `json:"count"`
	MeanEngagementRate float64 `json:"mean_engagement_rate"`
}

// AggregationResult existe apenas durante uma execução do pipeline.
type AggregationResult struct {
	BusinessID   string      `json:"business_id"`
	BusinessName string      `json:"business_name"`
	Industry     string      `json:"industry"`
	Window       TimeRange   `json:"window"`
	InsightType  InsightType `json:"insight_type"`

	InsufficientData  bool `json:"insufficient_data"`
	MetricSampleCount int  `json:"metric_sample_count"`
	ContentCount      int  `json:"content_count"`
	SampleCount       int  `json:"sample_count"`

	TotalFollowers   int64   `json:"total_followers"`
	AverageFollowers float64 `json:"average_followers"`
	FollowerDelta    int64   `json:"follower_delta"`

	TotalLikes    int64   `json:"total_likes"`
	TotalComments int64   `json:"total_comments"`
	TotalShares   int64   `json:"total_shares"`
	TotalViews    int64   `json:"total_views"`
	AvgLikes      float64 `json:"avg_likes"`
	AvgComments   float64 `json:"avg_comments"`
	AvgShares     float64 `json:"avg_shares"`
	AvgViews      float64 `json:"avg_views"`

	EngagementRate       float64 `json:"engagement_rate"`
	MeanEngagementRate   float64 `json:"mean_engagement_rate"`
	MedianEngagementRate float64 `json:"median_engagement_rate"`

	TopContent         []RankedContent             `json:"top_content,omitempty"`
	ContentTypes       map[string]ContentTypeStats `json:"content_types,omitempty"`
	BestPostingWeekday string                      `json:"best_posting_weekday,omitempty"`
	BestPostingHour    int                         `json:"best_posting_hour"`
	Platforms          []string                    `json:"platforms,omitempty"`
}

func (a *AggregationResult) TopContentIDs() []string {
	ids := make([]string, 0, len(a.TopContent))
	for _, c := range a.TopContent {
		ids = append(ids, c.ContentID)
	}
	return ids
}
