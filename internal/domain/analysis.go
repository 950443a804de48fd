package domain

// VideoRef aponta para um artefato de vídeo que o serviço de inferência consegue resolver.
type VideoRef struct {
	ID        string `json:"id"`
	ContentID string `json:"content_id,omitempty"`
	Location  string `json:"location"`
	MIMEType  string `json:"mime_type,omitempty"`
}

func (v *VideoRef) Empty() bool {
	return v == nil || v.Location == ""
}

// AnalysisRequest carrega exatamente um tipo de insight.
type AnalysisRequest struct {
	BusinessID     string      `json:"business_id"`
	InsightType    InsightType `json:"insight_type"`
	Window         TimeRange   `json:"window"`
	Prompt         string      `json:"prompt"`
	Summary        string      `json:"summary"`
	ContentExcerpt string      `json:"content_excerpt,omitempty"`
	Truncated      bool        `json:"truncated"`
	Video          *VideoRef   `json:"video,omitempty"`
}

// RawResponse é a saída textual do serviço de inferência.
type RawResponse struct {
	Text         string `json:"text"`
	ErrorMessage string `json:"error_message,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Model        string `json:"model,omitempty"`
	Attempts     int    `json:"attempts"`
	Retries      int    `json:"retries"`
}

// ParsedInsight é a projeção best-effort da resposta: apenas título e corpo.
type ParsedInsight struct {
	InsightType InsightType `json:"insight_type"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
}
