package insighting

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"github.com/vfg2006/marketing-insights-api/pkg/utils"
)

const (
	defaultMaxPayloadBytes = 30000
	priorInsightClipRunes  = 500
)

var summaryJSON = jsoniter.Config{SortMapKeys: true, EscapeHTML: false}.Froze()

// BuildInputs são as entradas opcionais; cada tipo de insight exige um subconjunto.
type BuildInputs struct {
	ContentExcerpt string
	Video          *domain.VideoRef
	PriorInsights  []*domain.Insight
}

type RequestBuilder struct {
	maxPayloadBytes int
}

func NewRequestBuilder(maxPayloadBytes int) *RequestBuilder {
	if maxPayloadBytes <= 0 {
		maxPayloadBytes = defaultMaxPayloadBytes
	}
	return &RequestBuilder{maxPayloadBytes: maxPayloadBytes}
}

type priorView struct {
	Type  domain.InsightType
	Title string
	Body  string
}

type promptData struct {
	BusinessName string
	Industry     string
	WindowStart  string
	WindowEnd    string
	Result       *domain.AggregationResult
	Summary      string
	Excerpt      string
	Video        *domain.VideoRef
	Priors       []priorView
}

// Build monta a requisição por interpolação determinística do template do tipo.
// Excertos grandes são truncados com marcador; se mesmo sem excerto o prompt passa do limite, falha.
func (b *RequestBuilder) Build(result *domain.AggregationResult, insightType domain.InsightType, in BuildInputs) (*domain.AnalysisRequest, error) {
	if !insightType.Valid() {
		return nil, &domain.BuildError{InsightType: insightType, Reason: "unsupported insight type"}
	}
	if result == nil {
		return nil, &domain.BuildError{InsightType: insightType, Reason: "missing aggregation result"}
	}
	if result.InsufficientData {
		return nil, fmt.Errorf("build %s request: %w", insightType, domain.ErrInsufficientData)
	}

	excerpt := ""
	switch insightType {
	case domain.InsightTypeProductDemand:
		if in.ContentExcerpt == "" {
			return nil, &domain.BuildError{InsightType: insightType, Reason: "missing content excerpt"}
		}
		excerpt = in.ContentExcerpt
	case domain.InsightTypeVideoAnalysis:
		if in.Video.Empty() {
			return nil, &domain.MissingVideoError{InsightType: insightType}
		}
		excerpt = in.ContentExcerpt
	}

	summary, err := summarize(result)
	if err != nil {
		return nil, &domain.BuildError{InsightType: insightType, Reason: "serialize summary: " + err.Error()}
	}

	data := promptData{
		BusinessName: nonEmpty(result.BusinessName, result.BusinessID),
		Industry:     nonEmpty(result.Industry, "unspecified"),
		WindowStart:  result.Window.Start.UTC().Format(time.DateOnly),
		WindowEnd:    result.Window.End.UTC().Format(time.DateOnly),
		Result:       result,
		Summary:      summary,
		Excerpt:      excerpt,
	}
	if insightType == domain.InsightTypeVideoAnalysis {
		data.Video = in.Video
	}
	if insightType == domain.InsightTypeRecommendation {
		data.Priors = priorViews(in.PriorInsights)
	}

	prompt, err := render(insightType, data)
	if err != nil {
		return nil, &domain.BuildError{InsightType: insightType, Reason: "render prompt: " + err.Error()}
	}

	truncated := false
	if len(prompt) > b.maxPayloadBytes && excerpt != "" {
		overhead := len(prompt) - len(excerpt)
		budget := b.maxPayloadBytes - overhead - len(truncationMarker)
		data.Excerpt = truncateBytes(excerpt, budget) + truncationMarker
		truncated = true

		if prompt, err = render(insightType, data); err != nil {
			return nil, &domain.BuildError{InsightType: insightType, Reason: "render prompt: " + err.Error()}
		}
	}

	if len(prompt) > b.maxPayloadBytes {
		return nil, &domain.BuildError{
			InsightType: insightType,
			Reason:      fmt.Sprintf("payload_too_large: %d bytes exceeds %d", len(prompt), b.maxPayloadBytes),
		}
	}

	req := &domain.AnalysisRequest{
		BusinessID:     result.BusinessID,
		InsightType:    insightType,
		Window:         result.Window,
		Prompt:         prompt,
		Summary:        summary,
		ContentExcerpt: data.Excerpt,
		Truncated:      truncated,
	}
	if insightType == domain.InsightTypeVideoAnalysis {
		req.Video = in.Video
	}

	return req, nil
}

func render(insightType domain.InsightType, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, insightType.String(), data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// summarize serializa o resultado sem os metadados do top conteúdo, que vão no excerto.
func summarize(result *domain.AggregationResult) (string, error) {
	projection := *result
	projection.AverageFollowers = utils.RoundWithTwoDecimalPlace(result.AverageFollowers)
	projection.AvgLikes = utils.RoundWithTwoDecimalPlace(result.AvgLikes)
	projection.AvgComments = utils.RoundWithTwoDecimalPlace(result.AvgComments)
	projection.AvgShares = utils.RoundWithTwoDecimalPlace(result.AvgShares)
	projection.AvgViews = utils.RoundWithTwoDecimalPlace(result.AvgViews)

	projection.TopContent = make([]domain.RankedContent, len(result.TopContent))
	for i, c := range result.TopContent {
		c.Metadata = nil
		projection.TopContent[i] = c
	}

	out, err := summaryJSON.Marshal(projection)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func priorViews(insights []*domain.Insight) []priorView {
	views := make([]priorView, 0, len(insights))
	for _, in := range insights {
		if in == nil || in.InsightType == domain.InsightTypeRecommendation {
			continue
		}
		views = append(views, priorView{
			Type:  in.InsightType,
			Title: in.Title,
			Body:  clipRunes(in.Body, priorInsightClipRunes),
		})
	}
	return views
}

// truncateBytes corta s em no máximo n bytes sem quebrar um rune.
func truncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + truncationMarker
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
