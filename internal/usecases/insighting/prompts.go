package insighting

import (
	"fmt"
	"text/template"
)

const truncationMarker = "…[truncated]"

var promptFuncs = template.FuncMap{
	"rate": func(v float64) string { return fmt.Sprintf("%.4f", v) },
	"pct":  func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
	"num":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

var promptTemplates = template.Must(template.New("prompts").Funcs(promptFuncs).Parse(`
{{- define "header" -}}
Business: {{.BusinessName}}
Industry: {{.Industry}}
Window: {{.WindowStart}} to {{.WindowEnd}} (end exclusive)
{{- end -}}

{{- define "numbers" -}}
KEY NUMBERS:
- Metric samples: {{.Result.MetricSampleCount}}, content items: {{.Result.ContentCount}}
- Followers: {{.Result.TotalFollowers}} (change in window: {{.Result.FollowerDelta}})
- Totals: {{.Result.TotalLikes}} likes, {{.Result.TotalComments}} comments, {{.Result.TotalShares}} shares, {{.Result.TotalViews}} views
- Average per item: {{num .Result.AvgLikes}} likes, {{num .Result.AvgComments}} comments, {{num .Result.AvgShares}} shares, {{num .Result.AvgViews}} views
- Average engagement rate: {{rate .Result.MeanEngagementRate}} ({{pct .Result.MeanEngagementRate}})
- Median engagement rate: {{rate .Result.MedianEngagementRate}} ({{pct .Result.MedianEngagementRate}})
- Overall engagement rate: {{rate .Result.EngagementRate}} ({{pct .Result.EngagementRate}})
{{- if .Result.BestPostingWeekday}}
- Best posting slot: {{.Result.BestPostingWeekday}} around {{.Result.BestPostingHour}}:00 UTC
{{- end}}
{{- end -}}

{{- define "format" -}}
Start your answer with a single markdown heading (# Title) that summarizes the main finding,
followed by the analysis as short paragraphs or bullet points. Quote the figures you rely on.
{{- end -}}

{{- define "engagement_trend" -}}
You are an expert social media analyst.
{{template "header" .}}

{{template "numbers" .}}

SUMMARY (JSON):
{{.Summary}}

Analyze the engagement trend for this business:
1. Overall engagement trend across platforms
2. Which platform and content types drive the most engagement
3. Best days and times for posting
4. Any concerning drops in engagement

{{template "format" .}}
{{- end -}}

{{- define "product_demand" -}}
You are an expert market analyst for the {{.Industry}} industry.
{{template "header" .}}

{{template "numbers" .}}

SUMMARY (JSON):
{{.Summary}}

TOP CONTENT METADATA (hashtags, mentions, product tags):
{{.Excerpt}}

Analyze product demand:
1. Which products or services generate the most interest
2. Emerging trends or new product opportunities
3. Products or services losing interest
4. Customer sentiment towards the products mentioned

{{template "format" .}}
{{- end -}}

{{- define "video_analysis" -}}
You are an expert short-form video strategist.
{{template "header" .}}

The attached video is content {{or .Video.ContentID .Video.ID}} from this business.

{{template "numbers" .}}

SUMMARY (JSON):
{{.Summary}}
{{- if .Excerpt}}

CONTENT METADATA:
{{.Excerpt}}
{{- end}}

Analyze the video:
1. Hook and pacing in the first seconds
2. Visual and audio elements that drive engagement
3. How it compares with the engagement figures above
4. Concrete edits to improve the next videos

{{template "format" .}}
{{- end -}}

{{- define "recommendation" -}}
You are an expert marketing strategist for the {{.Industry}} industry.
{{template "header" .}}

{{template "numbers" .}}

SUMMARY (JSON):
{{.Summary}}
{{- if .Priors}}

PREVIOUS INSIGHTS:
{{- range .Priors}}
[{{.Type}}] {{.Title}}
{{.Body}}
{{- end}}
{{- end}}

Provide marketing recommendations covering:
1. Content strategy for each platform
2. Product promotion priorities
3. Audience targeting suggestions
4. Key performance indicators to track
{{- if .Priors}}
Reference the previous insights where they support a recommendation.
{{- end}}

{{template "format" .}}
{{- end -}}
`))
