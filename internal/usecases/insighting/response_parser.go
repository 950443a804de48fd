package insighting

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

const (
	maxTitleRunes        = 200
	maxShortHeadingRunes = 80
)

var (
	markdownHeading = regexp.MustCompile(`^#{1,6}\s+(.+?)(?:\s+#+)?$`)
	boldHeading     = regexp.MustCompile(`^(?:\*\*|__)(.+?)(?:\*\*|__):?$`)
	numberedHeading = regexp.MustCompile(`^\d{1,2}[.)]\s+(.+)$`)
	fenceLine       = regexp.MustCompile("^```[A-Za-z0-9_-]*$")
)

// ResponseParser projeta a prosa semi-estruturada do serviço em título e corpo.
// Só falha com resposta vazia ou com erro explícito do serviço.
type ResponseParser struct{}

func NewResponseParser() *ResponseParser {
	return &ResponseParser{}
}

func (p *ResponseParser) Parse(raw *domain.RawResponse, insightType domain.InsightType) (*domain.ParsedInsight, error) {
	if raw == nil {
		return nil, &domain.ParseError{Reason: "empty response", Err: domain.ErrEmptyResponse}
	}
	if msg := strings.TrimSpace(raw.ErrorMessage); msg != "" {
		return nil, &domain.ParseError{Reason: "service reported error: " + msg}
	}

	text := stripFences(normalizeNewlines(raw.Text))
	if text == "" {
		return nil, &domain.ParseError{Reason: "empty response", Err: domain.ErrEmptyResponse}
	}

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		if parsed, ok, err := parseJSONObject(text, insightType); ok {
			return parsed, err
		}
	}

	title, body := splitStructured(text)
	if title == "" {
		title, body = synthesizedTitle(insightType), text
	}

	return &domain.ParsedInsight{
		InsightType: insightType,
		Title:       capTitle(title),
		Body:        body,
	}, nil
}

// splitStructured procura o primeiro heading; sem heading, aceita um primeiro parágrafo curto de uma linha como título.
func splitStructured(text string) (string, string) {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		heading, ok := headingText(line)
		if !ok {
			continue
		}

		body := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		if body == "" {
			body = heading
		}
		return heading, body
	}

	paragraphs := splitParagraphs(text)
	if len(paragraphs) < 2 {
		return "", ""
	}

	first := paragraphs[0]
	if strings.Contains(first, "\n") || !isShortHeading(first) {
		return "", ""
	}

	return strings.TrimSuffix(first, ":"), strings.Join(paragraphs[1:], "\n\n")
}

func headingText(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	if m := markdownHeading.FindStringSubmatch(line); m != nil {
		return cleanHeading(m[1])
	}
	if m := boldHeading.FindStringSubmatch(line); m != nil {
		return cleanHeading(m[1])
	}
	if m := numberedHeading.FindStringSubmatch(line); m != nil {
		text, ok := cleanHeading(m[1])
		if ok && isShortHeading(text) {
			return text, true
		}
	}
	return "", false
}

func cleanHeading(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimSuffix(s, "**"), "**")
	s = strings.TrimSpace(strings.TrimSuffix(s, ":"))
	return s, s != ""
}

func isShortHeading(s string) bool {
	if utf8.RuneCountInString(s) > maxShortHeadingRunes {
		return false
	}
	return !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?")
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

// parseJSONObject trata respostas em JSON. ok=false quando o texto não é um objeto válido.
func parseJSONObject(text string, insightType domain.InsightType) (*domain.ParsedInsight, bool, error) {
	var obj map[string]any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(text, &obj); err != nil {
		return nil, false, nil
	}

	if errVal, ok := obj["error"]; ok && errVal != nil {
		return nil, true, &domain.ParseError{Reason: fmt.Sprintf("service reported error: %v", errVal)}
	}

	title, _ := obj["title"].(string)
	body, _ := obj["body"].(string)
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)

	if body == "" {
		body = text
	}
	if title == "" {
		title = synthesizedTitle(insightType)
	}

	return &domain.ParsedInsight{InsightType: insightType, Title: capTitle(title), Body: body}, true, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	lines := strings.Split(text, "\n")
	if len(lines) >= 2 && fenceLine.MatchString(strings.TrimSpace(lines[0])) && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		text = strings.Join(lines[1:len(lines)-1], "\n")
	}
	return strings.TrimSpace(text)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func synthesizedTitle(insightType domain.InsightType) string {
	return fmt.Sprintf("%s insight", insightType)
}

func capTitle(title string) string {
	if utf8.RuneCountInString(title) <= maxTitleRunes {
		return title
	}
	return strings.TrimSpace(string([]rune(title)[:maxTitleRunes]))
}
