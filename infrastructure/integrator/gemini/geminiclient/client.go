// Package geminiclient adapta o SDK do Gemini ao contrato InferenceClient do gateway.
package geminiclient

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/generative-ai-go/genai"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"google.golang.org/api/option"
)

const defaultPollInterval = 2 * time.Second

// fileService é o subconjunto da File API usado para vídeos; *genai.Client satisfaz.
type fileService interface {
	UploadFile(ctx context.Context, name string, r io.Reader, opts *genai.UploadFileOptions) (*genai.File, error)
	GetFile(ctx context.Context, name string) (*genai.File, error)
}

type generateFunc func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error)

type Client struct {
	cfg          config.Gemini
	sdk          *genai.Client
	files        fileService
	generate     generateFunc
	http         *resty.Client
	pollInterval time.Duration

	mu       sync.Mutex
	uploaded map[string]*genai.File
}

func New(ctx context.Context, cfg config.Gemini) (*Client, error) {
	sdk, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}

	c := newClient(cfg, sdk, nil, resty.New())
	c.sdk = sdk
	c.generate = func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
		return sdk.GenerativeModel(model).GenerateContent(ctx, parts...)
	}
	return c, nil
}

func newClient(cfg config.Gemini, files fileService, generate generateFunc, httpClient *resty.Client) *Client {
	return &Client{
		cfg:          cfg,
		files:        files,
		generate:     generate,
		http:         httpClient,
		pollInterval: defaultPollInterval,
		uploaded:     make(map[string]*genai.File),
	}
}

func (c *Client) Close() error {
	if c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}

// Generate envia o prompt e, para video_analysis, o vídeo já resolvido na File API.
func (c *Client) Generate(ctx context.Context, req *domain.AnalysisRequest) (*domain.RawResponse, error) {
	modelName := c.cfg.Model
	parts := []genai.Part{genai.Text(req.Prompt)}

	if !req.Video.Empty() {
		if c.cfg.VideoModel != "" {
			modelName = c.cfg.VideoModel
		}

		file, err := c.resolveVideo(ctx, req.Video)
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.FileData{URI: file.URI, MIMEType: file.MIMEType})
	}

	resp, err := c.generate(ctx, modelName, parts...)
	if err != nil {
		return nil, classifyError(err, "gemini generate content")
	}

	return toRawResponse(resp, modelName), nil
}

// toRawResponse concatena as partes de texto do primeiro candidato.
func toRawResponse(resp *genai.GenerateContentResponse, model string) *domain.RawResponse {
	raw := &domain.RawResponse{Model: model}
	if resp == nil {
		return raw
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		raw.ErrorMessage = "prompt blocked: " + resp.PromptFeedback.BlockReason.String()
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		raw.FinishReason = cand.FinishReason.String()
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					sb.WriteString(string(text))
				}
			}
		}
		break
	}
	raw.Text = sb.String()

	return raw
}
