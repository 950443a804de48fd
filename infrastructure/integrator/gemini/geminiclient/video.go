package geminiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

const (
	fileAPIPrefix    = "https://generativelanguage.googleapis.com/"
	defaultVideoMIME = "video/mp4"
)

// resolveVideo devolve um arquivo ACTIVE na File API. Locais que já são URIs da File API
// são referenciados direto; os demais são baixados, enviados e aguardados. Uploads ficam em
// cache por local para que retentativas não reenviem o mesmo vídeo.
func (c *Client) resolveVideo(ctx context.Context, ref *domain.VideoRef) (*genai.File, error) {
	if strings.HasPrefix(ref.Location, fileAPIPrefix) {
		return &genai.File{URI: ref.Location, MIMEType: mimeTypeFor(ref, ""), State: genai.FileStateActive}, nil
	}

	c.mu.Lock()
	cached, ok := c.uploaded[ref.Location]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	data, contentType, err := c.downloadVideo(ctx, ref.Location)
	if err != nil {
		return nil, err
	}

	mimeType := mimeTypeFor(ref, contentType)
	file, err := c.files.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: ref.ID,
		MIMEType:    mimeType,
	})
	if err != nil {
		return nil, classifyError(err, "gemini upload video")
	}

	file, err = c.waitActive(ctx, file)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"video_id":  ref.ID,
		"file_name": file.Name,
		"size":      len(data),
	}).Debug("gemini: video uploaded")

	c.mu.Lock()
	c.uploaded[ref.Location] = file
	c.mu.Unlock()

	return file, nil
}

func (c *Client) downloadVideo(ctx context.Context, location string) ([]byte, string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(location)
	if err != nil {
		return nil, "", classifyError(err, "download video")
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, "", byStatusCode(resp.StatusCode(), fmt.Errorf("download video %s: %s", location, resp.Status()))
	}

	limit := c.cfg.MaxVideoBytes
	if limit <= 0 {
		limit = 100 * 1024 * 1024
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, "", classifyError(err, "read video")
	}
	if int64(len(data)) > limit {
		return nil, "", domain.NewPermanentError(http.StatusRequestEntityTooLarge,
			fmt.Errorf("video %s exceeds %d bytes", location, limit))
	}
	if len(data) == 0 {
		return nil, "", domain.NewPermanentError(0, fmt.Errorf("video %s is empty", location))
	}

	return data, resp.Header().Get("Content-Type"), nil
}

func (c *Client) waitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	timeout := c.cfg.FileActiveTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	deadline := time.Now().Add(timeout)

	for file.State != genai.FileStateActive && file.State != genai.FileStateFailed {
		if time.Now().After(deadline) {
			return nil, domain.NewTransientError(0, fmt.Errorf("file %s not active after %s", file.Name, timeout))
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, classifyError(ctx.Err(), "wait video processing")
		case <-timer.C:
		}

		current, err := c.files.GetFile(ctx, file.Name)
		if err != nil {
			return nil, classifyError(err, "gemini get file")
		}
		file = current
	}

	if file.State == genai.FileStateFailed {
		return nil, domain.NewPermanentError(0, fmt.Errorf("file %s processing failed", file.Name))
	}

	return file, nil
}

func mimeTypeFor(ref *domain.VideoRef, contentType string) string {
	if ref.MIMEType != "" {
		return ref.MIMEType
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mediaType, "video/") {
		return mediaType
	}
	if byExt := mime.TypeByExtension(path.Ext(ref.Location)); strings.HasPrefix(byExt, "video/") {
		return byExt
	}
	return defaultVideoMIME
}
