// Package ocr wraps an external layout-parsing OCR service. The gateway never
// returns an error from Recognize: every failure mode comes back as text
// prefixed with ErrorPrefix, so downstream stages treat it uniformly as
// "nothing extracted".
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yliu-xjtu/biomanager/internal/common"
)

// ErrorPrefix marks a Recognize result that is a failure report, not text.
const ErrorPrefix = "[OCR Error]"

// IsErrorText reports whether an OCR result is the failure sentinel.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, ErrorPrefix)
}

// ocrResponse is the wire shape of the layout-parsing service.
type ocrResponse struct {
	Result *struct {
		LayoutParsingResults []struct {
			Markdown struct {
				Text string `json:"text"`
			} `json:"markdown"`
		} `json:"layoutParsingResults"`
	} `json:"result"`
	Error string `json:"error"`
}

// Gateway posts rendered page images to the configured OCR endpoint.
// Configuration is late-bound: the endpoint and key are read per call, so the
// service can be reconfigured at runtime without rebuilding the pipeline.
type Gateway struct {
	cfg    func() common.OCRConfig
	client *http.Client
	runner Runner
	log    *slog.Logger
}

func NewGateway(cfg func() common.OCRConfig, client *http.Client, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Gateway{cfg: cfg, client: client, runner: execRunner{}, log: log}
}

// Recognize runs OCR on one 0-based page of the file and returns the
// recognized text, or sentinel text on any failure.
func (g *Gateway) Recognize(ctx context.Context, path string, page int) string {
	cfg := g.cfg()
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		g.log.Warn("ocr.not_configured")
		return ErrorPrefix + " OCR service not configured"
	}

	img, err := g.pageImage(ctx, path, page)
	if err != nil {
		g.log.Error("ocr.render_failed", "path", path, "page", page, "error", err)
		return fmt.Sprintf("%s render page: %v", ErrorPrefix, err)
	}

	payload := map[string]any{
		"file":     base64.StdEncoding.EncodeToString(img),
		"fileType": 1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%s encode request: %v", ErrorPrefix, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("%s build request: %v", ErrorPrefix, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+cfg.APIKey)

	start := time.Now()
	g.log.Info("ocr.request", "endpoint", cfg.Endpoint, "path", path, "page", page, "image_bytes", len(img))

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Error("ocr.send_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return fmt.Sprintf("%s request failed: %v", ErrorPrefix, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	g.log.Info("ocr.response",
		"status", resp.StatusCode, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("%s HTTP %d: %s", ErrorPrefix, resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed ocrResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Sprintf("%s decode response: %v", ErrorPrefix, err)
	}

	switch {
	case parsed.Result != nil:
		var texts []string
		for _, item := range parsed.Result.LayoutParsingResults {
			if item.Markdown.Text != "" {
				texts = append(texts, item.Markdown.Text)
			}
		}
		if len(texts) == 0 {
			return "[OCR Warning] no text recognized"
		}
		return strings.Join(texts, "\n\n")
	case parsed.Error != "":
		return fmt.Sprintf("%s %s", ErrorPrefix, parsed.Error)
	default:
		return "[OCR Result] " + truncate(string(raw), 300)
	}
}
