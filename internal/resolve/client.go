// Package resolve matches extracted paper fields against external
// bibliographic catalogs (Crossref, OpenAlex) and scores the candidates.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yliu-xjtu/biomanager/internal/common"
)

// Client is a thin JSON-over-HTTP client shared by both catalog backends,
// with bounded retry and exponential backoff on transport failures.
type Client struct {
	cfg  common.ResolverConfig
	http *http.Client
	log  *slog.Logger

	// sleep is swappable in tests so backoff does not slow the suite down.
	sleep func(context.Context, time.Duration) error
}

func NewClient(cfg common.ResolverConfig, httpClient *http.Client, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 2
	}
	return &Client{cfg: cfg, http: httpClient, log: log, sleep: sleepCtx}
}

// getJSON fetches url and decodes the body into v. Exhausted retries are
// reported as an error; callers treat that as "no candidates", never fatal.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	var lastErr error
	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/json")

		lastErr = c.tryOnce(req, v)
		if lastErr == nil {
			return nil
		}

		wait := time.Duration(1<<attempt) * time.Second
		c.log.Warn("resolver.request_failed",
			"url", url, "attempt", attempt+1, "retries", c.cfg.Retries,
			"retry_in", wait.String(), "error", lastErr)
		if attempt < c.cfg.Retries-1 {
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func (c *Client) tryOnce(req *http.Request, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
