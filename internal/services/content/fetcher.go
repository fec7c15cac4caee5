package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"golang.org/x/time/rate"
)

// Fetcher retrieves pages for the extraction phase. Outbound requests share
// one rate limiter so a batch of extraction items cannot hammer a host, and
// response bodies are capped so a pathological page cannot exhaust memory.
type Fetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	userAgent   string
	maxBodySize int64
	logger      arbor.ILogger
}

// NewFetcher creates a rate-limited page fetcher from the content config
func NewFetcher(cfg *common.ContentConfig, logger arbor.ILogger) (*Fetcher, error) {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid content request timeout %q: %w", cfg.RequestTimeout, err)
	}

	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 2
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = perSecond
	}

	maxBodySize := int64(cfg.MaxBodySize)
	if maxBodySize <= 0 {
		maxBodySize = 10 * 1024 * 1024
	}

	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(perSecond), burst),
		userAgent:   cfg.UserAgent,
		maxBodySize: maxBodySize,
		logger:      logger,
	}, nil
}

// Fetch retrieves one URL and returns the response body as a string.
// Non-2xx responses come back as a StatusError so the caller can classify
// retryability from the status code.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	startTime := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &interfaces.StatusError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body from %s: %w", url, err)
	}

	f.logger.Debug().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("body_size", len(body)).
		Dur("duration", time.Since(startTime)).
		Msg("Page fetched")

	return string(body), nil
}
