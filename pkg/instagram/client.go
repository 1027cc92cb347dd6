package instagram

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"

	"igresolver/pkg/config"
	"igresolver/pkg/errors"
	"igresolver/pkg/logger"
)

// maxPageBytes bounds how much of a fetched page is read. Instagram pages
// with embedded state run to a few hundred KB; anything past this is not
// going to contain the metadata blobs.
const maxPageBytes = 4 << 20

// Fetcher retrieves the raw HTML for a content URL. Implementations other
// than Client (a headless-browser renderer, for instance) can be swapped in
// behind this interface.
type Fetcher interface {
	FetchPage(ctx context.Context, u *ContentURL) (string, error)
}

// Client fetches Instagram pages over plain HTTP with a browser-identifying
// request profile.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a page-fetching client from configuration.
func NewClient(cfg *config.InstagramConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}

	headers := map[string]string{
		"User-Agent":      cfg.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": cfg.AcceptLanguage,
	}
	if cfg.SessionID != "" {
		headers["Cookie"] = "sessionid=" + cfg.SessionID
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		headers: headers,
		logger:  log,
	}
}

// SetBaseURL redirects page fetches to an alternate origin, keeping the
// content URL's path. Used by tests to point the client at a mock server.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// FetchPage performs a single GET for the content URL and returns the page
// body. Redirects are followed transparently up to the configured bound.
// Non-2xx statuses map to a fetch failure carrying the status code;
// deadline overruns map to a timeout. No retries happen here.
func (c *Client) FetchPage(ctx context.Context, u *ContentURL) (string, error) {
	target := u.Canonical()
	if c.baseURL != "" {
		target = c.baseURL + u.Path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errors.New(errors.ErrorTypeFetchFailed, "failed to create request: %v", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("fetching page", map[string]interface{}{
		"url": target,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if isTimeout(ctx, err) {
			c.logger.WarnWithFields("page fetch timed out", map[string]interface{}{
				"url":      target,
				"duration": duration,
			})
			return "", errors.New(errors.ErrorTypeTimeout, "fetch timed out after %s", duration.Round(time.Millisecond))
		}
		c.logger.ErrorWithFields("page fetch failed", map[string]interface{}{
			"url":      target,
			"error":    err.Error(),
			"duration": duration,
		})
		return "", errors.New(errors.ErrorTypeFetchFailed, "network error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnWithFields("page fetch returned non-2xx status", map[string]interface{}{
			"url":    target,
			"status": resp.StatusCode,
		})
		return "", errors.NewWithCode(errors.ErrorTypeFetchFailed, resp.StatusCode, "upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return "", errors.New(errors.ErrorTypeTimeout, "fetch timed out reading body")
		}
		return "", errors.NewWithCode(errors.ErrorTypeFetchFailed, resp.StatusCode, "failed to read response body: %v", err)
	}

	c.logger.DebugWithFields("page fetched", map[string]interface{}{
		"url":      target,
		"status":   resp.StatusCode,
		"bytes":    len(body),
		"duration": duration,
	})

	return string(body), nil
}

// isTimeout distinguishes deadline overruns from other transport failures.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	var urlErr *neturl.Error
	if stderrors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}
