package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"igresolver/pkg/config"
	errs "igresolver/pkg/errors"
	"igresolver/pkg/logger"
	"igresolver/pkg/retry"
)

// Download describes a media file saved to the downloads directory.
type Download struct {
	Path string
	Size int64
}

// Downloader saves resolved media URLs to local disk.
type Downloader struct {
	client   *http.Client
	dir      string
	attempts int
	logger   logger.Logger
}

// New creates a Downloader and ensures the downloads directory exists.
func New(cfg *config.DownloadsConfig, log logger.Logger) (*Downloader, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}

	return &Downloader{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		dir:      cfg.Directory,
		attempts: cfg.RetryAttempts,
		logger:   log,
	}, nil
}

// Dir returns the downloads directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Fetch downloads the media at mediaURL into the downloads directory.
// The file name is a short hash of the URL so repeated downloads of the
// same media overwrite rather than accumulate. Transient CDN failures
// are retried with backoff.
func (d *Downloader) Fetch(ctx context.Context, mediaURL string) (*Download, error) {
	cfg := &retry.Config{
		MaxAttempts: d.attempts,
		Backoff:     retry.DefaultExponentialBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      d.logger,
	}

	return retry.DoWithResult(func() (*Download, error) {
		return d.fetchOnce(ctx, mediaURL)
	}, cfg)
}

func (d *Downloader) fetchOnce(ctx context.Context, mediaURL string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeInvalidURL, "invalid media URL: %v", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeFetchFailed, "media request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewWithCode(errs.ErrorTypeFetchFailed, resp.StatusCode,
			"media request returned %s", resp.Status)
	}

	name := shortHash(mediaURL) + responseExtension(resp)
	path := filepath.Join(d.dir, name)

	out, err := os.OpenFile(path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create media file: %w", err)
	}
	defer out.Close()

	size, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(path)
		return nil, errs.New(errs.ErrorTypeFetchFailed, "media transfer interrupted: %v", err)
	}

	d.logger.DebugWithFields("media saved", map[string]interface{}{
		"path": path,
		"size": size,
	})

	return &Download{Path: path, Size: size}, nil
}

// responseExtension picks a file extension for the response, preferring
// Content-Disposition, then Content-Type, then the URL path.
func responseExtension(resp *http.Response) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		_, params, _ := mime.ParseMediaType(cd)
		if filename, ok := params["filename"]; ok {
			if ext := filepath.Ext(filename); ext != "" {
				return strings.ToLower(ext)
			}
		}
	}

	mediatype, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch mediatype {
	// ExtensionsByType is non-deterministic for these; pin the common ones.
	case "video/mp4":
		return ".mp4"
	case "image/jpeg":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(mediatype); err == nil && len(exts) > 0 {
		return strings.ToLower(exts[0])
	}

	if resp.Request != nil {
		if ext := filepath.Ext(resp.Request.URL.Path); ext != "" {
			return strings.ToLower(ext)
		}
	}

	return ""
}

func shortHash(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])[:12]
}

// FormatSize renders a byte count the way the API reports media sizes.
func FormatSize(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
