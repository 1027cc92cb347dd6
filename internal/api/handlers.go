package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"igresolver/internal/downloader"
	errs "igresolver/pkg/errors"
	"igresolver/pkg/logger"
	"igresolver/pkg/resolver"
)

// Resolver is the pipeline surface the handlers depend on.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string, opts resolver.Options) resolver.Result
	ResolveBatch(ctx context.Context, rawURLs []string, opts resolver.Options) []resolver.BatchItem
	Thumbnail(ctx context.Context, rawURL string) (string, error)
	BatchMax() int
}

// MediaDownloader saves resolved media to local disk.
type MediaDownloader interface {
	Fetch(ctx context.Context, mediaURL string) (*downloader.Download, error)
}

// Handlers holds the HTTP handlers for the resolver API.
type Handlers struct {
	resolver   Resolver
	downloader MediaDownloader
	logger     logger.Logger
}

// NewHandlers creates the API handler set.
func NewHandlers(res Resolver, dl MediaDownloader, log logger.Logger) *Handlers {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Handlers{resolver: res, downloader: dl, logger: log}
}

var (
	validQualities = map[string]bool{"highest": true, "hd": true, "lowest": true}
	validFormats   = map[string]bool{"mp4": true, "mp3": true, "original": true}
)

// resolveOptions applies the quality/format defaults and validates the
// values. A non-empty second return is the 400 error message.
func resolveOptions(quality, format string) (resolver.Options, string) {
	if quality == "" {
		quality = "highest"
	}
	if !validQualities[quality] {
		return resolver.Options{}, "quality must be one of highest, hd, lowest"
	}

	if format == "" {
		format = "original"
	}
	if !validFormats[format] {
		return resolver.Options{}, "format must be one of mp4, mp3, original"
	}

	return resolver.Options{Quality: quality, Format: format}, ""
}

// HandleDownload resolves a single URL. With download=1 the media is
// also fetched to the downloads directory and the measured size replaces
// the "Unknown" placeholder.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rawURL := q.Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	opts, errMsg := resolveOptions(q.Get("quality"), q.Get("format"))
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	result := h.resolver.Resolve(r.Context(), rawURL, opts)
	if !result.Success {
		writeFailure(w, result.Failure)
		return
	}

	resp := fromResult(result)

	if wantsDownload(q.Get("download")) && h.downloader != nil {
		dl, err := h.downloader.Fetch(r.Context(), result.MediaURL)
		if err != nil {
			h.logger.WithError(err).Error("media download failed")
			writeFailure(w, errs.From(err))
			return
		}
		resp.Size = downloader.FormatSize(dl.Size)
		resp.File = filepath.Base(dl.Path)
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleThumbnail returns just the thumbnail URL for a content URL.
// Successful responses are marked cacheable for an hour.
func (h *Handlers) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeJSON(w, http.StatusBadRequest, thumbnailResponse{
			Success:  false,
			Error:    "url parameter is required",
			Fallback: FallbackThumbnail,
		})
		return
	}

	thumb, err := h.resolver.Thumbnail(r.Context(), rawURL)
	if err != nil {
		writeJSON(w, errs.HTTPStatus(errs.TypeOf(err)), thumbnailResponse{
			Success:  false,
			Error:    err.Error(),
			Fallback: FallbackThumbnail,
		})
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, http.StatusOK, thumbnailResponse{Success: true, Thumbnail: thumb})
}

type batchRequest struct {
	URLs    []string `json:"urls"`
	Quality string   `json:"quality,omitempty"`
	Format  string   `json:"format,omitempty"`
}

// HandleBatch resolves up to BatchMax URLs concurrently. Individual
// failures are reported per item; the overall success flag is true when
// at least one item resolved.
func (h *Handlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON with a urls array")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "a non-empty urls array is required")
		return
	}
	if max := h.resolver.BatchMax(); len(req.URLs) > max {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d urls per batch", max))
		return
	}

	opts, errMsg := resolveOptions(req.Quality, req.Format)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	items := h.resolver.ResolveBatch(r.Context(), req.URLs, opts)

	resp := batchResponse{Results: make([]batchItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Results = append(resp.Results, batchItemResponse{
			InputURL:        item.URL,
			resolveResponse: fromResult(item.Result),
		})
		if item.Result.Success {
			resp.Success = true
		}
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadGateway
		resp.Error = "no urls could be resolved"
	}
	writeJSON(w, status, resp)
}

// HandleHealth is a liveness probe.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func wantsDownload(v string) bool {
	return v == "1" || v == "true" || v == "yes"
}
