package resolver

import (
	"igresolver/pkg/errors"
	"igresolver/pkg/instagram"
)

// SizeUnknown is reported when no downstream fetch has measured the asset.
// The resolver itself never downloads media; it returns a locator.
const SizeUnknown = "Unknown"

// Result is the outcome of resolving one content URL. Exactly one variant
// is populated: a successful result carries the media fields and a nil
// Failure; a failed one carries only Failure.
type Result struct {
	Success      bool                  `json:"success"`
	Kind         instagram.ContentKind `json:"type,omitempty"`
	MediaURL     string                `json:"url,omitempty"`
	ThumbnailURL string                `json:"thumbnail,omitempty"`
	Title        string                `json:"title,omitempty"`
	Size         string                `json:"size,omitempty"`
	Failure      *errors.Error         `json:"failure,omitempty"`
}

// success builds a populated success result.
func success(kind instagram.ContentKind, mediaURL, thumbnail, title string) Result {
	return Result{
		Success:      true,
		Kind:         kind,
		MediaURL:     mediaURL,
		ThumbnailURL: thumbnail,
		Title:        title,
		Size:         SizeUnknown,
	}
}

// failure builds a failed result from a typed error.
func failure(err *errors.Error) Result {
	return Result{Failure: err}
}

// BatchItem pairs an input URL with its independent resolution outcome.
type BatchItem struct {
	URL    string `json:"url"`
	Result Result `json:"result"`
}

// Options carries the caller's quality/format qualifiers. They participate
// in cache-key derivation; media selection itself always prefers the
// highest available resolution.
type Options struct {
	Quality string
	Format  string
}

// qualifiers returns the cache-key qualifiers for these options.
func (o Options) qualifiers() []string {
	quality := o.Quality
	if quality == "" {
		quality = "highest"
	}
	format := o.Format
	if format == "" {
		format = "original"
	}
	return []string{quality, format}
}
