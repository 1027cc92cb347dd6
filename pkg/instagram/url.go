package instagram

import (
	"net/url"
	"strings"

	"github.com/tidwall/match"

	"igresolver/pkg/errors"
)

// ContentKind classifies an Instagram URL by its path marker. The kind is
// provisional until metadata extraction: a /p/ post may turn out to be a
// video.
type ContentKind string

const (
	KindPost    ContentKind = "post"
	KindReel    ContentKind = "reel"
	KindStory   ContentKind = "story"
	KindTv      ContentKind = "tv"
	KindUnknown ContentKind = "unknown"
)

// hostPatterns are the accepted Instagram hostnames, bare or www-prefixed.
var hostPatterns = []string{
	"instagram.com",
	"*.instagram.com",
	"instagr.am",
	"*.instagr.am",
}

// pathMarkers maps recognized path segments to content kinds, checked in
// order. Both /reel/ and /reels/ forms appear in the wild, as do /story/
// and /stories/.
var pathMarkers = []struct {
	marker string
	kind   ContentKind
}{
	{"/reels/", KindReel},
	{"/reel/", KindReel},
	{"/stories/", KindStory},
	{"/story/", KindStory},
	{"/tv/", KindTv},
	{"/p/", KindPost},
}

// ContentURL is a validated Instagram content URL. Construct only through
// Classify; immutable afterwards.
type ContentURL struct {
	Raw       string
	Host      string
	Path      string
	Shortcode string
	Kind      ContentKind
}

// Classify validates raw as an Instagram content URL and determines its
// content kind. It is a pure function with no network access.
func Classify(raw string) (*ContentURL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New(errors.ErrorTypeInvalidURL, "empty URL")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errors.New(errors.ErrorTypeInvalidURL, "not a well-formed URL: %s", raw)
	}

	host := strings.ToLower(parsed.Hostname())
	if !matchesHost(host) {
		return nil, errors.New(errors.ErrorTypeInvalidURL, "not an Instagram URL: %s", host)
	}

	path := parsed.EscapedPath()
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	kind := KindUnknown
	markerPos := -1
	markerLen := 0
	for _, pm := range pathMarkers {
		if idx := strings.Index(path, pm.marker); idx >= 0 {
			kind = pm.kind
			markerPos = idx
			markerLen = len(pm.marker)
			break
		}
	}
	if kind == KindUnknown {
		return nil, errors.New(errors.ErrorTypeInvalidURL, "URL path has no recognized content marker: %s", parsed.Path)
	}

	return &ContentURL{
		Raw:       trimmed,
		Host:      host,
		Path:      path,
		Shortcode: shortcodeFrom(path, markerPos+markerLen, kind),
		Kind:      kind,
	}, nil
}

func matchesHost(host string) bool {
	for _, p := range hostPatterns {
		if match.Match(host, p) {
			return true
		}
	}
	return false
}

// shortcodeFrom extracts the media identifier following the marker. For
// stories the identifier is the final path segment (/stories/{user}/{id}/).
func shortcodeFrom(path string, after int, kind ContentKind) string {
	segments := strings.Split(strings.Trim(path[after:], "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return ""
	}
	if kind == KindStory {
		return segments[len(segments)-1]
	}
	return segments[0]
}

// Canonical returns the normalized form of the URL used as a cache key:
// https scheme, www.instagram.com host, path without query or fragment.
func (u *ContentURL) Canonical() string {
	return "https://www.instagram.com" + u.Path
}

// CacheKey derives a deterministic cache key from the canonical URL plus
// any quality/format qualifiers.
func (u *ContentURL) CacheKey(qualifiers ...string) string {
	if len(qualifiers) == 0 {
		return u.Canonical()
	}
	return u.Canonical() + "|" + strings.Join(qualifiers, "|")
}

// String implements fmt.Stringer.
func (u *ContentURL) String() string {
	return u.Canonical()
}
