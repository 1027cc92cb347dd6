package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

var (
	sharedDataRe     = regexp.MustCompile(`(?s)window\._sharedData\s*=\s*(\{.+?\});`)
	additionalDataRe = regexp.MustCompile(`(?s)window\.__additionalDataLoaded\s*\(\s*['"][^'"]*['"]\s*,\s*(\{.+?\})\s*\)\s*;`)
	jsonLDRe         = regexp.MustCompile(`(?s)<script type="application/ld\+json"[^>]*>(.*?)</script>`)
	displayURLRe     = regexp.MustCompile(`"display_url"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	videoURLRe       = regexp.MustCompile(`"video_url"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// unescapeFieldURL decodes the escaping Instagram applies inside embedded
// JSON string fields: \u0026 for ampersands and backslash-escaped slashes
// and quotes.
func unescapeFieldURL(s string) string {
	return strings.NewReplacer(
		`\u0026`, "&",
		`\/`, "/",
		`\"`, `"`,
		`\\`, `\`,
	).Replace(s)
}

// embeddedStateStrategy pulls metadata out of the page-embedded state
// object (window._sharedData or __additionalDataLoaded payloads). The
// state shape varies; both the mobile-API item list and the GraphQL
// shortcode_media forms are handled.
type embeddedStateStrategy struct{}

func (s *embeddedStateStrategy) Name() string { return "embedded_state" }

func (s *embeddedStateStrategy) Extract(html string) *PageMetadata {
	for _, re := range []*regexp.Regexp{sharedDataRe, additionalDataRe} {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		if !gjson.Valid(m[1]) {
			// Truncated or garbled blob; treat as a non-match.
			continue
		}
		if meta := metadataFromState(gjson.Parse(m[1])); !meta.empty() {
			return meta
		}
	}
	return nil
}

// metadataFromState normalizes the known embedded-state shapes.
func metadataFromState(state gjson.Result) *PageMetadata {
	if item := state.Get("items.0"); item.Exists() {
		meta := &PageMetadata{
			VideoURL: item.Get("video_versions.0.url").String(),
			Caption:  item.Get("caption.text").String(),
		}
		meta.IsVideo = meta.VideoURL != ""
		if thumb := item.Get("image_versions2.candidates.0.url"); thumb.Exists() {
			meta.DisplayURL = thumb.String()
		}
		return meta
	}

	media := state.Get("graphql.shortcode_media")
	if !media.Exists() {
		media = state.Get("entry_data.PostPage.0.graphql.shortcode_media")
	}
	if !media.Exists() {
		return nil
	}

	meta := &PageMetadata{
		IsVideo:    media.Get("is_video").Bool(),
		VideoURL:   media.Get("video_url").String(),
		DisplayURL: media.Get("display_url").String(),
		Caption:    media.Get("edge_media_to_caption.edges.0.node.text").String(),
	}
	for _, res := range media.Get("display_resources").Array() {
		meta.Candidates = append(meta.Candidates, ImageCandidate{
			URL:    res.Get("src").String(),
			Width:  int(res.Get("config_width").Int()),
			Height: int(res.Get("config_height").Int()),
		})
	}
	return meta
}

// jsonLDStrategy reads the structured-data script tag search engines get.
type jsonLDStrategy struct{}

func (s *jsonLDStrategy) Name() string { return "json_ld" }

func (s *jsonLDStrategy) Extract(html string) *PageMetadata {
	m := jsonLDRe.FindStringSubmatch(html)
	if m == nil || !gjson.Valid(m[1]) {
		return nil
	}

	doc := gjson.Parse(m[1])
	meta := &PageMetadata{
		Caption: doc.Get("caption").String(),
	}
	if meta.Caption == "" {
		meta.Caption = doc.Get("description").String()
	}

	video := doc.Get("video.contentUrl")
	if !video.Exists() {
		// VideoObject documents carry contentUrl at the top level.
		video = doc.Get("contentUrl")
	}
	if video.Exists() {
		meta.VideoURL = video.String()
		meta.IsVideo = true
	}

	image := doc.Get("image")
	switch {
	case image.IsArray():
		if arr := image.Array(); len(arr) > 0 {
			meta.DisplayURL = arr[0].String()
		}
	case image.Exists():
		meta.DisplayURL = image.String()
	}
	if meta.DisplayURL == "" {
		meta.DisplayURL = doc.Get("thumbnailUrl").String()
	}

	return meta
}

// metaTagStrategy falls back to the og:image / twitter:image preview tags.
type metaTagStrategy struct{}

func (s *metaTagStrategy) Name() string { return "meta_tags" }

func (s *metaTagStrategy) Extract(html string) *PageMetadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	content, ok := doc.Find(`meta[property="og:image"]`).Attr("content")
	if !ok || content == "" {
		content, ok = doc.Find(`meta[name="twitter:image"]`).Attr("content")
	}
	if !ok || content == "" {
		return nil
	}

	meta := &PageMetadata{DisplayURL: content}
	if video, ok := doc.Find(`meta[property="og:video"]`).Attr("content"); ok && video != "" {
		meta.VideoURL = video
		meta.IsVideo = true
	}
	return meta
}

// displayURLStrategy is the raw-regex last resort for the display_url
// field of an embedded blob the JSON strategies failed to parse whole.
type displayURLStrategy struct{}

func (s *displayURLStrategy) Name() string { return "display_url_regex" }

func (s *displayURLStrategy) Extract(html string) *PageMetadata {
	m := displayURLRe.FindStringSubmatch(html)
	if m == nil || m[1] == "" {
		return nil
	}
	return &PageMetadata{DisplayURL: unescapeFieldURL(m[1])}
}

// videoURLStrategy is the matching last resort for the video_url field.
type videoURLStrategy struct{}

func (s *videoURLStrategy) Name() string { return "video_url_regex" }

func (s *videoURLStrategy) Extract(html string) *PageMetadata {
	m := videoURLRe.FindStringSubmatch(html)
	if m == nil || m[1] == "" {
		return nil
	}
	return &PageMetadata{
		VideoURL: unescapeFieldURL(m[1]),
		IsVideo:  true,
	}
}
