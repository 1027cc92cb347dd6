package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igresolver/pkg/errors"
)

const sharedDataPhotoHTML = `<html><head></head><body>
<script type="text/javascript">window._sharedData = {"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{"is_video":false,"display_url":"https://cdn.example/photo.jpg","display_resources":[{"src":"https://cdn.example/photo_640.jpg","config_width":640,"config_height":640},{"src":"https://cdn.example/photo_1080.jpg","config_width":1080,"config_height":1080}],"edge_media_to_caption":{"edges":[{"node":{"text":"a sunny day"}}]}}}}]}};</script>
</body></html>`

const sharedDataVideoHTML = `<html><body>
<script>window._sharedData = {"graphql":{"shortcode_media":{"is_video":true,"video_url":"https://cdn.example/clip.mp4","display_url":"https://cdn.example/poster.jpg","edge_media_to_caption":{"edges":[{"node":{"text":"watch this"}}]}}}};</script>
</body></html>`

const additionalDataHTML = `<html><body>
<script>window.__additionalDataLoaded('extra', {"items":[{"video_versions":[{"url":"https://cdn.example/reel.mp4"}],"image_versions2":{"candidates":[{"url":"https://cdn.example/reel_thumb.jpg"}]},"caption":{"text":"reel caption"}}]});</script>
</body></html>`

const jsonLDHTML = `<html><head>
<script type="application/ld+json">{"@type":"ImageObject","image":"https://cdn.example/ld.jpg","caption":"from json-ld"}</script>
</head></html>`

const metaTagHTML = `<html><head>
<meta property="og:image" content="https://cdn.example/og.jpg"/>
</head><body></body></html>`

func TestExtractEmbeddedStatePhoto(t *testing.T) {
	e := New(nil)
	meta, err := e.Extract(sharedDataPhotoHTML)
	require.NoError(t, err)

	assert.Equal(t, "embedded_state", meta.Shape)
	assert.False(t, meta.IsVideo)
	assert.Equal(t, "https://cdn.example/photo.jpg", meta.DisplayURL)
	assert.Equal(t, "a sunny day", meta.Caption)
	require.Len(t, meta.Candidates, 2)
	assert.Equal(t, "https://cdn.example/photo_1080.jpg", meta.Candidates[1].URL)
	assert.Equal(t, 1080, meta.Candidates[1].Width)
}

func TestExtractEmbeddedStateVideo(t *testing.T) {
	e := New(nil)
	meta, err := e.Extract(sharedDataVideoHTML)
	require.NoError(t, err)

	assert.True(t, meta.IsVideo)
	assert.Equal(t, "https://cdn.example/clip.mp4", meta.VideoURL)
	assert.Equal(t, "https://cdn.example/poster.jpg", meta.DisplayURL)
}

func TestExtractAdditionalDataItems(t *testing.T) {
	e := New(nil)
	meta, err := e.Extract(additionalDataHTML)
	require.NoError(t, err)

	assert.Equal(t, "embedded_state", meta.Shape)
	assert.True(t, meta.IsVideo)
	assert.Equal(t, "https://cdn.example/reel.mp4", meta.VideoURL)
	assert.Equal(t, "https://cdn.example/reel_thumb.jpg", meta.DisplayURL)
	assert.Equal(t, "reel caption", meta.Caption)
}

func TestExtractJSONLD(t *testing.T) {
	e := New(nil)
	meta, err := e.Extract(jsonLDHTML)
	require.NoError(t, err)

	assert.Equal(t, "json_ld", meta.Shape)
	assert.Equal(t, "https://cdn.example/ld.jpg", meta.DisplayURL)
	assert.Equal(t, "from json-ld", meta.Caption)
}

func TestExtractMetaTags(t *testing.T) {
	e := New(nil)
	meta, err := e.Extract(metaTagHTML)
	require.NoError(t, err)

	assert.Equal(t, "meta_tags", meta.Shape)
	assert.Equal(t, "https://cdn.example/og.jpg", meta.DisplayURL)
}

func TestExtractTwitterImageFallback(t *testing.T) {
	html := `<html><head><meta name="twitter:image" content="https://cdn.example/tw.jpg"/></head></html>`

	e := New(nil)
	meta, err := e.Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/tw.jpg", meta.DisplayURL)
}

func TestExtractDisplayURLRegexUnescapes(t *testing.T) {
	html := `<html><body>garbage "display_url":"https:\/\/x\/y.jpg?a=1\u0026b=2" more garbage</body></html>`

	e := New(nil)
	meta, err := e.Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "display_url_regex", meta.Shape)
	assert.Equal(t, "https://x/y.jpg?a=1&b=2", meta.DisplayURL)
}

func TestExtractVideoURLRegex(t *testing.T) {
	html := `<html>"video_url":"https:\/\/cdn\/v.mp4?tok=1&2"</html>`

	e := New(nil)
	meta, err := e.Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "video_url_regex", meta.Shape)
	assert.True(t, meta.IsVideo)
	assert.Equal(t, "https://cdn/v.mp4?tok=1&2", meta.VideoURL)
}

func TestExtractPriorityOrder(t *testing.T) {
	// Embedded state must win over meta tags when both are present.
	html := sharedDataPhotoHTML + metaTagHTML

	e := New(nil)
	meta, err := e.Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "embedded_state", meta.Shape)
}

func TestExtractNoMetadata(t *testing.T) {
	e := New(nil)
	_, err := e.Extract("<html><body>nothing to see</body></html>")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNoMetadataFound, errors.TypeOf(err))
}

func TestExtractNeverPropagatesParseFailures(t *testing.T) {
	// Malformed and truncated inputs must yield a typed error or valid
	// metadata from a later strategy, never a panic.
	inputs := []string{
		"",
		"{",
		`<script>window._sharedData = {"truncated":</script>`,
		`window._sharedData = {"unclosed": "blob`,
		`<script type="application/ld+json">{not json}</script>`,
		`"display_url":"`,
		strings.Repeat(`<div>`, 10000),
		sharedDataPhotoHTML[:len(sharedDataPhotoHTML)/2],
		"\x00\x01\x02\xff",
	}

	e := New(nil)
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			meta, err := e.Extract(in)
			if err == nil {
				assert.False(t, meta.empty())
			} else {
				assert.Equal(t, errors.ErrorTypeNoMetadataFound, errors.TypeOf(err))
			}
		})
	}
}

func TestExtractGarbledStateFallsThrough(t *testing.T) {
	// A broken state blob must not block the meta-tag strategy.
	html := `<script>window._sharedData = {"broken": </script>` + metaTagHTML

	e := New(nil)
	meta, err := e.Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "meta_tags", meta.Shape)
}

func TestIsPrivatePage(t *testing.T) {
	assert.True(t, IsPrivatePage("<body>This Account is Private</body>"))
	assert.True(t, IsPrivatePage("<body>This account is private</body>"))
	assert.False(t, IsPrivatePage(sharedDataPhotoHTML))
}
