package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igresolver/pkg/errors"
)

func TestClassifyInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not a url", "not a url at all"},
		{"no scheme", "instagram.com/p/ABC123/"},
		{"bad scheme", "ftp://www.instagram.com/p/ABC123/"},
		{"wrong host", "https://www.example.com/p/ABC123/"},
		{"instagram substring host", "https://notinstagram.com.evil.net/p/ABC123/"},
		{"no marker", "https://www.instagram.com/someuser/"},
		{"explore path", "https://www.instagram.com/explore/tags/cats/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.raw)
			require.Error(t, err)
			assert.Equal(t, errors.ErrorTypeInvalidURL, errors.TypeOf(err))
		})
	}
}

func TestClassifyKinds(t *testing.T) {
	tests := []struct {
		raw  string
		kind ContentKind
	}{
		{"https://www.instagram.com/p/ABC123/", KindPost},
		{"https://instagram.com/p/ABC123", KindPost},
		{"https://www.instagram.com/reel/XYZ789/", KindReel},
		// Regression: the /reels/ form must classify, not fall through.
		{"https://www.instagram.com/reels/ABC123/", KindReel},
		{"https://www.instagram.com/stories/someuser/1234567890/", KindStory},
		{"https://www.instagram.com/story/someuser/1234567890/", KindStory},
		{"https://www.instagram.com/tv/TV123/", KindTv},
		{"https://instagr.am/p/ABC123/", KindPost},
		{"http://www.instagram.com/reel/LOWER/", KindReel},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := Classify(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, u.Kind)
		})
	}
}

func TestClassifyShortcode(t *testing.T) {
	u, err := Classify("https://www.instagram.com/p/CxYz_123/?igsh=tracking")
	require.NoError(t, err)
	assert.Equal(t, "CxYz_123", u.Shortcode)

	u, err = Classify("https://www.instagram.com/stories/someuser/3141592653/")
	require.NoError(t, err)
	assert.Equal(t, "3141592653", u.Shortcode)
}

func TestCanonicalStripsQuery(t *testing.T) {
	u, err := Classify("https://instagram.com/reel/ABC123/?utm_source=share&igsh=xyz")
	require.NoError(t, err)
	assert.Equal(t, "https://www.instagram.com/reel/ABC123/", u.Canonical())
}

func TestCanonicalNormalizesHost(t *testing.T) {
	a, err := Classify("https://instagram.com/p/SAME/")
	require.NoError(t, err)
	b, err := Classify("https://www.instagram.com/p/SAME/?from=feed")
	require.NoError(t, err)

	assert.Equal(t, a.Canonical(), b.Canonical())
}

func TestCacheKey(t *testing.T) {
	u, err := Classify("https://www.instagram.com/p/ABC123/")
	require.NoError(t, err)

	assert.Equal(t, u.Canonical(), u.CacheKey())
	assert.Equal(t, u.Canonical()+"|highest|mp4", u.CacheKey("highest", "mp4"))
	assert.NotEqual(t, u.CacheKey("highest", "mp4"), u.CacheKey("lowest", "mp4"))
}
