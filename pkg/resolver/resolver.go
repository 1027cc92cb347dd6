package resolver

import (
	"igresolver/pkg/errors"
	"igresolver/pkg/extractor"
	"igresolver/pkg/instagram"
)

// titleMaxLen bounds caption-derived titles.
const titleMaxLen = 50

// Resolve selects the concrete media URL, thumbnail and title from
// extracted metadata. Pure function; the fallback chain is evaluated top
// to bottom and the first match wins.
func Resolve(kind instagram.ContentKind, meta *extractor.PageMetadata) Result {
	// Stories have no anonymous path to media regardless of what the
	// interstitial page embeds.
	if kind == instagram.KindStory {
		return failure(errors.New(errors.ErrorTypeNoMediaURLFound,
			"stories require an authenticated session to access"))
	}

	if meta == nil {
		return failure(errors.New(errors.ErrorTypeNoMediaURLFound, "no metadata to resolve"))
	}

	mediaURL, isVideo := selectMedia(meta)
	if mediaURL == "" {
		return failure(errors.New(errors.ErrorTypeNoMediaURLFound, "no media URL found in metadata"))
	}

	resultKind := kind
	if kind == instagram.KindPost || kind == instagram.KindUnknown {
		if isVideo {
			resultKind = instagram.KindTv
		} else {
			resultKind = instagram.KindPost
		}
	}

	return success(resultKind, mediaURL, selectThumbnail(meta, mediaURL), title(meta.Caption, resultKind, isVideo))
}

// selectMedia picks the primary media locator. A page flagged as video
// resolves to its video URL; otherwise the highest-resolution image
// candidate wins, then the single display URL, then a bare video URL.
func selectMedia(meta *extractor.PageMetadata) (url string, isVideo bool) {
	if meta.IsVideo && meta.VideoURL != "" {
		return meta.VideoURL, true
	}
	if len(meta.Candidates) > 0 {
		// Candidates are ranked ascending by resolution; take the last.
		if last := meta.Candidates[len(meta.Candidates)-1].URL; last != "" {
			return last, false
		}
	}
	if meta.DisplayURL != "" {
		return meta.DisplayURL, false
	}
	if meta.VideoURL != "" {
		return meta.VideoURL, true
	}
	return "", false
}

// selectThumbnail prefers the still image even for video media, falling
// back to the media URL itself when no distinct thumbnail exists.
func selectThumbnail(meta *extractor.PageMetadata, mediaURL string) string {
	if meta.DisplayURL != "" {
		return meta.DisplayURL
	}
	if len(meta.Candidates) > 0 {
		if last := meta.Candidates[len(meta.Candidates)-1].URL; last != "" {
			return last
		}
	}
	return mediaURL
}

// title truncates the caption, defaulting to a kind-specific placeholder.
func title(caption string, kind instagram.ContentKind, isVideo bool) string {
	caption = truncate(caption, titleMaxLen)
	if caption != "" {
		return caption
	}

	switch {
	case kind == instagram.KindReel:
		return "Instagram Reel"
	case kind == instagram.KindTv || isVideo:
		return "Instagram Video"
	case kind == instagram.KindPost:
		return "Instagram Photo"
	default:
		return "Instagram Content"
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
