package extractor

import (
	"strings"

	"igresolver/pkg/errors"
	"igresolver/pkg/logger"
)

// ImageCandidate is one entry of a resolution-ranked image list, ordered
// ascending so the last entry is the highest resolution.
type ImageCandidate struct {
	URL    string
	Width  int
	Height int
}

// PageMetadata is the normalized result of extracting structured data from
// a fetched page. Produced fresh per fetch; not persisted.
type PageMetadata struct {
	VideoURL   string
	DisplayURL string
	Candidates []ImageCandidate
	Caption    string
	IsVideo    bool

	// Shape records which strategy produced the metadata, for diagnostics.
	Shape string
}

// empty reports whether the metadata carries nothing usable.
func (m *PageMetadata) empty() bool {
	return m == nil || (m.VideoURL == "" && m.DisplayURL == "" && len(m.Candidates) == 0)
}

// Strategy is one independently-failable extraction approach. Extract
// returns nil when the strategy finds nothing; it must never panic or
// return partial garbage for malformed input.
type Strategy interface {
	Name() string
	Extract(html string) *PageMetadata
}

// Extractor runs an ordered chain of strategies and returns the first
// non-empty result.
type Extractor struct {
	strategies []Strategy
	logger     logger.Logger
}

// New creates an extractor with the default strategy chain: embedded page
// state, JSON-LD, preview meta tags, then the raw display_url/video_url
// field regexes as the last resort.
func New(log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{
		strategies: []Strategy{
			&embeddedStateStrategy{},
			&jsonLDStrategy{},
			&metaTagStrategy{},
			&displayURLStrategy{},
			&videoURLStrategy{},
		},
		logger: log,
	}
}

// NewWithStrategies creates an extractor with a custom chain.
func NewWithStrategies(log logger.Logger, strategies ...Strategy) *Extractor {
	e := New(log)
	e.strategies = strategies
	return e
}

// Extract parses html and returns normalized metadata, or a typed
// no_metadata_found error when no strategy matches. Parse failures inside
// a strategy count as "found nothing" and never propagate.
func (e *Extractor) Extract(html string) (*PageMetadata, error) {
	for _, s := range e.strategies {
		meta := e.tryStrategy(s, html)
		if !meta.empty() {
			meta.Shape = s.Name()
			e.logger.DebugWithFields("metadata extracted", map[string]interface{}{
				"shape":    meta.Shape,
				"is_video": meta.IsVideo,
			})
			return meta, nil
		}
	}
	return nil, errors.New(errors.ErrorTypeNoMetadataFound, "no recognized metadata in page")
}

// tryStrategy isolates a single strategy so a panic in one cannot take
// down the chain.
func (e *Extractor) tryStrategy(s Strategy, html string) (meta *PageMetadata) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WarnWithFields("extraction strategy panicked", map[string]interface{}{
				"strategy": s.Name(),
				"panic":    r,
			})
			meta = nil
		}
	}()
	return s.Extract(html)
}

// privateMarkers are the page-body phrases that identify private-account
// content across the language variants Instagram serves to anonymous
// visitors.
var privateMarkers = []string{
	"This Account is Private",
	"This account is private",
}

// IsPrivatePage reports whether the fetched page is the private-account
// interstitial rather than content.
func IsPrivatePage(html string) bool {
	for _, marker := range privateMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}
