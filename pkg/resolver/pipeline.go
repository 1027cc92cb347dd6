package resolver

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"igresolver/pkg/cache"
	"igresolver/pkg/config"
	"igresolver/pkg/errors"
	"igresolver/pkg/extractor"
	"igresolver/pkg/instagram"
	"igresolver/pkg/logger"
)

// Pipeline runs the full resolution chain: classify, cache lookup, fetch,
// extract, resolve.
// Only successful results are cached: a transient fetch failure must not
// poison the cache for the TTL window. Concurrent requests for the same
// key share a single in-flight resolution.
type Pipeline struct {
	fetcher   instagram.Fetcher
	extractor *extractor.Extractor
	results   *cache.Cache[Result]
	thumbs    *cache.Cache[string]
	group     singleflight.Group

	resolutionTTL time.Duration
	thumbnailTTL  time.Duration
	deadline      time.Duration
	batchMax      int
	batchWorkers  int

	logger logger.Logger
}

// NewPipeline wires a pipeline from its components. The caches are owned
// by the pipeline; callers must not touch them directly.
func NewPipeline(fetcher instagram.Fetcher, ex *extractor.Extractor, cfg *config.Config, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pipeline{
		fetcher:       fetcher,
		extractor:     ex,
		results:       cache.New[Result](cfg.Cache.SweepInterval),
		thumbs:        cache.New[string](cfg.Cache.SweepInterval),
		resolutionTTL: cfg.Cache.ResolutionTTL,
		thumbnailTTL:  cfg.Cache.ThumbnailTTL,
		deadline:      cfg.Instagram.PipelineTimeout,
		batchMax:      cfg.Batch.MaxURLs,
		batchWorkers:  cfg.Batch.Concurrency,
		logger:        log,
	}
}

// Close stops the cache janitors.
func (p *Pipeline) Close() {
	p.results.Stop()
	p.thumbs.Stop()
}

// Resolve runs the full pipeline for one raw URL. It never returns an
// unstructured error: every failure mode is folded into the Result.
func (p *Pipeline) Resolve(ctx context.Context, rawURL string, opts Options) Result {
	u, err := instagram.Classify(rawURL)
	if err != nil {
		return failure(errors.From(err))
	}

	key := u.CacheKey(opts.qualifiers()...)
	if cached, ok := p.results.Get(key); ok {
		p.logger.DebugWithFields("resolution cache hit", map[string]interface{}{
			"key": key,
		})
		return cached
	}

	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		return p.resolveUncached(ctx, u), nil
	})
	if shared {
		p.logger.DebugWithFields("joined in-flight resolution", map[string]interface{}{
			"key": key,
		})
	}
	if err != nil {
		// The singleflight fn never returns an error; this is belt and
		// braces for a panic inside it.
		return failure(errors.From(err))
	}

	result := v.(Result)
	if result.Success {
		p.results.Set(key, result, p.resolutionTTL)
	}
	return result
}

// resolveUncached performs the fetch, extract and resolve steps under the
// whole-pipeline deadline.
func (p *Pipeline) resolveUncached(ctx context.Context, u *instagram.ContentURL) Result {
	// Story pages never expose media without a session; skip the fetch.
	if u.Kind == instagram.KindStory {
		return Resolve(u.Kind, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	start := time.Now()

	html, err := p.fetcher.FetchPage(ctx, u)
	if err != nil {
		return failure(errors.From(err))
	}

	if extractor.IsPrivatePage(html) {
		p.logger.InfoWithFields("private content", map[string]interface{}{
			"url": u.Canonical(),
		})
		return failure(errors.New(errors.ErrorTypePrivateContent,
			"this content belongs to a private account"))
	}

	meta, err := p.extractor.Extract(html)
	if err != nil {
		return failure(errors.From(err))
	}

	result := Resolve(u.Kind, meta)

	p.logger.InfoWithFields("resolution finished", map[string]interface{}{
		"url":      u.Canonical(),
		"kind":     string(u.Kind),
		"success":  result.Success,
		"duration": time.Since(start),
	})

	return result
}

// Thumbnail resolves only the preview image for a raw URL, cached under a
// shorter TTL than full resolutions.
func (p *Pipeline) Thumbnail(ctx context.Context, rawURL string) (string, error) {
	u, err := instagram.Classify(rawURL)
	if err != nil {
		return "", err
	}

	key := "thumb|" + u.Canonical()
	if cached, ok := p.thumbs.Get(key); ok {
		return cached, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, p.deadline)
		defer cancel()

		html, err := p.fetcher.FetchPage(ctx, u)
		if err != nil {
			return "", err
		}
		meta, err := p.extractor.Extract(html)
		if err != nil {
			return "", err
		}

		thumb := selectThumbnail(meta, meta.VideoURL)
		if thumb == "" {
			return "", errors.New(errors.ErrorTypeNoMediaURLFound, "no thumbnail found in metadata")
		}
		return thumb, nil
	})
	if err != nil {
		return "", err
	}

	thumb := v.(string)
	p.thumbs.Set(key, thumb, p.thumbnailTTL)
	return thumb, nil
}

// ResolveBatch fans out independent resolutions for up to batchMax URLs,
// bounded by the configured worker count. One bad URL never aborts the
// batch; each item carries its own outcome.
func (p *Pipeline) ResolveBatch(ctx context.Context, rawURLs []string, opts Options) []BatchItem {
	if len(rawURLs) > p.batchMax {
		rawURLs = rawURLs[:p.batchMax]
	}

	items := make([]BatchItem, len(rawURLs))

	var g errgroup.Group
	g.SetLimit(p.batchWorkers)
	for i, raw := range rawURLs {
		i, raw := i, raw
		g.Go(func() error {
			items[i] = BatchItem{URL: raw, Result: p.Resolve(ctx, raw, opts)}
			return nil
		})
	}
	g.Wait()

	return items
}

// BatchMax returns the configured per-request URL cap.
func (p *Pipeline) BatchMax() int {
	return p.batchMax
}
