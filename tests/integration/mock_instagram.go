package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"
)

// MockInstagramServer serves canned Instagram content pages keyed by path.
// It mimics the page shapes the extractor understands: embedded state
// blobs, JSON-LD and plain meta tags.
type MockInstagramServer struct {
	server       *httptest.Server
	requestCount int32

	mu     sync.RWMutex
	errors map[string]int           // path -> forced status code
	delays map[string]time.Duration // path -> simulated latency
}

// NewMockInstagramServer starts the mock server.
func NewMockInstagramServer() *MockInstagramServer {
	m := &MockInstagramServer{
		errors: make(map[string]int),
		delays: make(map[string]time.Duration),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the mock server's base URL.
func (m *MockInstagramServer) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockInstagramServer) Close() {
	m.server.Close()
}

// RequestCount returns how many page fetches the server has seen.
func (m *MockInstagramServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// SetError forces a status code for a path.
func (m *MockInstagramServer) SetError(path string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[path] = status
}

// SetDelay adds artificial latency for a path.
func (m *MockInstagramServer) SetDelay(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[path] = d
}

func (m *MockInstagramServer) handle(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	m.mu.RLock()
	status := m.errors[r.URL.Path]
	delay := m.delays[r.URL.Path]
	m.mu.RUnlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status > 0 {
		w.WriteHeader(status)
		return
	}

	page, ok := pages[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

// pages maps content paths to page bodies covering each extraction shape.
var pages = map[string]string{
	// Reel with graphql shortcode_media embedded state
	"/reel/VIDEO123/": `<!DOCTYPE html><html><head><title>Instagram</title></head><body>
<script type="text/javascript">window._sharedData = {"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{"is_video":true,"video_url":"https://cdn.mock/reels/video123.mp4","display_url":"https://cdn.mock/reels/video123.jpg","edge_media_to_caption":{"edges":[{"node":{"text":"mock reel caption"}}]}}}}]}};</script>
</body></html>`,

	// Photo post with display_resources ladder
	"/p/PHOTO456/": `<!DOCTYPE html><html><head><title>Instagram</title></head><body>
<script type="text/javascript">window._sharedData = {"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{"is_video":false,"display_url":"https://cdn.mock/photos/photo456.jpg","display_resources":[{"src":"https://cdn.mock/photos/photo456_640.jpg","config_width":640},{"src":"https://cdn.mock/photos/photo456_1080.jpg","config_width":1080}],"edge_media_to_caption":{"edges":[{"node":{"text":"mock photo caption"}}]}}}}]}};</script>
</body></html>`,

	// Post served through the additional-data hook with an items array
	"/p/ITEMS789/": `<!DOCTYPE html><html><head></head><body>
<script>window.__additionalDataLoaded('extra',{"items":[{"video_versions":[{"url":"https://cdn.mock/items/items789.mp4"}],"image_versions2":{"candidates":[{"url":"https://cdn.mock/items/items789.jpg"}]},"caption":{"text":"items shape caption"}}]});</script>
</body></html>`,

	// IGTV page carrying only JSON-LD metadata
	"/tv/LDJSON1/": `<!DOCTYPE html><html><head>
<script type="application/ld+json">{"@type":"VideoObject","contentUrl":"https://cdn.mock/tv/ldjson1.mp4","thumbnailUrl":"https://cdn.mock/tv/ldjson1.jpg","caption":"ld+json caption"}</script>
</head><body></body></html>`,

	// Page with nothing but OpenGraph meta tags
	"/p/METAONLY/": `<!DOCTYPE html><html><head>
<meta property="og:image" content="https://cdn.mock/meta/metaonly.jpg"/>
<meta property="og:title" content="Instagram post"/>
</head><body></body></html>`,

	// Private account interstitial
	"/p/PRIVATE1/": `<!DOCTYPE html><html><head><title>Instagram</title></head><body>
<h2>This Account is Private</h2><p>Follow to see their photos and videos.</p>
</body></html>`,

	// Page with no recognizable metadata at all
	"/p/BARREN99/": `<!DOCTYPE html><html><head><title>Instagram</title></head><body>
<div>nothing to see here</div>
</body></html>`,
}
