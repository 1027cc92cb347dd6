package api

import (
	"encoding/json"
	"net/http"

	errs "igresolver/pkg/errors"
	"igresolver/pkg/instagram"
	"igresolver/pkg/resolver"
)

// FallbackThumbnail is returned in thumbnail failure bodies so clients
// always have something to render.
const FallbackThumbnail = "/assets/fallback-thumbnail.png"

// resolveResponse is the JSON body for single resolutions and batch items.
type resolveResponse struct {
	Success      bool                  `json:"success"`
	Type         instagram.ContentKind `json:"type,omitempty"`
	URL          string                `json:"url,omitempty"`
	Thumbnail    string                `json:"thumbnail,omitempty"`
	Title        string                `json:"title,omitempty"`
	Size         string                `json:"size,omitempty"`
	File         string                `json:"file,omitempty"`
	Error        string                `json:"error,omitempty"`
	RequiresAuth bool                  `json:"requiresAuth,omitempty"`
}

// batchItemResponse pairs a batch input URL with its outcome.
type batchItemResponse struct {
	InputURL string `json:"url"`
	resolveResponse
}

// batchResponse is the JSON body for batch resolutions. Success is true
// when at least one item resolved.
type batchResponse struct {
	Success bool                `json:"success"`
	Results []batchItemResponse `json:"results"`
	Error   string              `json:"error,omitempty"`
}

// thumbnailResponse is the JSON body for the thumbnail endpoint.
type thumbnailResponse struct {
	Success   bool   `json:"success"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Error     string `json:"error,omitempty"`
	Fallback  string `json:"fallback,omitempty"`
}

func fromResult(r resolver.Result) resolveResponse {
	if !r.Success {
		return resolveResponse{
			Success:      false,
			Error:        r.Failure.Message,
			RequiresAuth: r.Failure.Type == errs.ErrorTypePrivateContent,
		}
	}
	return resolveResponse{
		Success:   true,
		Type:      r.Kind,
		URL:       r.MediaURL,
		Thumbnail: r.ThumbnailURL,
		Title:     r.Title,
		Size:      r.Size,
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a standardized JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, resolveResponse{Success: false, Error: message})
}

// writeFailure maps a failed resolution onto its HTTP status.
func writeFailure(w http.ResponseWriter, failure *errs.Error) {
	writeJSON(w, errs.HTTPStatus(failure.Type), resolveResponse{
		Success:      false,
		Error:        failure.Message,
		RequiresAuth: failure.Type == errs.ErrorTypePrivateContent,
	})
}
