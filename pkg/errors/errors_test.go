package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := NewWithCode(ErrorTypeFetchFailed, 503, "upstream returned %d", 503)
	assert.Contains(t, err.Error(), "fetch_failed")
	assert.Contains(t, err.Error(), "503")

	err = New(ErrorTypeInvalidURL, "not an Instagram URL")
	assert.Equal(t, "invalid_url error: not an Instagram URL", err.Error())
}

func TestFrom(t *testing.T) {
	typed := New(ErrorTypePrivateContent, "private account")
	assert.Same(t, typed, From(typed))

	wrapped := fmt.Errorf("resolving: %w", typed)
	assert.Equal(t, ErrorTypePrivateContent, From(wrapped).Type)

	plain := fmt.Errorf("boom")
	assert.Equal(t, ErrorTypeUpstreamError, From(plain).Type)

	assert.Nil(t, From(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ErrorTypeInvalidURL, http.StatusBadRequest},
		{ErrorTypePrivateContent, http.StatusForbidden},
		{ErrorTypeTimeout, http.StatusGatewayTimeout},
		{ErrorTypeFetchFailed, http.StatusBadGateway},
		{ErrorTypeNoMetadataFound, http.StatusBadGateway},
		{ErrorTypeNoMediaURLFound, http.StatusBadGateway},
		{ErrorTypeUpstreamError, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.errType))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeFetchFailed))
	assert.True(t, IsRetryable(ErrorTypeTimeout))
	assert.False(t, IsRetryable(ErrorTypeInvalidURL))
	assert.False(t, IsRetryable(ErrorTypeNoMediaURLFound))
	assert.False(t, IsRetryable(ErrorTypePrivateContent))
}

func TestIsRetryableStatusCode(t *testing.T) {
	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(429))
	assert.True(t, IsRetryableStatusCode(502))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(200))
}
