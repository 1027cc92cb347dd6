// Package ratelimit provides rate limiting for the resolver's HTTP API.
//
// The sliding window implementation tracks request timestamps within a
// moving window, which gives accurate limiting over time for consistent
// request patterns. PerKey maintains one window per client key (an IP
// address in the API middleware) and evicts idle windows.
//
// Usage:
//
//	// 200 requests per hour per client
//	limiter := ratelimit.NewPerKey(200, time.Hour)
//
//	if limiter.Allow(clientIP) {
//	    // Proceed with request
//	} else {
//	    // Reject with 429 and limiter.RetryAfter(clientIP)
//	}
package ratelimit
