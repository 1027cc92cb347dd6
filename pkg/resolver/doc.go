// Package resolver turns a raw Instagram URL into a concrete media
// locator or a typed failure.
//
// Resolve is the pure selection step: given a content kind and extracted
// metadata it walks a prioritized fallback chain across the known metadata
// shapes. Pipeline is the orchestrator around it: classify, consult the
// resolution cache, fetch, extract, resolve, and cache successful
// outcomes. At most one resolution per cache key is in flight at a time;
// concurrent callers for the same key share the result.
package resolver
