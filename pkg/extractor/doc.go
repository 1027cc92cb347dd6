// Package extractor locates embedded structured data in fetched Instagram
// pages and normalizes it into PageMetadata.
//
// Instagram's server-rendered page structure is an unstable, frequently
// broken external contract. The extractor is therefore an ordered list of
// independently-failable strategies rather than one parser: adding or
// removing a strategy does not risk the others, and any parse or regex
// failure inside a strategy is swallowed and treated as "this strategy
// found nothing".
package extractor
