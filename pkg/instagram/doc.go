// Package instagram provides URL classification and page fetching for
// public Instagram content.
//
// Classify validates a raw URL and determines its content kind from the
// recognized path markers (/p/, /reel/, /reels/, /stories/, /story/, /tv/).
// The kind is provisional: whether a /p/ post is a photo or a video is only
// known after metadata extraction.
//
// Client fetches the page HTML with a mobile-browser request profile. It is
// a pure I/O boundary: it does no parsing, no retries, and reports failures
// as typed errors (fetch_failed with the upstream status, or timeout). The
// Fetcher interface allows alternate acquisition strategies, such as a
// headless-browser renderer, to slot in behind the same contract.
package instagram
