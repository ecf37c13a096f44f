// Package services defines shared utilities consumed by the dispatch engine and
// the New Relic integration.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, job names, and target
//     positions for logging and history records.
//   - Structured error markers plus the Wrap helper that separate fatal
//     dispatch failures (configuration, build state) from per-target ones
//     (credential, protocol).
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform across a dispatch.
package services
