// Package dispatch sends a job's configured deployment notifications.
//
// Engine walks the target list in order, resolving templated fields against
// the build environment, looking up each target's API key and choosing the
// REST or NerdGraph protocol per target. A failing target never stops the
// remaining ones. Perform is the legacy entry point: it skips failed builds
// and reports an aggregate result. Run is the pipeline entry point: it
// attempts every target and surfaces failures only as diagnostics.
package dispatch
