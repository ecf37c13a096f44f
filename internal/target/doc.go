// Package target models configured New Relic deployment notifications and
// resolves their templated fields against a build environment.
//
// Resolution is pure: the environment is an explicit argument and the
// resolved values live only for the dispatch that computed them. Protocol
// selection is derived from the resolved entity GUID so a single target can
// never be sent through both API versions.
package target
