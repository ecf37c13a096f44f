// Package credentials resolves the New Relic API keys referenced by
// notification targets.
//
// The dispatch engine depends only on the Resolver interface. FileStore keeps
// keys in a TOML file that can be scoped to a job and restricted to a regional
// host; Env reads keys injected by the CI system; Chain combines them. Secrets
// are wrapped so they never show up in diagnostics or structured logs.
package credentials
