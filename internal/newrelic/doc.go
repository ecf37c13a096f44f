// Package newrelic records deployment markers against the New Relic APIs.
//
// Two protocols are supported. The legacy REST API (v2 applications
// endpoint) addresses an application by numeric ID and authenticates with the
// X-Api-Key header. NerdGraph addresses an entity by GUID and creates a change
// tracking deployment through a GraphQL mutation authenticated with the
// API-Key header. Each send is a single synchronous attempt.
package newrelic
