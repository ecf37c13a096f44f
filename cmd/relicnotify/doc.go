// Package main hosts the relicnotify CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds the dispatch engine
// with its credential resolvers and observers, and exposes the two dispatch
// entry points (perform and run) next to credential, history and
// configuration maintenance commands.
package main
