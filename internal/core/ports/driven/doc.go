// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The engine depends only on these
// interfaces; adapters supply concrete storage and model providers.
package driven
