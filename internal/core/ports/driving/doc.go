// Package driving provides interfaces exposed to external actors
// (primary/inbound ports): the CLI, the MCP server, and the voice
// pipeline.
package driving
