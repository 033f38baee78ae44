// Package mcp provides an MCP (Model Context Protocol) server adapter
// for the Tipitaka engine. It lets AI assistants ask grounded questions
// against the local corpus.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
