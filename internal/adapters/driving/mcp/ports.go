package mcp

import (
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point.
type Ports struct {
	// Query answers grounded questions.
	Query driving.QueryService

	// Model exposes model lifecycle state.
	Model driving.ModelService

	// Document manages user-imported documents.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Model and Document are optional; their tools are skipped when nil.
	return nil
}
