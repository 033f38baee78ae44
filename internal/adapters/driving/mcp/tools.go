package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question             string   `json:"question" jsonschema:"the question to answer from the Tipitaka corpus"`
	TopK                 int      `json:"top_k,omitempty" jsonschema:"maximum number of source passages to use (default 5)"`
	Threshold            float64  `json:"threshold,omitempty" jsonschema:"minimum similarity for a passage to be used (default 0.6)"`
	Collections          []string `json:"collections,omitempty" jsonschema:"restrict to these corpus collections (pitaka names)"`
	IncludeUserDocuments bool     `json:"include_user_documents,omitempty" jsonschema:"also search user-imported documents"`
	UserDocumentsOnly    bool     `json:"user_documents_only,omitempty" jsonschema:"search only user-imported documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer       string         `json:"answer"`
	Sources      []SourceOutput `json:"sources"`
	Confidence   float64        `json:"confidence"`
	ProcessingMS int64          `json:"processing_ms"`
}

// SourceOutput represents one cited source passage.
type SourceOutput struct {
	SourceID  string  `json:"source_id"`
	Title     string  `json:"title"`
	Excerpt   string  `json:"excerpt"`
	Relevance float64 `json:"relevance"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	CorpusChunks int  `json:"corpus_chunks"`
	UserChunks   int  `json:"user_chunks"`
	Documents    int  `json:"documents"`
	Ready        bool `json:"ready"`
}

// ListModelsInput is the (empty) input schema for the list_models tool.
type ListModelsInput struct{}

// ListModelsOutput is the output schema for the list_models tool.
type ListModelsOutput struct {
	Models      []ModelOutput `json:"models"`
	LoadedRAMMB int           `json:"loaded_ram_mb"`
}

// ModelOutput represents one catalogued model.
type ModelOutput struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	RAMCostMB int    `json:"ram_cost_mb"`
	Installed bool   `json:"installed"`
	Loaded    bool   `json:"loaded"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered from the Tipitaka corpus with cited sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report corpus and user document counts and engine readiness",
	}, s.handleStats)

	if s.ports.Model != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_models",
			Description: "List catalogued models with installed and loaded state",
		}, s.handleListModels)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts := domain.QueryOptions{
		TopK:      input.TopK,
		Threshold: input.Threshold,
		Filter: domain.QueryFilter{
			Collections:          input.Collections,
			IncludeUserDocuments: input.IncludeUserDocuments,
			UserDocumentsOnly:    input.UserDocumentsOnly,
		},
	}

	resp, err := s.ports.Query.Query(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:       resp.Answer,
		Sources:      make([]SourceOutput, len(resp.Sources)),
		Confidence:   resp.Confidence,
		ProcessingMS: resp.ProcessingTime.Milliseconds(),
	}
	for i, src := range resp.Sources {
		output.Sources[i] = SourceOutput{
			SourceID:  src.SourceID,
			Title:     src.Title,
			Excerpt:   src.Excerpt,
			Relevance: src.Relevance,
		}
	}

	return nil, output, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Query.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	return nil, StatsOutput{
		CorpusChunks: stats.CorpusChunks,
		UserChunks:   stats.UserChunks,
		Documents:    stats.Documents,
		Ready:        s.ports.Query.IsReady(ctx),
	}, nil
}

// handleListModels handles the list_models tool invocation.
func (s *Server) handleListModels(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListModelsInput,
) (*mcp.CallToolResult, ListModelsOutput, error) {
	descs, err := s.ports.Model.List(ctx)
	if err != nil {
		return nil, ListModelsOutput{}, err
	}

	output := ListModelsOutput{
		Models:      make([]ModelOutput, len(descs)),
		LoadedRAMMB: s.ports.Model.LoadedRAMMB(),
	}
	for i, desc := range descs {
		output.Models[i] = ModelOutput{
			ID:        desc.ID,
			Kind:      string(desc.Kind),
			RAMCostMB: desc.RAMCostMB,
			Installed: desc.Installed,
			Loaded:    desc.Loaded,
		}
	}

	return nil, output, nil
}
