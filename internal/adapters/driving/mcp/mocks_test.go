package mcp

import (
	"context"
	"time"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driving"
)

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	resp     *domain.RAGResponse
	stats    domain.StoreStats
	ready    bool
	queryErr error

	lastQuestion string
	lastOpts     domain.QueryOptions
}

func (m *mockQueryService) Query(_ context.Context, question string, opts domain.QueryOptions) (*domain.RAGResponse, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.resp, nil
}

func (m *mockQueryService) QueryStream(ctx context.Context, question string, opts domain.QueryOptions, _ driving.StreamFunc) (*domain.RAGResponse, error) {
	return m.Query(ctx, question, opts)
}

func (m *mockQueryService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, nil
}

func (m *mockQueryService) IsReady(_ context.Context) bool {
	return m.ready
}

// mockModelService implements driving.ModelService for testing.
type mockModelService struct {
	descs []domain.ModelDescriptor
	ramMB int
}

func (m *mockModelService) List(_ context.Context) ([]domain.ModelDescriptor, error) {
	return m.descs, nil
}

func (m *mockModelService) LoadedRAMMB() int { return m.ramMB }

func (m *mockModelService) Unload(_ context.Context, _ string) error { return nil }

func (m *mockModelService) Delete(_ context.Context, _ string) error { return nil }

// testResponse returns a canned grounded answer.
func testResponse() *domain.RAGResponse {
	return &domain.RAGResponse{
		Answer: "The five aggregates are form, feeling, perception, formations and consciousness.",
		Sources: []domain.Citation{
			{SourceID: "c1", Title: "ขันธ์ 5", Excerpt: "excerpt", Relevance: 0.91},
		},
		Confidence:     0.73,
		ProcessingTime: 1500 * time.Millisecond,
	}
}
