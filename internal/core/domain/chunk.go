package domain

import "time"

// ChunkSource identifies where a chunk originated.
type ChunkSource string

// Chunk sources.
const (
	// SourceCorpus marks chunks from the fixed canonical corpus.
	// Corpus chunks are immutable once loaded.
	SourceCorpus ChunkSource = "corpus"

	// SourceUserDocument marks chunks from a user-imported document.
	SourceUserDocument ChunkSource = "user"
)

// Chunk is a retrievable unit of source text with an associated embedding.
type Chunk struct {
	// ID is the stable unique identifier for the chunk.
	ID string

	// Source identifies whether this chunk belongs to the corpus or a
	// user-imported document.
	Source ChunkSource

	// DocumentID links to the owning Document. Set only for user chunks.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// ChunkIndex is the ordinal position within the source text.
	ChunkIndex int

	// TotalChunks is the number of chunks the source text was split into.
	TotalChunks int

	// Collection is the top-level corpus division (pitaka).
	// Empty for user chunks.
	Collection string

	// SubCollection is the second-level corpus division (nikaya).
	SubCollection string

	// Title is the Thai title of the source text.
	Title string

	// TitlePali is the romanised Pali title, when known.
	TitlePali string

	// Embedding is the vector representation for semantic search.
	// Its length must equal the embedding model's dimension.
	Embedding []float32

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}

// DisplayTitle returns the best available human-readable label for the
// chunk's source text.
func (c Chunk) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	if c.TitlePali != "" {
		return c.TitlePali
	}
	if c.DocumentID != "" {
		return c.DocumentID
	}
	return c.ID
}

// RetrievalResult is a scored chunk returned by vector search.
// It is ephemeral and never persisted.
type RetrievalResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the cosine similarity score in [0,1].
	// 1 means identical direction.
	Similarity float64

	// Rank is the 0-based position in the result ordering.
	Rank int
}

// MaxExcerptLen bounds citation excerpts.
const MaxExcerptLen = 200

// Citation is a user-facing reference to a chunk that was part of the
// context actually passed to the generation model.
type Citation struct {
	// SourceID is the cited chunk's ID.
	SourceID string `json:"source_id"`

	// Title is the display title of the cited source text.
	Title string `json:"title"`

	// Excerpt is a bounded-length prefix of the chunk content.
	Excerpt string `json:"excerpt"`

	// Relevance is the similarity score of the cited chunk.
	Relevance float64 `json:"relevance"`
}

// NewCitation builds a citation from a retrieval result, truncating the
// excerpt to MaxExcerptLen runes.
func NewCitation(r RetrievalResult) Citation {
	excerpt := r.Chunk.Content
	if runes := []rune(excerpt); len(runes) > MaxExcerptLen {
		excerpt = string(runes[:MaxExcerptLen])
	}
	return Citation{
		SourceID:  r.Chunk.ID,
		Title:     r.Chunk.DisplayTitle(),
		Excerpt:   excerpt,
		Relevance: r.Similarity,
	}
}
