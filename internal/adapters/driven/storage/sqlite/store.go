// Package sqlite provides the SQLite-backed chunk store and model
// catalog. Vector search is an exact linear scan over stored
// embeddings: at tens of thousands of chunks and ~384 dimensions a
// single scan stays within acceptable latency on mobile-class CPUs and
// guarantees exact recall, which matters for a citation use case.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aaweerawat2/TipitakaAi/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ChunkStore   = (*Store)(nil)
	_ driven.ModelCatalog = (*modelCatalog)(nil)
)

// Store is the SQLite-backed chunk store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.tipitaka/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tipitaka", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "tipitaka.db")

	// WAL mode allows one writer (the import pipeline) alongside many
	// readers (queries) without torn reads.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ModelCatalog returns a ModelCatalog interface backed by this store.
func (s *Store) ModelCatalog() driven.ModelCatalog {
	return &modelCatalog{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chunk Store ====================

// SearchText performs term-frequency text search over chunk contents.
// Candidate rows are prefiltered with LIKE, then scored in Go by
// per-term occurrence counts normalized by content length. Ties are
// broken by corpus insertion order (rowid).
func (s *Store) SearchText(ctx context.Context, query string, limit int) ([]driven.TextHit, error) {
	terms := strings.Fields(strings.TrimSpace(query))
	if len(terms) == 0 || limit <= 0 {
		return []driven.TextHit{}, nil
	}

	where := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms))
	for _, term := range terms {
		where = append(where, `content LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(term)+"%")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, id, source, COALESCE(document_id, ''), content,
			chunk_index, total_chunks,
			COALESCE(collection, ''), COALESCE(sub_collection, ''),
			COALESCE(title, ''), COALESCE(title_pali, ''),
			embedding, created_at
		FROM chunks
		WHERE `+strings.Join(where, " OR ")+`
		ORDER BY rowid
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	type rankedHit struct {
		hit   driven.TextHit
		rowid int64
	}
	var hits []rankedHit

	for rows.Next() {
		var rowid int64
		chunk, err := scanChunk(rows, &rowid)
		if err != nil {
			return nil, err
		}
		score := termFrequencyScore(chunk.Content, terms)
		if score <= 0 {
			continue
		}
		hits = append(hits, rankedHit{
			hit:   driven.TextHit{Chunk: *chunk, Score: score},
			rowid: rowid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].hit.Score != hits[j].hit.Score {
			return hits[i].hit.Score > hits[j].hit.Score
		}
		return hits[i].rowid < hits[j].rowid
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]driven.TextHit, len(hits))
	for i := range hits {
		results[i] = hits[i].hit
	}
	return results, nil
}

// SearchVector computes cosine similarity between the query embedding
// and every candidate chunk. Chunks whose stored dimension disagrees
// with the query are skipped rather than failing the search. Results
// are sorted descending by similarity, ties broken by chunk ID, capped
// at limit.
func (s *Store) SearchVector(ctx context.Context, embedding []float32, limit int, threshold float64, filter domain.QueryFilter) ([]domain.RetrievalResult, error) {
	if len(embedding) == 0 || limit <= 0 {
		return []domain.RetrievalResult{}, nil
	}

	query, args := vectorCandidateQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult
	skipped := 0

	for rows.Next() {
		var rowid int64
		chunk, err := scanChunk(rows, &rowid)
		if err != nil {
			return nil, err
		}
		if len(chunk.Embedding) != len(embedding) {
			skipped++
			continue
		}
		score := cosineSimilarity(embedding, chunk.Embedding)
		if score < threshold {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Chunk:      *chunk,
			Similarity: score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	if skipped > 0 {
		// Expected after an embedding model upgrade until the corpus is
		// re-imported.
		logger.Debug("Skipped %d chunks with mismatched embedding dimensions", skipped)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i
	}
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	return results, nil
}

// vectorCandidateQuery builds the candidate row query for SearchVector.
// Candidates are corpus chunks plus, when the filter requests it,
// user-document chunks.
func vectorCandidateQuery(filter domain.QueryFilter) (string, []any) {
	base := `
		SELECT rowid, id, source, COALESCE(document_id, ''), content,
			chunk_index, total_chunks,
			COALESCE(collection, ''), COALESCE(sub_collection, ''),
			COALESCE(title, ''), COALESCE(title_pali, ''),
			embedding, created_at
		FROM chunks`

	var where []string
	var args []any

	switch {
	case filter.UserDocumentsOnly:
		where = append(where, "source = ?")
		args = append(args, string(domain.SourceUserDocument))
		if filter.DocumentID != "" {
			where = append(where, "document_id = ?")
			args = append(args, filter.DocumentID)
		}
	case filter.IncludeUserDocuments:
		// all sources
	default:
		where = append(where, "source = ?")
		args = append(args, string(domain.SourceCorpus))
	}

	if len(filter.Collections) > 0 && !filter.UserDocumentsOnly {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Collections)), ",")
		// User chunks carry no collection; keep them when included.
		clause := "(collection IN (" + placeholders + ")"
		if filter.IncludeUserDocuments {
			clause += " OR source = '" + string(domain.SourceUserDocument) + "'"
		}
		clause += ")"
		where = append(where, clause)
		for _, c := range filter.Collections {
			args = append(args, c)
		}
	}

	if len(where) > 0 {
		base += " WHERE " + strings.Join(where, " AND ")
	}
	return base, args
}

// AddChunk appends one chunk with its embedding. The embedding lives
// in the same row as the chunk, so the insert is atomic with respect
// to concurrent reads.
func (s *Store) AddChunk(ctx context.Context, chunk domain.Chunk) (string, error) {
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	if chunk.Source == "" {
		chunk.Source = domain.SourceUserDocument
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (id, source, document_id, content, chunk_index, total_chunks,
			collection, sub_collection, title, title_pali, embedding, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, chunk.ID, string(chunk.Source), nullString(chunk.DocumentID), chunk.Content,
		chunk.ChunkIndex, chunk.TotalChunks,
		nullString(chunk.Collection), nullString(chunk.SubCollection),
		nullString(chunk.Title), nullString(chunk.TitlePali),
		float32SliceToBytes(chunk.Embedding), len(chunk.Embedding), chunk.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("saving chunk: %w", err)
	}
	return chunk.ID, nil
}

// SaveDocument stores or updates a user document record.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("saving document: %w", domain.ErrInvalidInput)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	var processedAt any
	if !doc.ProcessedAt.IsZero() {
		processedAt = doc.ProcessedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, type, size, chunk_count, status, error, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			size = excluded.size,
			chunk_count = excluded.chunk_count,
			status = excluded.status,
			error = excluded.error,
			processed_at = excluded.processed_at
	`, doc.ID, doc.Name, doc.Type, doc.Size, doc.ChunkCount,
		string(doc.Status), nullString(doc.Error), doc.CreatedAt, processedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a user document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, size, chunk_count, status, COALESCE(error, ''), created_at, processed_at
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// ListDocuments returns all user documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, size, chunk_count, status, COALESCE(error, ''), created_at, processed_at
		FROM documents ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document and all of its chunks in one
// transaction; a concurrent SearchVector observes either the full
// pre-delete or full post-delete state.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Stats returns chunk and document counts.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats

	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE source = ?", string(domain.SourceCorpus))
	if err := row.Scan(&stats.CorpusChunks); err != nil {
		return stats, fmt.Errorf("counting corpus chunks: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE source = ?", string(domain.SourceUserDocument))
	if err := row.Scan(&stats.UserChunks); err != nil {
		return stats, fmt.Errorf("counting user chunks: %w", err)
	}

	row = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents")
	if err := row.Scan(&stats.Documents); err != nil {
		return stats, fmt.Errorf("counting documents: %w", err)
	}

	return stats, nil
}

// ImportCorpusDB attaches a prebuilt corpus database (produced by the
// data preparation pipeline) and copies its chunks and embeddings into
// this store. Existing chunk IDs are kept, so re-importing is a no-op.
func (s *Store) ImportCorpusDB(ctx context.Context, path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("corpus database: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "ATTACH DATABASE ? AS corpus", path); err != nil {
		return 0, fmt.Errorf("attaching corpus database: %w", err)
	}
	defer s.db.ExecContext(ctx, "DETACH DATABASE corpus") //nolint:errcheck

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO chunks (id, source, content, chunk_index, total_chunks,
			collection, sub_collection, title, title_pali, embedding, dimensions, created_at)
		SELECT c.id, 'corpus', c.content, c.chunk_index, c.total_chunks,
			c.pitaka, c.nikaya, c.title_thai, c.title_pali,
			e.embedding, e.dimensions, CURRENT_TIMESTAMP
		FROM corpus.chunks c
		JOIN corpus.embeddings e ON e.chunk_id = c.id
	`)
	if err != nil {
		return 0, fmt.Errorf("copying corpus chunks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting imported chunks: %w", err)
	}
	return int(n), nil
}

// ==================== Model Catalog ====================

// modelCatalog implements driven.ModelCatalog.
type modelCatalog struct {
	store *Store
}

// Save stores or updates a descriptor. Loaded state is runtime-only
// and never persisted.
func (c *modelCatalog) Save(ctx context.Context, desc domain.ModelDescriptor) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO models (id, kind, ram_cost_mb, storage_path, installed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			ram_cost_mb = excluded.ram_cost_mb,
			storage_path = excluded.storage_path,
			installed = excluded.installed
	`, desc.ID, string(desc.Kind), desc.RAMCostMB,
		nullString(desc.StoragePath), boolToInt(desc.Installed))
	if err != nil {
		return fmt.Errorf("saving model: %w", err)
	}
	return nil
}

// Get retrieves a descriptor by ID.
func (c *modelCatalog) Get(ctx context.Context, id string) (*domain.ModelDescriptor, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, kind, ram_cost_mb, COALESCE(storage_path, ''), installed
		FROM models WHERE id = ?
	`, id)

	var desc domain.ModelDescriptor
	var kind string
	var installed int
	if err := row.Scan(&desc.ID, &kind, &desc.RAMCostMB, &desc.StoragePath, &installed); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning model: %w", err)
	}
	desc.Kind = domain.ModelKind(kind)
	desc.Installed = installed != 0
	return &desc, nil
}

// List returns all catalogued descriptors.
func (c *modelCatalog) List(ctx context.Context) ([]domain.ModelDescriptor, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, kind, ram_cost_mb, COALESCE(storage_path, ''), installed
		FROM models ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying models: %w", err)
	}
	defer rows.Close()

	var descs []domain.ModelDescriptor //nolint:prealloc // size unknown from query
	for rows.Next() {
		var desc domain.ModelDescriptor
		var kind string
		var installed int
		if err := rows.Scan(&desc.ID, &kind, &desc.RAMCostMB, &desc.StoragePath, &installed); err != nil {
			return nil, fmt.Errorf("scanning model: %w", err)
		}
		desc.Kind = domain.ModelKind(kind)
		desc.Installed = installed != 0
		descs = append(descs, desc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating models: %w", err)
	}
	return descs, nil
}

// Delete removes a descriptor.
func (c *modelCatalog) Delete(ctx context.Context, id string) error {
	_, err := c.store.db.ExecContext(ctx, "DELETE FROM models WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting model: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

// scanChunk scans one chunk row including its rowid.
func scanChunk(sc scanner, rowid *int64) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var source string
	var embeddingBlob []byte
	var createdAt sql.NullTime

	if err := sc.Scan(rowid, &chunk.ID, &source, &chunk.DocumentID, &chunk.Content,
		&chunk.ChunkIndex, &chunk.TotalChunks,
		&chunk.Collection, &chunk.SubCollection,
		&chunk.Title, &chunk.TitlePali,
		&embeddingBlob, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Source = domain.ChunkSource(source)
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	if createdAt.Valid {
		chunk.CreatedAt = createdAt.Time
	}
	return &chunk, nil
}

// scanDocument scans one document from a QueryRow result.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var createdAt, processedAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Type, &doc.Size, &doc.ChunkCount,
		&status, &doc.Error, &createdAt, &processedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if processedAt.Valid {
		doc.ProcessedAt = processedAt.Time
	}
	return &doc, nil
}

// scanDocumentRows scans one document from a Query result.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var createdAt, processedAt sql.NullTime
	if err := rows.Scan(&doc.ID, &doc.Name, &doc.Type, &doc.Size, &doc.ChunkCount,
		&status, &doc.Error, &createdAt, &processedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if processedAt.Valid {
		doc.ProcessedAt = processedAt.Time
	}
	return &doc, nil
}

// termFrequencyScore sums per-term occurrence counts normalized by
// content length in runes.
func termFrequencyScore(content string, terms []string) float64 {
	contentLower := strings.ToLower(content)
	length := len([]rune(contentLower))
	if length == 0 {
		return 0
	}
	var count int
	for _, term := range terms {
		count += strings.Count(contentLower, strings.ToLower(term))
	}
	return float64(count) / float64(length)
}

// cosineSimilarity returns the cosine of the angle between a and b,
// clamped to [0,1]. Both vectors must have the same length.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// float32SliceToBytes converts a []float32 to a little-endian byte
// slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// nullString returns nil for empty strings so they store as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
