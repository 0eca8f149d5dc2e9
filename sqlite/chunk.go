package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fwojciec/opra"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ opra.ChunkService = (*ChunkService)(nil)

// ChunkService implements opra.ChunkService using SQLite.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

// CreateChunks stores the chunks in a single transaction.
func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*opra.Chunk) error {
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, ordinance_id, chunk_index, section_number, section_title, content,
			embedding, start_char, end_char, token_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		id := uuid.New().String()
		if _, err := stmt.ExecContext(ctx, id, c.OrdinanceID, c.Index, c.SectionNumber, c.SectionTitle,
			c.Content, encodeEmbedding(c.Embedding), c.StartChar, c.EndChar, c.TokenCount); err != nil {
			if isUniqueViolation(err) {
				return opra.Errorf(opra.ECONFLICT, "chunk %d of ordinance already exists", c.Index)
			}
			return err
		}
		c.ID = id
	}

	return tx.Commit()
}

// FindChunks retrieves chunks matching the filter ordered by chunk index.
func (s *ChunkService) FindChunks(ctx context.Context, filter opra.ChunkFilter) ([]*opra.Chunk, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, ordinance_id, chunk_index, section_number, section_title, content,
		embedding, start_char, end_char, token_count FROM chunks WHERE 1=1`)

	if filter.OrdinanceID != nil {
		query.WriteString(" AND ordinance_id = ?")
		args = append(args, *filter.OrdinanceID)
	}

	query.WriteString(" ORDER BY ordinance_id, chunk_index ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*opra.Chunk
	for rows.Next() {
		var c opra.Chunk
		var embedding []byte
		if err := rows.Scan(&c.ID, &c.OrdinanceID, &c.Index, &c.SectionNumber, &c.SectionTitle,
			&c.Content, &embedding, &c.StartChar, &c.EndChar, &c.TokenCount); err != nil {
			return nil, err
		}
		if c.Embedding, err = decodeEmbedding(embedding); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}

	return chunks, rows.Err()
}

// CountChunks returns the number of chunks stored for an ordinance.
func (s *ChunkService) CountChunks(ctx context.Context, ordinanceID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE ordinance_id = ?", ordinanceID).Scan(&n)
	return n, err
}

// DeleteChunksByOrdinance removes all chunks for an ordinance.
func (s *ChunkService) DeleteChunksByOrdinance(ctx context.Context, ordinanceID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE ordinance_id = ?", ordinanceID)
	return err
}

// Compile-time interface verification.
var _ opra.Retriever = (*Retriever)(nil)

// Retriever implements opra.Retriever by scanning stored embeddings and
// computing cosine similarity in process. It suits the corpus sizes a
// single municipality database holds.
type Retriever struct {
	db       *DB
	embedder opra.Embedder
}

// NewRetriever creates a new Retriever.
func NewRetriever(db *DB, embedder opra.Embedder) *Retriever {
	return &Retriever{db: db, embedder: embedder}
}

// Search embeds the query and ranks stored chunks by cosine similarity.
func (r *Retriever) Search(ctx context.Context, query string, opts opra.SearchOptions) ([]opra.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, opra.Errorf(opra.EINVALID, "search query required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = opra.DefaultSearchLimit
	}

	vec, err := r.embedder.Embed(ctx, opra.QueryText(query))
	if err != nil {
		return nil, err
	}

	sqlQuery := `SELECT id, ordinance_id, content, section_number, section_title, embedding
		FROM chunks WHERE embedding IS NOT NULL`
	var args []any
	if opts.OrdinanceID != "" {
		sqlQuery += " AND ordinance_id = ?"
		args = append(args, opts.OrdinanceID)
	}
	sqlQuery += " ORDER BY ordinance_id, chunk_index"

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []opra.SearchResult
	for rows.Next() {
		var res opra.SearchResult
		var blob []byte
		if err := rows.Scan(&res.ChunkID, &res.OrdinanceID, &res.Content, &res.SectionNumber,
			&res.SectionTitle, &blob); err != nil {
			return nil, err
		}
		emb, err := decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		res.Similarity = opra.CosineSimilarity(vec, emb)
		if res.Similarity > opts.Threshold {
			results = append(results, res)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// encodeEmbedding packs a vector as little-endian float32 values.
func encodeEmbedding(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

// decodeEmbedding unpacks a vector written by encodeEmbedding.
func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("corrupt embedding: %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
