package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/fwojciec/opra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

var _ opra.ChunkService = (*ChunkService)(nil)

// ChunkService implements opra.ChunkService on a pgvector table.
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = uuid.New().String()
		if _, err := stmt.ExecContext(ctx, ids[i], c.OrdinanceID, c.Index, c.SectionNumber, c.SectionTitle,
			c.Content, vectorArg(c.Embedding), c.StartChar, c.EndChar, c.TokenCount); err != nil {
			if isUniqueViolation(err) {
				return opra.Errorf(opra.ECONFLICT, "chunk %d of ordinance already exists", c.Index)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for i, c := range chunks {
		c.ID = ids[i]
	}
	return nil
}

// FindChunks retrieves chunks matching the filter ordered by chunk index.
func (s *ChunkService) FindChunks(ctx context.Context, filter opra.ChunkFilter) ([]*opra.Chunk, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, ordinance_id, chunk_index, section_number, section_title, content,
		embedding, start_char, end_char, token_count FROM chunks WHERE 1=1`)
	if filter.OrdinanceID != nil {
		args = append(args, *filter.OrdinanceID)
		query.WriteString(" AND ordinance_id = " + placeholder(len(args)))
	}
	query.WriteString(" ORDER BY ordinance_id, chunk_index ASC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query.WriteString(" LIMIT " + placeholder(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query.WriteString(" OFFSET " + placeholder(len(args)))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*opra.Chunk
	for rows.Next() {
		var c opra.Chunk
		var emb *pgvector.Vector
		if err := rows.Scan(&c.ID, &c.OrdinanceID, &c.Index, &c.SectionNumber, &c.SectionTitle,
			&c.Content, &emb, &c.StartChar, &c.EndChar, &c.TokenCount); err != nil {
			return nil, err
		}
		if emb != nil {
			c.Embedding = emb.Slice()
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// CountChunks returns the number of chunks stored for an ordinance.
func (s *ChunkService) CountChunks(ctx context.Context, ordinanceID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE ordinance_id = $1", ordinanceID).Scan(&n)
	return n, err
}

// DeleteChunksByOrdinance removes all chunks for an ordinance.
func (s *ChunkService) DeleteChunksByOrdinance(ctx context.Context, ordinanceID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE ordinance_id = $1", ordinanceID)
	return err
}

var _ opra.Retriever = (*Retriever)(nil)

// Retriever implements opra.Retriever with the pgvector cosine distance
// operator.
type Retriever struct {
	db       *DB
	embedder opra.Embedder
}

// NewRetriever creates a new Retriever.
func NewRetriever(db *DB, embedder opra.Embedder) *Retriever {
	return &Retriever{db: db, embedder: embedder}
}

// Search embeds the query and returns the nearest chunks above the
// threshold.
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

	// Cosine distance is 1 - similarity.
	args := []any{pgvector.NewVector(vec), opts.Threshold, limit}
	sqlQuery := `SELECT id, ordinance_id, content, section_number, section_title,
			1 - (embedding <=> $1) AS similarity
		FROM chunks
		WHERE embedding IS NOT NULL AND 1 - (embedding <=> $1) > $2`
	if opts.OrdinanceID != "" {
		args = append(args, opts.OrdinanceID)
		sqlQuery += " AND ordinance_id = $4"
	}
	sqlQuery += " ORDER BY embedding <=> $1 LIMIT $3"

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []opra.SearchResult
	for rows.Next() {
		var res opra.SearchResult
		if err := rows.Scan(&res.ChunkID, &res.OrdinanceID, &res.Content, &res.SectionNumber,
			&res.SectionTitle, &res.Similarity); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// vectorArg maps an empty embedding to NULL.
func vectorArg(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
