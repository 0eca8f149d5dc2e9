package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/opra"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ opra.OrdinanceService = (*OrdinanceService)(nil)

// OrdinanceService implements opra.OrdinanceService using SQLite.
type OrdinanceService struct {
	db *DB
}

// NewOrdinanceService creates a new OrdinanceService.
func NewOrdinanceService(db *DB) *OrdinanceService {
	return &OrdinanceService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

const ordinanceColumns = "id, municipality_id, title, code, full_text, source_url, effective_date, confidence, content_hash, created_at"

// CreateOrdinance creates a new ordinance.
func (s *OrdinanceService) CreateOrdinance(ctx context.Context, o *opra.Ordinance) error {
	if err := o.Validate(); err != nil {
		return err
	}

	o.ID = uuid.New().String()
	o.CreatedAt = time.Now().UTC()
	o.ContentHash = hashContent(o.FullText)
	if o.Confidence == "" {
		o.Confidence = opra.ConfidenceLow
	}

	var effective sql.NullString
	if o.EffectiveDate != nil {
		effective = sql.NullString{String: formatTime(*o.EffectiveDate), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ordinances (`+ordinanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.MunicipalityID, o.Title, o.Code, o.FullText, o.SourceURL, effective,
		string(o.Confidence), o.ContentHash, formatTime(o.CreatedAt))

	return err
}

// FindOrdinanceByID retrieves an ordinance by ID.
func (s *OrdinanceService) FindOrdinanceByID(ctx context.Context, id string) (*opra.Ordinance, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ordinanceColumns+" FROM ordinances WHERE id = ?", id)

	o, err := scanOrdinance(row)
	if err == sql.ErrNoRows {
		return nil, opra.Errorf(opra.ENOTFOUND, "ordinance not found")
	}
	return o, err
}

// FindOrdinances retrieves ordinances matching the filter, newest first.
func (s *OrdinanceService) FindOrdinances(ctx context.Context, filter opra.OrdinanceFilter) ([]*opra.Ordinance, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + ordinanceColumns + " FROM ordinances WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.MunicipalityID != nil {
		query.WriteString(" AND municipality_id = ?")
		args = append(args, *filter.MunicipalityID)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ordinances []*opra.Ordinance
	for rows.Next() {
		o, err := scanOrdinance(rows)
		if err != nil {
			return nil, err
		}
		ordinances = append(ordinances, o)
	}

	return ordinances, rows.Err()
}

// DeleteOrdinance permanently removes an ordinance and its chunks.
func (s *OrdinanceService) DeleteOrdinance(ctx context.Context, id string) error {
	var requests int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM requests WHERE ordinance_id = ?", id).Scan(&requests); err != nil {
		return err
	}
	if requests > 0 {
		return opra.Errorf(opra.ECONFLICT, "ordinance is referenced by OPRA requests")
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM ordinances WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return opra.Errorf(opra.ENOTFOUND, "ordinance not found")
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrdinance(row scanner) (*opra.Ordinance, error) {
	var o opra.Ordinance
	var effective sql.NullString
	var confidence, createdAt string

	if err := row.Scan(&o.ID, &o.MunicipalityID, &o.Title, &o.Code, &o.FullText, &o.SourceURL,
		&effective, &confidence, &o.ContentHash, &createdAt); err != nil {
		return nil, err
	}

	o.Confidence = opra.Confidence(confidence)

	var err error
	if o.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if effective.Valid {
		t, err := parseRFC3339(effective.String, "effective_date")
		if err != nil {
			return nil, err
		}
		o.EffectiveDate = &t
	}

	return &o, nil
}
