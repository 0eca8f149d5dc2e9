package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/opra"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ opra.RequestService = (*RequestService)(nil)

// maxNumberAttempts bounds retries when a generated request number collides.
const maxNumberAttempts = 5

// RequestService implements opra.RequestService using SQLite.
type RequestService struct {
	db *DB
}

// NewRequestService creates a new RequestService.
func NewRequestService(db *DB) *RequestService {
	return &RequestService{db: db}
}

const requestColumns = "id, municipality_id, ordinance_id, custodian_id, number, status, categories, sections, text, pdf_url, created_at, updated_at"

// CreateRequest creates a new request in DRAFT status.
func (s *RequestService) CreateRequest(ctx context.Context, r *opra.Request) error {
	r.Status = opra.RequestDraft
	if err := r.Validate(); err != nil {
		return err
	}

	categories, sections, err := marshalRequestContent(r)
	if err != nil {
		return err
	}

	r.ID = uuid.New().String()
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	generated := r.Number == ""
	for attempt := 1; ; attempt++ {
		if generated {
			r.Number = opra.NewRequestNumber(now)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO requests (`+requestColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.MunicipalityID, r.OrdinanceID, r.CustodianID, r.Number, string(r.Status),
			categories, sections, r.Text, r.PDFURL, formatTime(r.CreatedAt), formatTime(r.UpdatedAt))

		if !isUniqueViolation(err) {
			return err
		}
		if !generated || attempt == maxNumberAttempts {
			return opra.Errorf(opra.ECONFLICT, "request number %s already exists", r.Number)
		}
	}
}

// FindRequestByID retrieves a request by ID.
func (s *RequestService) FindRequestByID(ctx context.Context, id string) (*opra.Request, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM requests WHERE id = ?", id)

	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, opra.Errorf(opra.ENOTFOUND, "request not found")
	}
	return r, err
}

// FindRequests retrieves requests matching the filter, newest first.
func (s *RequestService) FindRequests(ctx context.Context, filter opra.RequestFilter) ([]*opra.Request, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + requestColumns + " FROM requests WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.MunicipalityID != nil {
		query.WriteString(" AND municipality_id = ?")
		args = append(args, *filter.MunicipalityID)
	}
	if filter.OrdinanceID != nil {
		query.WriteString(" AND ordinance_id = ?")
		args = append(args, *filter.OrdinanceID)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*opra.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}

	return requests, rows.Err()
}

// UpdateRequest applies upd under the request lifecycle rules.
func (s *RequestService) UpdateRequest(ctx context.Context, id string, upd opra.RequestUpdate) (*opra.Request, error) {
	r, err := s.FindRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	read := r.Status

	if err := r.Apply(upd); err != nil {
		return nil, err
	}
	r.UpdatedAt = time.Now().UTC()

	categories, sections, err := marshalRequestContent(r)
	if err != nil {
		return nil, err
	}

	// The status read above must still hold, or another writer got there first.
	result, err := s.db.ExecContext(ctx, `
		UPDATE requests
		SET status = ?, categories = ?, sections = ?, text = ?, pdf_url = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(r.Status), categories, sections, r.Text, r.PDFURL, formatTime(r.UpdatedAt), id, string(read))
	if err != nil {
		return nil, err
	}
	if err := requireChanged(result); err != nil {
		return nil, err
	}

	return r, nil
}

// DeleteRequest permanently removes a draft request.
func (s *RequestService) DeleteRequest(ctx context.Context, id string) error {
	r, err := s.FindRequestByID(ctx, id)
	if err != nil {
		return err
	}
	if !r.Deletable() {
		return opra.Errorf(opra.ECONFLICT, "can only delete draft requests")
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM requests WHERE id = ? AND status = ?", id, string(opra.RequestDraft))
	if err != nil {
		return err
	}
	return requireChanged(result)
}

// requireChanged returns ECONFLICT when a guarded write matched no row.
func requireChanged(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return opra.Errorf(opra.ECONFLICT, "request was changed by another operation")
	}
	return nil
}

func marshalRequestContent(r *opra.Request) (categories, sections string, err error) {
	cats := r.Categories
	if cats == nil {
		cats = []string{}
	}
	secs := r.Sections
	if secs == nil {
		secs = []opra.RequestSection{}
	}

	c, err := json.Marshal(cats)
	if err != nil {
		return "", "", fmt.Errorf("marshal categories: %w", err)
	}
	s, err := json.Marshal(secs)
	if err != nil {
		return "", "", fmt.Errorf("marshal sections: %w", err)
	}
	return string(c), string(s), nil
}

func scanRequest(row scanner) (*opra.Request, error) {
	var r opra.Request
	var status, categories, sections, createdAt, updatedAt string

	if err := row.Scan(&r.ID, &r.MunicipalityID, &r.OrdinanceID, &r.CustodianID, &r.Number, &status,
		&categories, &sections, &r.Text, &r.PDFURL, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	r.Status = opra.RequestStatus(status)
	if err := json.Unmarshal([]byte(categories), &r.Categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	if err := json.Unmarshal([]byte(sections), &r.Sections); err != nil {
		return nil, fmt.Errorf("failed to parse sections: %w", err)
	}

	var err error
	if r.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &r, nil
}
