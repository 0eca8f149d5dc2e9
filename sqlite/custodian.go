package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/opra"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ opra.CustodianService = (*CustodianService)(nil)

// CustodianService implements opra.CustodianService using SQLite.
type CustodianService struct {
	db *DB
}

// NewCustodianService creates a new CustodianService.
func NewCustodianService(db *DB) *CustodianService {
	return &CustodianService{db: db}
}

const custodianColumns = "id, municipality_id, name, title, email, phone, address, active"

// CreateCustodian creates a new custodian.
func (s *CustodianService) CreateCustodian(ctx context.Context, c *opra.Custodian) error {
	if err := c.Validate(); err != nil {
		return err
	}

	c.ID = uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custodians (`+custodianColumns+`, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.MunicipalityID, c.Name, c.Title, c.Email, c.Phone, c.Address, c.Active,
		formatTime(time.Now()))

	return err
}

// FindCustodianByID retrieves a custodian by ID.
func (s *CustodianService) FindCustodianByID(ctx context.Context, id string) (*opra.Custodian, error) {
	var c opra.Custodian
	err := s.db.QueryRowContext(ctx, "SELECT "+custodianColumns+" FROM custodians WHERE id = ?", id).
		Scan(&c.ID, &c.MunicipalityID, &c.Name, &c.Title, &c.Email, &c.Phone, &c.Address, &c.Active)

	if err == sql.ErrNoRows {
		return nil, opra.Errorf(opra.ENOTFOUND, "custodian not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCustodians retrieves custodians matching the filter, newest first.
func (s *CustodianService) FindCustodians(ctx context.Context, filter opra.CustodianFilter) ([]*opra.Custodian, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + custodianColumns + " FROM custodians WHERE 1=1")

	if filter.MunicipalityID != nil {
		query.WriteString(" AND municipality_id = ?")
		args = append(args, *filter.MunicipalityID)
	}
	if filter.Active != nil {
		query.WriteString(" AND active = ?")
		args = append(args, *filter.Active)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, 0)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var custodians []*opra.Custodian
	for rows.Next() {
		var c opra.Custodian
		if err := rows.Scan(&c.ID, &c.MunicipalityID, &c.Name, &c.Title, &c.Email, &c.Phone,
			&c.Address, &c.Active); err != nil {
			return nil, err
		}
		custodians = append(custodians, &c)
	}

	return custodians, rows.Err()
}
