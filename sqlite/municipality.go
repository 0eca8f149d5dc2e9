package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/opra"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ opra.MunicipalityService = (*MunicipalityService)(nil)

// MunicipalityService implements opra.MunicipalityService using SQLite.
type MunicipalityService struct {
	db *DB
}

// NewMunicipalityService creates a new MunicipalityService.
func NewMunicipalityService(db *DB) *MunicipalityService {
	return &MunicipalityService{db: db}
}

// CreateMunicipality creates a new municipality.
func (s *MunicipalityService) CreateMunicipality(ctx context.Context, m *opra.Municipality) error {
	if err := m.Validate(); err != nil {
		return err
	}

	m.ID = uuid.New().String()
	if m.State == "" {
		m.State = opra.DefaultState
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO municipalities (id, name, county, state, website_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.County, m.State, m.WebsiteURL, formatTime(m.CreatedAt), formatTime(m.UpdatedAt))

	return err
}

// FindMunicipalityByID retrieves a municipality by ID.
func (s *MunicipalityService) FindMunicipalityByID(ctx context.Context, id string) (*opra.Municipality, error) {
	var m opra.Municipality
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, county, state, website_url, created_at, updated_at
		FROM municipalities
		WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.County, &m.State, &m.WebsiteURL, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, opra.Errorf(opra.ENOTFOUND, "municipality not found")
	}
	if err != nil {
		return nil, err
	}

	if m.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &m, nil
}

// FindMunicipalities retrieves municipalities with their ordinance counts.
func (s *MunicipalityService) FindMunicipalities(ctx context.Context, filter opra.MunicipalityFilter) ([]*opra.MunicipalitySummary, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT m.id, m.name, m.county, m.state, m.website_url, m.created_at, m.updated_at,
			COUNT(o.id), MAX(o.created_at)
		FROM municipalities m
		LEFT JOIN ordinances o ON o.municipality_id = m.id
		WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND m.id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND m.name = ? COLLATE NOCASE")
		args = append(args, *filter.Name)
	}
	if filter.County != nil {
		query.WriteString(" AND m.county = ? COLLATE NOCASE")
		args = append(args, *filter.County)
	}
	if filter.Search != nil && *filter.Search != "" {
		query.WriteString(" AND (m.name LIKE ? OR m.county LIKE ?)")
		pattern := "%" + *filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	query.WriteString(" GROUP BY m.id")

	if filter.Status != nil {
		switch *filter.Status {
		case opra.StatusHasOrdinance:
			query.WriteString(" HAVING COUNT(o.id) > 0")
		case opra.StatusNoOrdinance:
			query.WriteString(" HAVING COUNT(o.id) = 0 AND m.website_url != ''")
		case opra.StatusNotScraped:
			query.WriteString(" HAVING COUNT(o.id) = 0 AND m.website_url = ''")
		default:
			return nil, opra.Errorf(opra.EINVALID, "invalid ordinance status %q", *filter.Status)
		}
	}

	order := "DESC"
	if filter.Ascending {
		order = "ASC"
	}
	switch filter.SortBy {
	case opra.SortByCounty:
		fmt.Fprintf(&query, " ORDER BY m.county COLLATE NOCASE %s, m.name COLLATE NOCASE ASC", order)
	case opra.SortByUpdatedAt:
		fmt.Fprintf(&query, " ORDER BY m.updated_at %s", order)
	case opra.SortByName, "":
		fmt.Fprintf(&query, " ORDER BY m.name COLLATE NOCASE %s", order)
	default:
		return nil, opra.Errorf(opra.EINVALID, "invalid sort %q", filter.SortBy)
	}

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*opra.MunicipalitySummary
	for rows.Next() {
		var sum opra.MunicipalitySummary
		var createdAt, updatedAt string
		var lastUpdate sql.NullString

		if err := rows.Scan(&sum.ID, &sum.Name, &sum.County, &sum.State, &sum.WebsiteURL,
			&createdAt, &updatedAt, &sum.OrdinanceCount, &lastUpdate); err != nil {
			return nil, err
		}

		if sum.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if sum.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		if lastUpdate.Valid {
			t, err := parseRFC3339(lastUpdate.String, "last ordinance update")
			if err != nil {
				return nil, err
			}
			sum.LastOrdinanceUpdate = &t
		}
		sum.Status = ordinanceStatus(sum.OrdinanceCount, sum.WebsiteURL)

		out = append(out, &sum)
	}

	return out, rows.Err()
}

func ordinanceStatus(count int, websiteURL string) opra.OrdinanceStatus {
	switch {
	case count > 0:
		return opra.StatusHasOrdinance
	case websiteURL != "":
		return opra.StatusNoOrdinance
	default:
		return opra.StatusNotScraped
	}
}

// ResetMunicipality removes the municipality's ordinances, chunks and
// custodians in one transaction.
func (s *MunicipalityService) ResetMunicipality(ctx context.Context, id string) (*opra.ResetResult, error) {
	if _, err := s.FindMunicipalityByID(ctx, id); err != nil {
		return nil, err
	}

	var requests int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM requests WHERE municipality_id = ?", id).Scan(&requests); err != nil {
		return nil, err
	}
	if requests > 0 {
		return nil, opra.Errorf(opra.ECONFLICT, "cannot reset municipality with existing OPRA requests")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var result opra.ResetResult
	steps := []struct {
		query string
		count *int
	}{
		{"DELETE FROM chunks WHERE ordinance_id IN (SELECT id FROM ordinances WHERE municipality_id = ?)", &result.ChunksDeleted},
		{"DELETE FROM ordinances WHERE municipality_id = ?", &result.OrdinancesDeleted},
		{"DELETE FROM custodians WHERE municipality_id = ?", &result.CustodiansDeleted},
	}
	for _, step := range steps {
		res, err := tx.ExecContext(ctx, step.query, id)
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		*step.count = int(n)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE municipalities SET updated_at = ? WHERE id = ?",
		formatTime(time.Now()), id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &result, nil
}
