package opra

import (
	"context"
	"time"
)

// DefaultState is the state every municipality belongs to unless told otherwise.
const DefaultState = "NJ"

// Municipality represents a local government whose ordinances are tracked.
type Municipality struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	County     string    `json:"county"`
	State      string    `json:"state"`
	WebsiteURL string    `json:"websiteUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate returns an error if the municipality contains invalid fields.
func (m *Municipality) Validate() error {
	if m.Name == "" {
		return Errorf(EINVALID, "municipality name required")
	}
	return nil
}

// OrdinanceStatus summarizes what discovery has produced for a municipality.
type OrdinanceStatus string

// OrdinanceStatus values used by MunicipalityFilter and MunicipalitySummary.
const (
	StatusHasOrdinance OrdinanceStatus = "has_ordinance"
	StatusNoOrdinance  OrdinanceStatus = "no_ordinance"
	StatusNotScraped   OrdinanceStatus = "not_scraped"
)

// MunicipalitySummary is a municipality with its ordinance bookkeeping.
type MunicipalitySummary struct {
	Municipality
	OrdinanceCount      int             `json:"ordinanceCount"`
	LastOrdinanceUpdate *time.Time      `json:"lastOrdinanceUpdate,omitempty"`
	Status              OrdinanceStatus `json:"status"`
}

// ResetResult reports what a municipality reset removed.
type ResetResult struct {
	ChunksDeleted     int `json:"chunksDeleted"`
	OrdinancesDeleted int `json:"ordinancesDeleted"`
	CustodiansDeleted int `json:"custodiansDeleted"`
}

// MunicipalityService represents a service for managing municipalities.
type MunicipalityService interface {
	// CreateMunicipality creates a new municipality.
	CreateMunicipality(ctx context.Context, m *Municipality) error

	// FindMunicipalityByID retrieves a municipality by ID.
	// Returns ENOTFOUND if municipality does not exist.
	FindMunicipalityByID(ctx context.Context, id string) (*Municipality, error)

	// FindMunicipalities retrieves municipalities matching the filter.
	FindMunicipalities(ctx context.Context, filter MunicipalityFilter) ([]*MunicipalitySummary, error)

	// ResetMunicipality deletes every ordinance, chunk and custodian that
	// belongs to the municipality, keeping the municipality itself.
	// Returns ENOTFOUND if municipality does not exist and ECONFLICT if any
	// records request still references it.
	ResetMunicipality(ctx context.Context, id string) (*ResetResult, error)
}

// MunicipalitySort is the sort key for FindMunicipalities.
type MunicipalitySort string

// MunicipalitySort values.
const (
	SortByName      MunicipalitySort = "name"
	SortByCounty    MunicipalitySort = "county"
	SortByUpdatedAt MunicipalitySort = "updated_at"
)

// MunicipalityFilter represents a filter for FindMunicipalities.
type MunicipalityFilter struct {
	ID     *string `json:"id"`
	Name   *string `json:"name"`
	County *string `json:"county"`

	// Search matches name or county, case-insensitively.
	Search *string          `json:"search"`
	Status *OrdinanceStatus `json:"status"`

	SortBy    MunicipalitySort `json:"sortBy"`
	Ascending bool             `json:"ascending"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
