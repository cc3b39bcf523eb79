// Package store owns the persisted country table and the singleton refresh
// metadata row. It is the sole mutation path for both, which is what enforces
// the case-insensitive uniqueness and metadata-consistency invariants.
//
// Stores are pure I/O: classification of failures into domain errors and all
// orchestration (validation, logging, best-effort follow-ups) belongs to the
// service layer. Stores return pkg/platform/sentinel errors for factual states.
package store

import (
	"context"

	"atlas/internal/country/models"
)

// SortKey enumerates the supported orderings for Query.
type SortKey string

const (
	SortNameAsc        SortKey = "name_asc"
	SortNameDesc       SortKey = "name_desc"
	SortGDPAsc         SortKey = "gdp_asc"
	SortGDPDesc        SortKey = "gdp_desc"
	SortPopulationAsc  SortKey = "population_asc"
	SortPopulationDesc SortKey = "population_desc"
)

// ParseSort maps a query-string sort value to a SortKey. Unrecognized values
// fall back to name ascending silently.
func ParseSort(s string) SortKey {
	switch SortKey(s) {
	case SortNameAsc, SortNameDesc, SortGDPAsc, SortGDPDesc, SortPopulationAsc, SortPopulationDesc:
		return SortKey(s)
	default:
		return SortNameAsc
	}
}

// Filter narrows and orders a Query. Empty filter fields match everything;
// both filters are case-insensitive exact matches combined with AND.
type Filter struct {
	Region   string
	Currency string
	Sort     SortKey
}

// GDPEntry is one row of the top-countries ranking fed to the summary renderer.
type GDPEntry struct {
	Name         string
	EstimatedGDP float64
}

// Store is the persistence contract for country records and refresh metadata.
type Store interface {
	// UpsertAll upserts the batch inside one transaction, keyed by
	// case-insensitive name, then recomputes the metadata row. The whole batch
	// commits or rolls back atomically.
	UpsertAll(ctx context.Context, records []*models.Country) (inserted, updated int, err error)

	// Query returns records matching the filter in the requested order. GDP
	// sorts place records with null estimated_gdp last.
	Query(ctx context.Context, f Filter) ([]*models.Country, error)

	// GetByName looks up one record case-insensitively.
	// Returns sentinel.ErrNotFound when absent.
	GetByName(ctx context.Context, name string) (*models.Country, error)

	// Delete removes one record case-insensitively.
	// Returns sentinel.ErrNotFound when no row matched. Callers recount
	// metadata afterwards via RecountMetadata.
	Delete(ctx context.Context, name string) error

	// RecountMetadata recomputes total_countries from a fresh count without
	// touching last_refreshed_at.
	RecountMetadata(ctx context.Context) error

	// Status returns the singleton metadata row, or the zero state when no
	// refresh has ever run.
	Status(ctx context.Context) (*models.RefreshStatus, error)

	// TopByGDP returns up to limit records with non-null estimated_gdp,
	// descending.
	TopByGDP(ctx context.Context, limit int) ([]GDPEntry, error)
}
