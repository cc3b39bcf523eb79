package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"atlas/internal/country/models"
	"atlas/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store used by handler and service tests: a real
// implementation of the contract, not a mock. It mirrors the Postgres
// semantics including case-insensitive keying, batch atomicity, and
// nulls-last GDP ordering.
type MemoryStore struct {
	mu sync.RWMutex

	// keyed by lowercased name; records keep their original-case name
	records map[string]*models.Country
	nextID  int64

	total       int
	refreshedAt *time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: map[string]*models.Country{}, nextID: 1}
}

func (s *MemoryStore) UpsertAll(ctx context.Context, records []*models.Country) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var inserted, updated int
	for _, record := range records {
		key := strings.ToLower(record.Name)
		if existing, ok := s.records[key]; ok {
			id, createdAt := existing.ID, existing.CreatedAt
			clone := *record
			clone.ID = id
			clone.CreatedAt = createdAt
			clone.LastRefreshedAt = now
			// Name keeps the stored casing; only mutable fields change.
			clone.Name = existing.Name
			s.records[key] = &clone
			updated++
			continue
		}
		clone := *record
		clone.ID = s.nextID
		s.nextID++
		clone.CreatedAt = now
		clone.LastRefreshedAt = now
		s.records[key] = &clone
		inserted++
	}

	s.total = len(s.records)
	s.refreshedAt = &now
	return inserted, updated, nil
}

func (s *MemoryStore) Query(ctx context.Context, f Filter) ([]*models.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Country
	for _, record := range s.records {
		if f.Region != "" && (record.Region == nil || !strings.EqualFold(*record.Region, f.Region)) {
			continue
		}
		if f.Currency != "" && (record.CurrencyCode == nil || !strings.EqualFold(*record.CurrencyCode, f.Currency)) {
			continue
		}
		clone := *record
		out = append(out, &clone)
	}

	sortCountries(out, f.Sort)
	return out, nil
}

func sortCountries(out []*models.Country, key SortKey) {
	byNameAsc := func(a, b *models.Country) bool { return a.Name < b.Name }

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case SortNameDesc:
			return a.Name > b.Name
		case SortPopulationAsc:
			if a.Population != b.Population {
				return a.Population < b.Population
			}
			return byNameAsc(a, b)
		case SortPopulationDesc:
			if a.Population != b.Population {
				return a.Population > b.Population
			}
			return byNameAsc(a, b)
		case SortGDPAsc:
			if less, decided := compareGDP(a, b, true); decided {
				return less
			}
			return byNameAsc(a, b)
		case SortGDPDesc:
			if less, decided := compareGDP(a, b, false); decided {
				return less
			}
			return byNameAsc(a, b)
		default:
			return byNameAsc(a, b)
		}
	})
}

// compareGDP orders by estimated_gdp with nulls last in either direction,
// matching the Postgres NULLS LAST clauses.
func compareGDP(a, b *models.Country, asc bool) (less, decided bool) {
	switch {
	case a.EstimatedGDP == nil && b.EstimatedGDP == nil:
		return false, false
	case a.EstimatedGDP == nil:
		return false, true
	case b.EstimatedGDP == nil:
		return true, true
	case *a.EstimatedGDP == *b.EstimatedGDP:
		return false, false
	case asc:
		return *a.EstimatedGDP < *b.EstimatedGDP, true
	default:
		return *a.EstimatedGDP > *b.EstimatedGDP, true
	}
}

func (s *MemoryStore) GetByName(ctx context.Context, name string) (*models.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[strings.ToLower(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := s.records[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

func (s *MemoryStore) RecountMetadata(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = len(s.records)
	return nil
}

func (s *MemoryStore) Status(ctx context.Context) (*models.RefreshStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &models.RefreshStatus{TotalCountries: s.total}
	if s.refreshedAt != nil {
		t := *s.refreshedAt
		status.LastRefreshedAt = &t
	}
	return status, nil
}

func (s *MemoryStore) TopByGDP(ctx context.Context, limit int) ([]GDPEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ranked []*models.Country
	for _, record := range s.records {
		if record.EstimatedGDP != nil {
			ranked = append(ranked, record)
		}
	}
	sortCountries(ranked, SortGDPDesc)

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]GDPEntry, 0, len(ranked))
	for _, record := range ranked {
		out = append(out, GDPEntry{Name: record.Name, EstimatedGDP: *record.EstimatedGDP})
	}
	return out, nil
}
