// Package service orchestrates the refresh pipeline and the read path. It owns
// the policy decisions: parallel fetches, validation skips, error
// classification, and the best-effort summary render.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"atlas/internal/country/metrics"
	"atlas/internal/country/models"
	"atlas/internal/country/store"
	"atlas/internal/country/transform"
	"atlas/internal/render"
	dErrors "atlas/pkg/domain-errors"
	"atlas/pkg/platform/sentinel"
)

const topCountriesLimit = 5

// Fetcher retrieves the two external datasets.
type Fetcher interface {
	Countries(ctx context.Context) ([]models.RawCountry, error)
	Rates(ctx context.Context) (models.RateTable, error)
}

// Renderer draws the post-refresh summary artifact.
type Renderer interface {
	Render(totalCountries int, top []render.Entry, refreshedAt time.Time) error
}

// Service wires the fetchers, transformer, store, and renderer.
type Service struct {
	fetcher  Fetcher
	store    store.Store
	renderer Renderer
	rand     transform.Source
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New constructs the country service. renderer may be nil to disable the
// summary artifact; metrics may be nil in tests.
func New(fetcher Fetcher, st store.Store, renderer Renderer, rand transform.Source, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		fetcher:  fetcher,
		store:    st,
		renderer: renderer,
		rand:     rand,
		logger:   logger,
		metrics:  m,
	}
}

// RefreshResult summarizes one successful refresh.
type RefreshResult struct {
	TotalCountries  int
	Inserted        int
	Updated         int
	LastRefreshedAt *time.Time
}

// Refresh runs the full pipeline: fetch both sources in parallel, join,
// validate, upsert transactionally, then render the summary best-effort.
func (s *Service) Refresh(ctx context.Context) (*RefreshResult, error) {
	raw, rates, err := s.fetchBoth(ctx)
	if err != nil {
		s.metrics.IncrementOutcome("upstream_unavailable")
		return nil, err
	}
	s.logger.InfoContext(ctx, "fetched external datasets",
		"countries", len(raw),
		"rates", len(rates),
	)

	records := transform.Merge(raw, rates, s.rand)

	valid := records[:0]
	skipped := 0
	for _, record := range records {
		fieldErrs, ok := models.Validate(record)
		if !ok {
			skipped++
			s.logger.WarnContext(ctx, "skipping invalid country record",
				"name", record.Name,
				"errors", fieldErrs,
			)
			continue
		}
		valid = append(valid, record)
	}
	s.metrics.AddSkipped(skipped)

	inserted, updated, err := s.store.UpsertAll(ctx, valid)
	if err != nil {
		s.metrics.IncrementOutcome("storage_error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist refreshed countries")
	}
	s.metrics.AddUpserts(inserted, updated)
	s.metrics.IncrementOutcome("success")

	status, err := s.store.Status(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read refresh status")
	}

	s.logger.InfoContext(ctx, "refresh complete",
		"total", status.TotalCountries,
		"inserted", inserted,
		"updated", updated,
		"skipped", skipped,
	)

	s.renderSummary(ctx, status)

	return &RefreshResult{
		TotalCountries:  status.TotalCountries,
		Inserted:        inserted,
		Updated:         updated,
		LastRefreshedAt: status.LastRefreshedAt,
	}, nil
}

// fetchBoth runs the two independent fetches concurrently so total latency is
// the max of the two calls; the first failure cancels the other.
func (s *Service) fetchBoth(ctx context.Context) ([]models.RawCountry, models.RateTable, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		raw   []models.RawCountry
		rates models.RateTable
	)

	g.Go(func() error {
		start := time.Now()
		countries, err := s.fetcher.Countries(ctx)
		s.metrics.ObserveFetchLatency("countries", time.Since(start))
		if err != nil {
			return err
		}
		raw = countries
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		table, err := s.fetcher.Rates(ctx)
		s.metrics.ObserveFetchLatency("rates", time.Since(start))
		if err != nil {
			return err
		}
		rates = table
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return raw, rates, nil
}

// renderSummary draws the artifact after a successful refresh. Failures are
// logged as a partial-success note and never propagate as the refresh's error.
func (s *Service) renderSummary(ctx context.Context, status *models.RefreshStatus) {
	if s.renderer == nil {
		return
	}

	top, err := s.store.TopByGDP(ctx, topCountriesLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "summary image skipped: top countries query failed", "error", err)
		return
	}

	entries := make([]render.Entry, 0, len(top))
	for _, e := range top {
		entries = append(entries, render.Entry{Name: e.Name, GDP: e.EstimatedGDP})
	}

	refreshedAt := time.Now().UTC()
	if status.LastRefreshedAt != nil {
		refreshedAt = *status.LastRefreshedAt
	}

	if err := s.renderer.Render(status.TotalCountries, entries, refreshedAt); err != nil {
		s.logger.WarnContext(ctx, "summary image generation failed", "error", err)
	}
}

// List returns stored records matching the filter.
func (s *Service) List(ctx context.Context, f store.Filter) ([]*models.Country, error) {
	out, err := s.store.Query(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query countries")
	}
	return out, nil
}

// Get looks up one record by case-insensitive name.
func (s *Service) Get(ctx context.Context, name string) (*models.Country, error) {
	record, err := s.store.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "country not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load country")
	}
	return record, nil
}

// Delete removes one record, then recounts metadata best-effort: a recount
// failure is logged, never surfaced, and the delete stands.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "country not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete country")
	}

	if err := s.store.RecountMetadata(ctx); err != nil {
		s.logger.WarnContext(ctx, "metadata recount after delete failed",
			"name", name,
			"error", err,
		)
	}
	return nil
}

// Status returns the singleton refresh metadata.
func (s *Service) Status(ctx context.Context) (*models.RefreshStatus, error) {
	status, err := s.store.Status(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read refresh status")
	}
	return status, nil
}
