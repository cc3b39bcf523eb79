//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"atlas/internal/country/models"
	"atlas/pkg/platform/sentinel"
	"atlas/pkg/testutil/containers"
)

// PostgresStoreSuite runs the store contract against a real Postgres instance.
type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	require.NoError(s.T(), s.store.InitSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	require.NoError(s.T(), s.pg.Truncate(context.Background()))
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) TestUpsertAllCaseInsensitive() {
	ctx := context.Background()

	inserted, updated, err := s.store.UpsertAll(ctx, []*models.Country{
		{Name: "Kenya", Population: 54_000_000, EstimatedGDP: f64Ptr(100)},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, inserted)
	assert.Equal(s.T(), 0, updated)

	inserted, updated, err = s.store.UpsertAll(ctx, []*models.Country{
		{Name: "KENYA", Population: 55_000_000, EstimatedGDP: f64Ptr(120)},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, inserted)
	assert.Equal(s.T(), 1, updated)

	all, err := s.store.Query(ctx, Filter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	assert.Equal(s.T(), int64(55_000_000), all[0].Population)

	status, err := s.store.Status(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, status.TotalCountries)
	require.NotNil(s.T(), status.LastRefreshedAt)
}

// TestUpsertAllConcurrentInsertReconciles commits a row through a separate
// connection, then upserts a batch carrying the same name in different casing.
// The conflicting record must reconcile as an update without aborting the
// transaction, and the rest of the batch must still land.
func (s *PostgresStoreSuite) TestUpsertAllConcurrentInsertReconciles() {
	ctx := context.Background()

	_, err := s.pg.DB.ExecContext(ctx, `
		INSERT INTO countries (name, population, last_refreshed_at)
		VALUES ('Kenya', 1, now())
	`)
	require.NoError(s.T(), err)

	inserted, updated, err := s.store.UpsertAll(ctx, []*models.Country{
		{Name: "Ghana", Population: 33_000_000},
		{Name: "KENYA", Population: 54_000_000, EstimatedGDP: f64Ptr(100)},
		{Name: "Nigeria", Population: 220_000_000},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, inserted)
	assert.Equal(s.T(), 1, updated)

	got, err := s.store.GetByName(ctx, "kenya")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Kenya", got.Name)
	assert.Equal(s.T(), int64(54_000_000), got.Population)

	status, err := s.store.Status(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, status.TotalCountries)
}

func (s *PostgresStoreSuite) TestQueryFiltersAndNullsLast() {
	ctx := context.Background()

	_, _, err := s.store.UpsertAll(ctx, []*models.Country{
		{Name: "Kenya", Population: 54_000_000, Region: strPtr("Africa"), CurrencyCode: strPtr("KES"), EstimatedGDP: f64Ptr(300)},
		{Name: "Nigeria", Population: 220_000_000, Region: strPtr("Africa"), CurrencyCode: strPtr("NGN"), EstimatedGDP: f64Ptr(900)},
		{Name: "Noland", Population: 500_000, Region: strPtr("Africa")},
		{Name: "Norway", Population: 5_500_000, Region: strPtr("Europe"), EstimatedGDP: f64Ptr(700)},
	})
	require.NoError(s.T(), err)

	out, err := s.store.Query(ctx, Filter{Region: "africa", Sort: SortGDPDesc})
	require.NoError(s.T(), err)
	require.Len(s.T(), out, 3)
	assert.Equal(s.T(), "Nigeria", out[0].Name)
	assert.Equal(s.T(), "Kenya", out[1].Name)
	assert.Equal(s.T(), "Noland", out[2].Name)

	out, err = s.store.Query(ctx, Filter{Currency: "kes"})
	require.NoError(s.T(), err)
	require.Len(s.T(), out, 1)
	assert.Equal(s.T(), "Kenya", out[0].Name)
}

func (s *PostgresStoreSuite) TestDeleteAndRecount() {
	ctx := context.Background()

	_, _, err := s.store.UpsertAll(ctx, []*models.Country{
		{Name: "Kenya", Population: 1},
	})
	require.NoError(s.T(), err)

	assert.ErrorIs(s.T(), s.store.Delete(ctx, "Atlantis"), sentinel.ErrNotFound)

	require.NoError(s.T(), s.store.Delete(ctx, "kenya"))
	require.NoError(s.T(), s.store.RecountMetadata(ctx))

	status, err := s.store.Status(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, status.TotalCountries)
}

func (s *PostgresStoreSuite) TestGetByName() {
	ctx := context.Background()

	_, _, err := s.store.UpsertAll(ctx, []*models.Country{
		{Name: "Kenya", Population: 1, Capital: strPtr("Nairobi")},
	})
	require.NoError(s.T(), err)

	got, err := s.store.GetByName(ctx, "kEnYa")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Kenya", got.Name)
	require.NotNil(s.T(), got.Capital)
	assert.Equal(s.T(), "Nairobi", *got.Capital)
	assert.Nil(s.T(), got.CurrencyCode)

	_, err = s.store.GetByName(ctx, "Atlantis")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestTopByGDP() {
	ctx := context.Background()

	_, _, err := s.store.UpsertAll(ctx, []*models.Country{
		{Name: "A", Population: 1, EstimatedGDP: f64Ptr(10)},
		{Name: "B", Population: 1, EstimatedGDP: f64Ptr(50)},
		{Name: "C", Population: 1},
	})
	require.NoError(s.T(), err)

	top, err := s.store.TopByGDP(ctx, 5)
	require.NoError(s.T(), err)
	require.Len(s.T(), top, 2)
	assert.Equal(s.T(), "B", top[0].Name)
}
