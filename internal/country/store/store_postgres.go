package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"atlas/internal/country/models"
	"atlas/pkg/platform/sentinel"
)

// PostgresStore persists country records and refresh metadata in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InitSchema creates both tables, their indexes, and the seed metadata row.
// Idempotent; runs at startup.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			capital TEXT,
			region TEXT,
			population BIGINT NOT NULL,
			currency_code TEXT,
			exchange_rate DOUBLE PRECISION,
			estimated_gdp DOUBLE PRECISION,
			flag_url TEXT,
			last_refreshed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS countries_name_lower_idx ON countries (LOWER(name))`,
		`CREATE INDEX IF NOT EXISTS countries_region_idx ON countries (region)`,
		`CREATE INDEX IF NOT EXISTS countries_currency_idx ON countries (currency_code)`,
		`CREATE TABLE IF NOT EXISTS refresh_metadata (
			id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			total_countries INTEGER NOT NULL DEFAULT 0,
			last_refreshed_at TIMESTAMPTZ
		)`,
		`INSERT INTO refresh_metadata (id) VALUES (1) ON CONFLICT (id) DO NOTHING`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

const countryColumns = `id, name, capital, region, population, currency_code,
	exchange_rate, estimated_gdp, flag_url, last_refreshed_at, created_at`

func (s *PostgresStore) UpsertAll(ctx context.Context, records []*models.Country) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var inserted, updated int
	for _, record := range records {
		wasInsert, err := upsertOne(ctx, tx, record)
		if err != nil {
			return 0, 0, err
		}
		if wasInsert {
			inserted++
		} else {
			updated++
		}
	}

	// The count and the metadata overwrite ride the same transaction as the
	// upserts, so readers never observe a total that disagrees with the table.
	_, err = tx.ExecContext(ctx, `
		UPDATE refresh_metadata
		SET total_countries = (SELECT COUNT(*) FROM countries),
		    last_refreshed_at = now()
		WHERE id = 1
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("update refresh metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit upsert tx: %w", err)
	}
	return inserted, updated, nil
}

// upsertOne inserts the record or, when any casing of the name already holds a
// row, updates that row's mutable fields. The conflict target is the
// LOWER(name) unique index, so a row committed by a concurrent refresh after
// this transaction began reconciles as an update instead of aborting the tx
// the way a raised unique violation would. xmax = 0 only on freshly inserted
// rows; the stored name keeps its original casing.
func upsertOne(ctx context.Context, tx *sql.Tx, record *models.Country) (wasInsert bool, err error) {
	err = tx.QueryRowContext(ctx, `
		INSERT INTO countries
			(name, capital, region, population, currency_code, exchange_rate, estimated_gdp, flag_url, last_refreshed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (LOWER(name)) DO UPDATE
		SET capital = EXCLUDED.capital,
		    region = EXCLUDED.region,
		    population = EXCLUDED.population,
		    currency_code = EXCLUDED.currency_code,
		    exchange_rate = EXCLUDED.exchange_rate,
		    estimated_gdp = EXCLUDED.estimated_gdp,
		    flag_url = EXCLUDED.flag_url,
		    last_refreshed_at = now()
		RETURNING (xmax = 0)
	`,
		record.Name,
		record.Capital,
		record.Region,
		record.Population,
		record.CurrencyCode,
		record.ExchangeRate,
		record.EstimatedGDP,
		record.FlagURL,
	).Scan(&wasInsert)
	if err != nil {
		return false, fmt.Errorf("upsert country %q: %w", record.Name, err)
	}
	return wasInsert, nil
}

func (s *PostgresStore) Query(ctx context.Context, f Filter) ([]*models.Country, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + countryColumns + ` FROM countries WHERE 1=1`)
	var args []any

	if f.Region != "" {
		args = append(args, f.Region)
		fmt.Fprintf(&sb, ` AND LOWER(region) = LOWER($%d)`, len(args))
	}
	if f.Currency != "" {
		args = append(args, f.Currency)
		fmt.Fprintf(&sb, ` AND LOWER(currency_code) = LOWER($%d)`, len(args))
	}

	switch f.Sort {
	case SortGDPDesc:
		sb.WriteString(` ORDER BY estimated_gdp DESC NULLS LAST, name ASC`)
	case SortGDPAsc:
		sb.WriteString(` ORDER BY estimated_gdp ASC NULLS LAST, name ASC`)
	case SortPopulationDesc:
		sb.WriteString(` ORDER BY population DESC, name ASC`)
	case SortPopulationAsc:
		sb.WriteString(` ORDER BY population ASC, name ASC`)
	case SortNameDesc:
		sb.WriteString(` ORDER BY name DESC`)
	default:
		sb.WriteString(` ORDER BY name ASC`)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	var out []*models.Country
	for rows.Next() {
		record, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetByName(ctx context.Context, name string) (*models.Country, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+countryColumns+` FROM countries WHERE LOWER(name) = LOWER($1)`, name)
	record, err := scanCountry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM countries WHERE LOWER(name) = LOWER($1)`, name)
	if err != nil {
		return fmt.Errorf("delete country %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete country %q: %w", name, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RecountMetadata(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE refresh_metadata
		SET total_countries = (SELECT COUNT(*) FROM countries)
		WHERE id = 1
	`)
	if err != nil {
		return fmt.Errorf("recount metadata: %w", err)
	}
	return nil
}

func (s *PostgresStore) Status(ctx context.Context) (*models.RefreshStatus, error) {
	var (
		total       int
		refreshedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT total_countries, last_refreshed_at FROM refresh_metadata WHERE id = 1`,
	).Scan(&total, &refreshedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.RefreshStatus{}, nil
		}
		return nil, fmt.Errorf("get refresh status: %w", err)
	}

	status := &models.RefreshStatus{TotalCountries: total}
	if refreshedAt.Valid {
		t := refreshedAt.Time
		status.LastRefreshedAt = &t
	}
	return status, nil
}

func (s *PostgresStore) TopByGDP(ctx context.Context, limit int) ([]GDPEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, estimated_gdp
		FROM countries
		WHERE estimated_gdp IS NOT NULL
		ORDER BY estimated_gdp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top countries by gdp: %w", err)
	}
	defer rows.Close()

	var out []GDPEntry
	for rows.Next() {
		var entry GDPEntry
		if err := rows.Scan(&entry.Name, &entry.EstimatedGDP); err != nil {
			return nil, fmt.Errorf("top countries by gdp: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top countries by gdp: %w", err)
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCountry(sc scanner) (*models.Country, error) {
	var (
		record   models.Country
		capital  sql.NullString
		region   sql.NullString
		currency sql.NullString
		rate     sql.NullFloat64
		gdp      sql.NullFloat64
		flag     sql.NullString
	)
	err := sc.Scan(
		&record.ID,
		&record.Name,
		&capital,
		&region,
		&record.Population,
		&currency,
		&rate,
		&gdp,
		&flag,
		&record.LastRefreshedAt,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan country: %w", err)
	}

	record.Capital = nullableString(capital)
	record.Region = nullableString(region)
	record.CurrencyCode = nullableString(currency)
	record.ExchangeRate = nullableFloat(rate)
	record.EstimatedGDP = nullableFloat(gdp)
	record.FlagURL = nullableString(flag)
	return &record, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
