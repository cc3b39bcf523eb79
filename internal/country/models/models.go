// Package models holds the country cache domain types: the persisted record,
// the singleton refresh metadata, and the typed raw payloads of both external
// sources. Optional fields are pointers so they marshal as JSON null, matching
// the persisted NULL semantics.
package models

import (
	"strings"
	"time"
)

// Country is one cached country record, uniquely keyed by case-insensitive name.
type Country struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Capital         *string    `json:"capital"`
	Region          *string    `json:"region"`
	Population      int64      `json:"population"`
	CurrencyCode    *string    `json:"currency_code"`
	ExchangeRate    *float64   `json:"exchange_rate"`
	EstimatedGDP    *float64   `json:"estimated_gdp"`
	FlagURL         *string    `json:"flag_url"`
	LastRefreshedAt time.Time  `json:"last_refreshed_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// RefreshStatus is the singleton metadata row tracking aggregate refresh state.
// LastRefreshedAt is nil until the first successful refresh.
type RefreshStatus struct {
	TotalCountries  int        `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// RawCountry is the REST Countries v2 payload shape. Decoding into this type at
// the fetch boundary fails fast on shape mismatches instead of letting
// undefined fields drift into the transform.
type RawCountry struct {
	Name       string        `json:"name"`
	Capital    string        `json:"capital"`
	Region     string        `json:"region"`
	Population int64         `json:"population"`
	Flag       string        `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`
}

// RawCurrency is one entry of a country's currency list. Only the code is used;
// the first listed currency is treated as primary.
type RawCurrency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RateTable maps a currency code to its rate in units of that currency per one
// unit of the reference currency.
type RateTable map[string]float64

// FieldErrors maps a field name to the reason it failed validation.
type FieldErrors map[string]string

// Validate checks the minimal structural constraints a record must satisfy
// before persistence. Returns the per-field reasons and whether the record is
// valid. Invalid records are skipped during a refresh, never fatal.
func Validate(c *Country) (FieldErrors, bool) {
	errs := FieldErrors{}

	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "is required and must be a non-empty string"
	}
	if c.Population < 0 {
		errs["population"] = "must be a non-negative number"
	}
	if c.CurrencyCode != nil && strings.TrimSpace(*c.CurrencyCode) == "" {
		errs["currency_code"] = "must be a non-empty string when provided"
	}

	return errs, len(errs) == 0
}
