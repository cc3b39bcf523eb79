// Package transform joins the two raw datasets into normalized country records.
// The join is pure given a rand source, which keeps the synthetic GDP draw
// deterministic under test.
package transform

import (
	"math/rand/v2"
	"strings"
	"time"

	"atlas/internal/country/models"
)

// Source supplies the uniform draw behind the estimated-GDP multiplier.
// Production uses math/rand; tests pin a fixed value.
type Source interface {
	Float64() float64
}

// NewSource returns a time-seeded rand source.
func NewSource() Source {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
}

const (
	multiplierMin = 1000.0
	multiplierMax = 2000.0
)

// Merge produces one normalized record per raw country, resolving the primary
// currency code against the rate table.
//
// Resolution rules:
//   - no currency listed: estimated_gdp = 0, exchange_rate = nil
//   - code listed but absent from rates: both stay nil (still persisted)
//   - code resolvable: exchange_rate set, estimated_gdp = population x U[1000,2000) / rate
//
// Estimated GDP is a deliberately synthetic economic proxy, not a real
// statistic; the randomized multiplier makes it non-deterministic by design.
func Merge(raw []models.RawCountry, rates models.RateTable, src Source) []*models.Country {
	now := time.Now().UTC()
	out := make([]*models.Country, 0, len(raw))

	for _, rc := range raw {
		c := &models.Country{
			Name:            rc.Name,
			Population:      rc.Population,
			Capital:         optional(rc.Capital),
			Region:          optional(rc.Region),
			FlagURL:         optional(rc.Flag),
			LastRefreshedAt: now,
		}

		code := primaryCurrency(rc.Currencies)
		if code == "" {
			zero := 0.0
			c.EstimatedGDP = &zero
			out = append(out, c)
			continue
		}
		c.CurrencyCode = &code

		rate, ok := rates[code]
		if !ok || rate <= 0 {
			// Unresolved: record is valid, rate and GDP stay null.
			out = append(out, c)
			continue
		}

		multiplier := multiplierMin + src.Float64()*(multiplierMax-multiplierMin)
		gdp := float64(rc.Population) * multiplier / rate
		c.ExchangeRate = &rate
		c.EstimatedGDP = &gdp
		out = append(out, c)
	}

	return out
}

// primaryCurrency returns the first listed currency code, or "" when the
// country lists none.
func primaryCurrency(currencies []models.RawCurrency) string {
	for _, cur := range currencies {
		if code := strings.TrimSpace(cur.Code); code != "" {
			return code
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
