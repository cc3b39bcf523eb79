// Package fetch retrieves the two external datasets: country metadata from the
// REST Countries API and exchange rates from the open exchange-rate API. Every
// failure mode (network, non-2xx, undecodable body) is classified as an
// upstream-unavailable domain error naming the source, so handlers can map it
// to 503 instead of 500.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"atlas/internal/country/models"
	dErrors "atlas/pkg/domain-errors"
)

const (
	sourceCountries = "REST Countries API"
	sourceRates     = "exchange rate API"
)

// Client fetches both external datasets over a shared pooled HTTP client.
type Client struct {
	http         *http.Client
	countriesURL string
	ratesURL     string
	cache        *RatesCache
}

// New builds a fetch client. The timeout bounds each whole request including
// body read; cache may be nil when Redis is not configured.
func New(countriesURL, ratesURL string, timeout time.Duration, cache *RatesCache) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		http:         &http.Client{Transport: transport, Timeout: timeout},
		countriesURL: countriesURL,
		ratesURL:     ratesURL,
		cache:        cache,
	}
}

// Countries retrieves the raw country descriptors.
func (c *Client) Countries(ctx context.Context) ([]models.RawCountry, error) {
	var raw []models.RawCountry
	if err := c.getJSON(ctx, c.countriesURL, sourceCountries, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ratesEnvelope is the exchange API response shape; only the rates map is used.
type ratesEnvelope struct {
	Result string           `json:"result"`
	Rates  models.RateTable `json:"rates"`
}

// Rates retrieves the per-currency rate table, serving a cached payload
// while one is fresh. Cache failures degrade to a direct fetch.
func (c *Client) Rates(ctx context.Context) (models.RateTable, error) {
	if c.cache != nil {
		if rates, ok := c.cache.Get(ctx); ok {
			return rates, nil
		}
	}

	var envelope ratesEnvelope
	if err := c.getJSON(ctx, c.ratesURL, sourceRates, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Rates) == 0 {
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("could not fetch data from %s: empty rate table", sourceRates))
	}

	if c.cache != nil {
		c.cache.Put(ctx, envelope.Rates)
	}
	return envelope.Rates, nil
}

func (c *Client) getJSON(ctx context.Context, url, source string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable,
			fmt.Sprintf("could not fetch data from %s", source))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable,
			fmt.Sprintf("could not fetch data from %s", source))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("could not fetch data from %s: unexpected status %d", source, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable,
			fmt.Sprintf("could not fetch data from %s: malformed response", source))
	}
	return nil
}
