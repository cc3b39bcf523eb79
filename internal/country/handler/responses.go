package handler

import (
	"time"

	"atlas/internal/country/service"
)

// RefreshResponse is the HTTP response for POST /countries/refresh.
type RefreshResponse struct {
	Message         string     `json:"message"`
	TotalCountries  int        `json:"total_countries"`
	Inserted        int        `json:"inserted"`
	Updated         int        `json:"updated"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// FromRefreshResult converts a refresh outcome to its HTTP response.
func FromRefreshResult(result *service.RefreshResult) *RefreshResponse {
	return &RefreshResponse{
		Message:         "Countries refreshed successfully",
		TotalCountries:  result.TotalCountries,
		Inserted:        result.Inserted,
		Updated:         result.Updated,
		LastRefreshedAt: result.LastRefreshedAt,
	}
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// Descriptor is the static service descriptor served at /.
type Descriptor struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}
