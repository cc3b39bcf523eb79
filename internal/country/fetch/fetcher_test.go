package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "atlas/pkg/domain-errors"
)

func TestCountries(t *testing.T) {
	t.Run("decodes well-formed payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Write([]byte(`[
				{"name":"Testland","capital":"Testville","region":"Testia","population":1000000,
				 "flag":"https://flags.example/tst.svg","currencies":[{"code":"TST"}]},
				{"name":"Noland","population":500000,"currencies":[]}
			]`))
		}))
		defer srv.Close()

		client := New(srv.URL, srv.URL, 5*time.Second, nil)
		raw, err := client.Countries(context.Background())
		require.NoError(t, err)
		require.Len(t, raw, 2)
		assert.Equal(t, "Testland", raw[0].Name)
		assert.Equal(t, int64(1000000), raw[0].Population)
		require.Len(t, raw[0].Currencies, 1)
		assert.Equal(t, "TST", raw[0].Currencies[0].Code)
		assert.Empty(t, raw[1].Currencies)
	})

	t.Run("non-2xx status is upstream unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := New(srv.URL, srv.URL, 5*time.Second, nil)
		_, err := client.Countries(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("malformed body is upstream unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"an array"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, srv.URL, 5*time.Second, nil)
		_, err := client.Countries(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("unreachable host is upstream unavailable", func(t *testing.T) {
		client := New("http://127.0.0.1:1", "http://127.0.0.1:1", time.Second, nil)
		_, err := client.Countries(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestRates(t *testing.T) {
	t.Run("decodes the rate table", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result":"success","rates":{"TST":10,"KES":129.5}}`))
		}))
		defer srv.Close()

		client := New(srv.URL, srv.URL, 5*time.Second, nil)
		rates, err := client.Rates(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 10.0, rates["TST"])
		assert.Equal(t, 129.5, rates["KES"])
	})

	t.Run("empty rate table is upstream unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result":"success","rates":{}}`))
		}))
		defer srv.Close()

		client := New(srv.URL, srv.URL, 5*time.Second, nil)
		_, err := client.Rates(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("timeout is upstream unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := New(srv.URL, srv.URL, 50*time.Millisecond, nil)
		_, err := client.Rates(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
