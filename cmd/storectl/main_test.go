package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProductsCommand(t *testing.T) {
	var gotQuery, gotMerchant, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotMerchant = r.Header.Get("X-Merchant-ID")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{{"id": "p1", "sku": "TEE-1", "name": "Basic tee", "base_price": 19.99, "stock": 4, "is_active": true}},
			"total": 7,
		})
	}))
	defer srv.Close()

	out, err := run(t, "--api", srv.URL, "--token", "tok", "--merchant", "m9", "products", "--search", "tee", "--page-size", "1")
	require.NoError(t, err)

	assert.Equal(t, "page=1&page_size=1&search=tee", gotQuery)
	assert.Equal(t, "m9", gotMerchant)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Contains(t, out, "TEE-1")
	assert.Contains(t, out, "19.99")
	assert.Contains(t, out, "1 of 7")
}

func TestRoutesCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/docs", r.URL.Path)
		assert.Equal(t, "/api/v1/orders", r.URL.Query().Get("prefix"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"routes": []map[string]interface{}{
				{"method": "GET", "path": "/api/v1/orders", "auth_required": true, "description": "Own orders"},
				{"method": "PUT", "path": "/api/v1/orders/{id}/status", "auth_required": true, "permission": "orders:manage"},
			},
			"count": 2,
		})
	}))
	defer srv.Close()

	out, err := run(t, "--api", srv.URL, "routes", "--prefix", "/api/v1/orders")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in")
	assert.Contains(t, out, "orders:manage")
}

func TestProductsCommand_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":"system_busy","message":"busy"}}`))
	}))
	defer srv.Close()

	_, err := run(t, "--api", srv.URL, "products")
	assert.ErrorContains(t, err, "503")
}
