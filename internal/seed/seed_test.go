package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/pkg/apiclient"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
warehouses:
  - code: MAIN
    name: Main warehouse
categories:
  - name: Apparel
    children:
      - name: Shirts
      - name: Hats
products:
  - sku: TEE-1
    name: Basic tee
    category: Shirts
    base_price: 19.99
    stock: 40
    reorder_point: 5
  - sku: CAP-1
    name: Cap
    category: Hats
    base_price: 12.5
`

type fakeStore struct {
	mu             sync.Mutex
	warehouses     map[string]bool
	skus           map[string]map[string]interface{}
	categories     []map[string]interface{}
	categoryLists  int
	authorizations []string
}

func newFakeServer(t *testing.T) (*httptest.Server, *fakeStore) {
	t.Helper()
	st := &fakeStore{warehouses: map[string]bool{}, skus: map[string]map[string]interface{}{}}
	mux := http.NewServeMux()

	write := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	conflict := map[string]interface{}{"error": map[string]string{"code": "conflict", "message": "exists"}}

	mux.HandleFunc("POST /api/v1/warehouses", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		st.mu.Lock()
		defer st.mu.Unlock()
		st.authorizations = append(st.authorizations, r.Header.Get("Authorization"))
		code := body["code"].(string)
		if st.warehouses[code] {
			write(w, http.StatusConflict, conflict)
			return
		}
		st.warehouses[code] = true
		write(w, http.StatusCreated, map[string]string{"id": "wh-" + code})
	})
	mux.HandleFunc("GET /api/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.categoryLists++
		write(w, http.StatusOK, map[string]interface{}{"items": st.categories, "total": len(st.categories)})
	})
	mux.HandleFunc("POST /api/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		st.mu.Lock()
		defer st.mu.Unlock()
		id := fmt.Sprintf("cat-%d", len(st.categories)+1)
		st.categories = append(st.categories, map[string]interface{}{"id": id, "name": body["name"], "parent_id": body["parent_id"]})
		write(w, http.StatusCreated, map[string]string{"id": id})
	})
	mux.HandleFunc("POST /api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		st.mu.Lock()
		defer st.mu.Unlock()
		sku := body["sku"].(string)
		if _, ok := st.skus[sku]; ok {
			write(w, http.StatusConflict, conflict)
			return
		}
		st.skus[sku] = body
		write(w, http.StatusCreated, map[string]string{"id": "p-" + sku})
	})
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "password1" {
			write(w, http.StatusUnauthorized, map[string]interface{}{"error": map[string]string{"code": "invalid_credentials"}})
			return
		}
		write(w, http.StatusOK, map[string]string{"token": "tok-" + body["email"]})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

func newSeeder(t *testing.T, baseURL string) *Seeder {
	t.Helper()
	c, err := apiclient.New(baseURL, apiclient.WithBearerToken(func() string { return "admin-token" }), apiclient.WithValidation(nil))
	require.NoError(t, err)
	return NewSeeder(c, apiclient.NewQueryClient(c, time.Minute), logger.NewNop())
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Categories, 1)
	assert.Len(t, f.Categories[0].Children, 2)
	assert.Equal(t, 19.99, f.Products[0].BasePrice)
	assert.Equal(t, "MAIN", f.Warehouses[0].Code)

	_, err = Parse([]byte("products: [unterminated"))
	assert.Error(t, err)
}

func TestRun_CreatesThenSkips(t *testing.T) {
	srv, st := newFakeServer(t)
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	ctx := context.Background()

	res, err := newSeeder(t, srv.URL).Run(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"warehouses": 1, "categories": 3, "products": 2}, res.Created)
	assert.Empty(t, res.Skipped)

	assert.Equal(t, "cat-2", st.skus["TEE-1"]["category_id"])
	assert.Equal(t, "cat-3", st.skus["CAP-1"]["category_id"])
	assert.Equal(t, "cat-1", st.categories[1]["parent_id"])
	assert.Equal(t, []string{"Bearer admin-token"}, st.authorizations)

	res, err = newSeeder(t, srv.URL).Run(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, map[string]int{"warehouses": 1, "categories": 3, "products": 2}, res.Skipped)
}

func TestRun_CachesCategoryLookups(t *testing.T) {
	srv, st := newFakeServer(t)
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	s := newSeeder(t, srv.URL)

	_, err = s.Run(context.Background(), f)
	require.NoError(t, err)
	lists := st.categoryLists

	_, err = s.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, lists, st.categoryLists, "nothing created on the second run, so every lookup is a cache hit")
}

func TestRun_UnknownCategory(t *testing.T) {
	srv, _ := newFakeServer(t)
	f := &File{Products: []Product{{SKU: "X-1", Name: "X", Category: "Nope"}}}

	_, err := newSeeder(t, srv.URL).Run(context.Background(), f)
	assert.ErrorContains(t, err, `unknown category "Nope"`)
}

func TestRun_RequestValidation(t *testing.T) {
	srv, _ := newFakeServer(t)
	f := &File{Products: []Product{{Name: "no sku"}}}

	_, err := newSeeder(t, srv.URL).Run(context.Background(), f)
	assert.ErrorIs(t, err, apiclient.ErrRequestValidation)
}

func TestLogin(t *testing.T) {
	srv, _ := newFakeServer(t)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	tok, err := Login(context.Background(), c, "a@b.c", "password1")
	require.NoError(t, err)
	assert.Equal(t, "tok-a@b.c", tok)

	_, err = Login(context.Background(), c, "a@b.c", "wrong")
	var httpErr *apiclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}
