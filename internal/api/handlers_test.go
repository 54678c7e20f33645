package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/amazon-top-products/internal/models"
	"github.com/maltedev/amazon-top-products/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	NewHandlers(st, slog.Default()).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func seedProduct(t *testing.T, st store.Store, asin string, rank int, price float64) {
	t.Helper()
	rec := models.NewProductRecord(asin, rank)
	rec.Title = "Product " + asin
	rec.Price = price
	require.NoError(t, st.Upsert(context.Background(), rec))
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestListProducts(t *testing.T) {
	st := store.NewMemory()
	seedProduct(t, st, "B0BBB22222", 2, 20)
	seedProduct(t, st, "B0AAA11111", 1, 10)
	srv := newTestServer(t, st)

	var body listResponse
	status := getJSON(t, srv.URL+"/api/products", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Products, 2)
	assert.Equal(t, "B0AAA11111", body.Products[0].ASIN)
	assert.Equal(t, "B0BBB22222", body.Products[1].ASIN)
}

func TestListProductsEmpty(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	var body listResponse
	status := getJSON(t, srv.URL+"/api/products", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Zero(t, body.Count)
	assert.NotNil(t, body.Products)
}

func TestGetProduct(t *testing.T) {
	st := store.NewMemory()
	seedProduct(t, st, "B0AAA11111", 1, 10)
	srv := newTestServer(t, st)

	var body productResponse
	status := getJSON(t, srv.URL+"/api/products/B0AAA11111", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	require.NotNil(t, body.Product)
	assert.Equal(t, "B0AAA11111", body.Product.ASIN)
	assert.InDelta(t, 10.0, body.Product.Price, 0.001)
}

func TestGetProductNotFound(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	var body map[string]any
	status := getJSON(t, srv.URL+"/api/products/B0MISSING1", &body)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Product not found", body["error"])
}

func TestGetStatsRounding(t *testing.T) {
	st := store.NewMemory()
	seedProduct(t, st, "B0AAA11111", 1, 10.00)
	seedProduct(t, st, "B0BBB22222", 2, 10.01)
	seedProduct(t, st, "B0CCC33333", 3, 10.01)
	srv := newTestServer(t, st)

	var body statsResponse
	status := getJSON(t, srv.URL+"/api/stats", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Stats.TotalProducts)
	// 30.02 / 3 = 10.00666... rounded to two decimals.
	assert.InDelta(t, 10.01, body.Stats.AveragePrice, 0.0001)
}

// errStore fails every operation so handler error paths can be exercised.
type errStore struct{}

func (errStore) EnsureSchema(context.Context) error { return nil }
func (errStore) Upsert(context.Context, *models.ProductRecord) error {
	return errors.New("database down")
}
func (errStore) List(context.Context) ([]*models.ProductRecord, error) {
	return nil, errors.New("database down")
}
func (errStore) Get(context.Context, string) (*models.ProductRecord, error) {
	return nil, errors.New("database down")
}
func (errStore) Stats(context.Context) (*store.Stats, error) {
	return nil, errors.New("database down")
}

func TestStoreFailuresReturn500(t *testing.T) {
	srv := newTestServer(t, errStore{})

	for _, path := range []string{"/api/products", "/api/products/B0AAA11111", "/api/stats"} {
		var body map[string]any
		status := getJSON(t, srv.URL+path, &body)
		assert.Equal(t, http.StatusInternalServerError, status, path)
		assert.Equal(t, false, body["success"], path)
	}
}
