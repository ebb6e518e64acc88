package categories

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-admin/northwind-admin/internal/catalog/shared"
)

type fakeRepo struct {
	items       []Category
	lastFilters shared.ListFilters
}

func (f *fakeRepo) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	f.lastFilters = filters
	return f.items, len(f.items), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Category, error) {
	for _, c := range f.items {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, shared.ErrNotFound
}

func newTestRouter(repo Repository) http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo))
	r := chi.NewRouter()
	r.Route("/categories", h.MountRoutes)
	return r
}

func TestListReturnsAllCategoriesInOrder(t *testing.T) {
	repo := &fakeRepo{items: []Category{{ID: 2, Name: "Condiments"}, {ID: 1, Name: "Beverages"}}}
	router := newTestRouter(repo)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []Category
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, repo.items, got)
	assert.Equal(t, 0, repo.lastFilters.Limit, "reference lists are unpaged by default")
}

func TestShowMissingCategory(t *testing.T) {
	router := newTestRouter(&fakeRepo{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/categories/42", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/categories/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
