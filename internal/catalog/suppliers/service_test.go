package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-admin/northwind-admin/internal/catalog/shared"
)

type fakeRepo struct {
	items       []Supplier
	lastFilters shared.ListFilters
	getCalls    int
}

func (f *fakeRepo) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	f.lastFilters = filters
	return f.items, len(f.items), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	f.getCalls++
	for _, s := range f.items {
		if s.ID == id {
			return s, nil
		}
	}
	return Supplier{}, shared.ErrNotFound
}

func TestServiceGetRejectsInvalidID(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Zero(t, repo.getCalls)
}

func TestServiceListNormalizesFilters(t *testing.T) {
	repo := &fakeRepo{items: []Supplier{{ID: 1, CompanyName: "Exotic Liquids"}}}
	svc := NewService(repo)

	items, total, err := svc.List(context.Background(), shared.ListFilters{Page: -4, SortDir: "up"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Exotic Liquids", items[0].CompanyName)
	assert.Equal(t, 1, repo.lastFilters.Page)
	assert.Equal(t, shared.SortAsc, repo.lastFilters.SortDir)
}
