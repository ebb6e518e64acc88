package products

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-admin/northwind-admin/internal/catalog/shared"
	"github.com/northwind-admin/northwind-admin/internal/platform/httpx"
)

// ============================================================================
// MOCK DEPENDENCIES
// ============================================================================

type mockRepository struct {
	products    map[int64]Product
	nextID      int64
	createError error
	updateError error
	lastFilters shared.ListFilters
}

func newMockRepository() *mockRepository {
	return &mockRepository{products: make(map[int64]Product), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	m.lastFilters = filters
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) Create(ctx context.Context, p Product) (Product, error) {
	if m.createError != nil {
		return Product{}, m.createError
	}
	p.ID = m.nextID
	p.UpdatedAt = time.Now()
	m.nextID++
	m.products[p.ID] = p
	return p, nil
}

func (m *mockRepository) Update(ctx context.Context, p Product) (Product, error) {
	if m.updateError != nil {
		return Product{}, m.updateError
	}
	if _, ok := m.products[p.ID]; !ok {
		return Product{}, shared.ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	delete(m.products, id)
	return p, nil
}

type recordingPublisher struct {
	events []ChangeEvent
	err    error
}

func (r *recordingPublisher) PublishProductChange(ctx context.Context, event ChangeEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chai() Product {
	return Product{
		Name:            "Chai",
		CategoryID:      1,
		SupplierID:      1,
		QuantityPerUnit: "10 boxes x 20 bags",
		UnitPrice:       18,
		UnitsInStock:    39,
		ReorderLevel:    10,
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateTrimsAndPublishes(t *testing.T) {
	repo := newMockRepository()
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, quietLogger())

	p := chai()
	p.Name = "  Chai  "
	p.ID = 99

	created, err := svc.Create(context.Background(), p, "admin@northwind.local")
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID, "client supplied id is ignored")
	assert.Equal(t, "Chai", created.Name)

	require.Len(t, pub.events, 1)
	assert.Equal(t, ActionCreated, pub.events[0].Action)
	assert.Equal(t, "admin@northwind.local", pub.events[0].Actor)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())

	p := chai()
	p.Name = " C "
	p.CategoryID = 0
	p.UnitPrice = -1

	_, err := svc.Create(context.Background(), p, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)

	var fields httpx.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "categoryId")
	assert.Contains(t, fields, "unitPrice")
	assert.NotContains(t, fields, "supplierId")
}

func TestCreateRejectsPricesTheColumnCannotHold(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())

	for price, want := range map[float64]string{
		0.001: "must have at most 2 decimal places",
		1e11:  "must be less than or equal to 9999999999.99",
	} {
		p := chai()
		p.UnitPrice = price

		_, err := svc.Create(context.Background(), p, "")
		var fields httpx.FieldErrors
		require.True(t, errors.As(err, &fields), "price %v", price)
		assert.Equal(t, want, fields["unitPrice"])
	}
}

func TestCreateMapsForeignKeyViolation(t *testing.T) {
	repo := newMockRepository()
	repo.createError = &pgconn.PgError{Code: "23503", ConstraintName: "products_supplier_id_fkey"}
	svc := NewService(repo, nil, quietLogger())

	_, err := svc.Create(context.Background(), chai(), "")
	var fields httpx.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "does not reference an existing supplier", fields["supplierId"])
}

func TestUpdateUsesPathID(t *testing.T) {
	repo := newMockRepository()
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, quietLogger())
	created, err := svc.Create(context.Background(), chai(), "")
	require.NoError(t, err)

	change := chai()
	change.ID = 12345
	change.UnitPrice = 19.5
	updated, err := svc.Update(context.Background(), created.ID, change, "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.InDelta(t, 19.5, updated.UnitPrice, 0.0001)
	assert.Equal(t, ActionUpdated, pub.events[len(pub.events)-1].Action)

	_, err = svc.Update(context.Background(), 777, chai(), "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeletePublishesDeletedProduct(t *testing.T) {
	repo := newMockRepository()
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := NewService(repo, pub, quietLogger())
	created, err := svc.Create(context.Background(), chai(), "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID, "ops"), "publisher failure must not fail the delete")
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, ActionDeleted, last.Action)
	assert.Equal(t, "Chai", last.Product.Name)

	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID, "ops"), shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), 0, "ops"), shared.ErrValidation)
}
