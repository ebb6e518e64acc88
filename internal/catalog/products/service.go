package products

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/northwind-admin/northwind-admin/internal/catalog/shared"
	"github.com/northwind-admin/northwind-admin/internal/platform/httpx"
)

// ChangePublisher receives committed product mutations.
type ChangePublisher interface {
	PublishProductChange(ctx context.Context, event ChangeEvent) error
}

type Service struct {
	repo      Repository
	publisher ChangePublisher
	logger    *slog.Logger
	validator *validator.Validate
	now       func() time.Time
}

// NewService builds the product service. publisher may be nil.
func NewService(repo Repository, publisher ChangePublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: newValidator(),
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product, actor string) (Product, error) {
	product = normalize(product)
	product.ID = 0
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, translateWriteError(err)
	}
	s.publish(ctx, ActionCreated, created, actor)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, product Product, actor string) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	product = normalize(product)
	product.ID = id
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return Product{}, translateWriteError(err)
	}
	s.publish(ctx, ActionUpdated, updated, actor)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64, actor string) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, ActionDeleted, deleted, actor)
	return nil
}

// publish never fails the mutation; the audit trail is best effort.
func (s *Service) publish(ctx context.Context, action string, p Product, actor string) {
	if s.publisher == nil {
		return
	}
	event := ChangeEvent{Action: action, Product: p, Actor: actor, At: s.now().UTC()}
	if err := s.publisher.PublishProductChange(ctx, event); err != nil {
		s.logger.Warn("publish product change", slog.Any("error", err), slog.String("action", action), slog.Int64("product_id", p.ID))
	}
}

func translateWriteError(err error) error {
	if constraint, ok := shared.ForeignKeyConstraint(err); ok {
		switch constraint {
		case "products_category_id_fkey":
			return httpx.FieldErrors{"categoryId": "does not reference an existing category"}
		case "products_supplier_id_fkey":
			return httpx.FieldErrors{"supplierId": "does not reference an existing supplier"}
		}
		return fmt.Errorf("%w: %s", shared.ErrValidation, constraint)
	}
	if shared.IsUniqueViolation(err) {
		return fmt.Errorf("product: %w", shared.ErrDuplicate)
	}
	return err
}
