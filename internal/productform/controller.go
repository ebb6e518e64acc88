// Package productform implements the product create/edit form: reference data
// loading, field validation, create or edit mode and the submit/delete flows.
package productform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/northwind-admin/northwind-admin/internal/catalogapi"
)

var (
	// ErrNotEditing is returned by Delete when there is no backing entity.
	ErrNotEditing = errors.New("productform: not in edit mode")
	// ErrClosed is returned once the controller lifetime has ended.
	ErrClosed = errors.New("productform: controller closed")
	// ErrAlreadyMounted is returned by a second Mount.
	ErrAlreadyMounted = errors.New("productform: already mounted")
	// ErrInvalidProductID is returned by Mount for a malformed productId.
	ErrInvalidProductID = errors.New("productform: invalid product id")
)

// Dependencies are the collaborators of a Controller.
type Dependencies struct {
	Products   ProductsService
	Categories CategoriesService
	Suppliers  SuppliersService
	Notifier   Notifier
	Navigator  Navigator
	Confirmer  Confirmer
	Logger     *slog.Logger
}

// Controller owns the state of one product form. All methods are safe for
// concurrent use.
type Controller struct {
	deps Dependencies

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	closed     bool
	mounted    bool
	mode       Mode
	form       *Form
	categories []catalogapi.Category
	suppliers  []catalogapi.Supplier
	errors     FieldErrors
}

// NewController creates a controller in create mode whose lifetime ends when
// ctx is done or Close is called.
func NewController(ctx context.Context, deps Dependencies) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	lifetime, cancel := context.WithCancel(ctx)
	c := &Controller{
		deps:   deps,
		ctx:    lifetime,
		cancel: cancel,
		mode:   CreateMode{},
		form:   NewProductForm(),
	}
	context.AfterFunc(lifetime, c.markClosed)
	return c
}

// Close ends the controller lifetime. Responses arriving afterwards are
// dropped.
func (c *Controller) Close() {
	c.markClosed()
	c.cancel()
}

func (c *Controller) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// callContext derives a context for one outgoing call that is cancelled by
// either ctx or the controller lifetime.
func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

// commit runs fn under the lock unless the controller is closed.
func (c *Controller) commit(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	fn()
	return true
}

// Mount loads the reference data and, when params carry a productId, the
// product to edit. A failed lookup notifies, navigates to the list view and
// returns the error; the controller stays in create mode.
func (c *Controller) Mount(ctx context.Context, params RouteParams) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.mounted:
		c.mu.Unlock()
		return ErrAlreadyMounted
	}
	c.mounted = true
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		_ = c.LoadCategories(ctx)
		return nil
	})
	g.Go(func() error {
		_ = c.LoadSuppliers(ctx)
		return nil
	})

	err := c.lookup(ctx, strings.TrimSpace(params.ProductID))
	_ = g.Wait()
	return err
}

func (c *Controller) lookup(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		err = fmt.Errorf("%w: %q", ErrInvalidProductID, raw)
	} else {
		callCtx, cancel := c.callContext(ctx)
		var product catalogapi.Product
		product, err = c.deps.Products.GetProduct(callCtx, id)
		cancel()
		if err == nil {
			if !c.commit(func() {
				c.mode = EditMode{Product: product}
				c.form.PatchProduct(product)
			}) {
				return ErrClosed
			}
			return nil
		}
	}

	c.deps.Logger.Warn("product lookup failed", slog.String("product_id", raw), slog.Any("error", err))
	c.commit(func() {
		c.deps.Notifier.Error(MsgProductNotFound)
		c.deps.Navigator.Navigate(ListView())
	})
	return fmt.Errorf("productform: load product %s: %w", raw, err)
}

// LoadCategories replaces the category list. Failures are logged and keep the
// previous list.
func (c *Controller) LoadCategories(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	list, err := c.deps.Categories.ListCategories(callCtx)
	if err != nil {
		c.deps.Logger.Warn("load categories failed", slog.Any("error", err))
		return err
	}
	if !c.commit(func() { c.categories = list }) {
		return ErrClosed
	}
	return nil
}

// LoadSuppliers replaces the supplier list. Failures are logged and keep the
// previous list.
func (c *Controller) LoadSuppliers(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	list, err := c.deps.Suppliers.ListSuppliers(callCtx)
	if err != nil {
		c.deps.Logger.Warn("load suppliers failed", slog.Any("error", err))
		return err
	}
	if !c.commit(func() { c.suppliers = list }) {
		return ErrClosed
	}
	return nil
}

// Submit validates the form and creates or updates the product depending on
// the mode.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	values, errs := c.form.coerce()
	mode := c.mode
	if len(errs) > 0 {
		c.errors = errs
		c.deps.Notifier.Error(MsgInvalidForm)
		c.mu.Unlock()
		return &ValidationError{Fields: errs}
	}
	c.errors = nil
	c.mu.Unlock()

	req := buildRequest(values, mode)
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	switch mode.(type) {
	case EditMode:
		updated, err := c.deps.Products.UpdateProduct(callCtx, req)
		if err != nil {
			c.fail("update product", MsgUpdateFailed, err)
			return fmt.Errorf("productform: update product %d: %w", req.ID, err)
		}
		if !c.commit(func() {
			c.mode = EditMode{Product: updated}
			c.form.PatchProduct(updated)
			c.deps.Notifier.Success(MsgProductUpdated)
		}) {
			return ErrClosed
		}
	default:
		created, err := c.deps.Products.AddProduct(callCtx, req)
		if err != nil {
			c.fail("add product", MsgAddFailed, err)
			return fmt.Errorf("productform: add product: %w", err)
		}
		if !c.commit(func() {
			c.deps.Notifier.Success(MsgProductAdded)
			c.deps.Navigator.Navigate(EditView(created.ID))
		}) {
			return ErrClosed
		}
	}
	return nil
}

// Delete asks for confirmation and deletes the backing entity. A declined
// confirmation is a no-op.
func (c *Controller) Delete(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	edit, ok := c.mode.(EditMode)
	c.mu.Unlock()
	if !ok {
		return ErrNotEditing
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	if !c.deps.Confirmer.Confirm(callCtx, MsgConfirmDelete) {
		return nil
	}
	if err := c.deps.Products.DeleteProduct(callCtx, edit.Product.ID); err != nil {
		c.fail("delete product", MsgDeleteFailed, err)
		return fmt.Errorf("productform: delete product %d: %w", edit.Product.ID, err)
	}
	if !c.commit(func() {
		c.deps.Notifier.Success(MsgProductDeleted)
		c.deps.Navigator.Navigate(ListView())
	}) {
		return ErrClosed
	}
	return nil
}

// fail reports a rejected mutation. Field problems returned by the API are
// kept as form errors; a validation problem without fields shows its detail.
func (c *Controller) fail(op, fallback string, err error) {
	c.deps.Logger.Error(op+" failed", slog.Any("error", err))
	message := fallback
	var apiErr *catalogapi.APIError
	if errors.As(err, &apiErr) && errors.Is(err, catalogapi.ErrValidation) && len(apiErr.Fields) == 0 && apiErr.Detail != "" {
		message = apiErr.Detail
	}
	c.commit(func() {
		if apiErr != nil && len(apiErr.Fields) > 0 {
			c.errors = make(FieldErrors, len(apiErr.Fields))
			for name, msg := range apiErr.Fields {
				c.errors[name] = msg
			}
		}
		c.deps.Notifier.Error(message)
	})
}

// Bind copies a posted HTML form into the form.
func (c *Controller) Bind(values url.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.form.Bind(values)
	return nil
}

// SetField sets one form field as user input would.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.form.Set(name, value) {
		return fmt.Errorf("productform: unknown field %q", name)
	}
	return nil
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsEditing reports whether the controller edits an existing product.
func (c *Controller) IsEditing() bool {
	_, ok := c.Mode().(EditMode)
	return ok
}

// Form returns a copy of the current form.
func (c *Controller) Form() *Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

func (c *Controller) Categories() []catalogapi.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalogapi.Category(nil), c.categories...)
}

func (c *Controller) Suppliers() []catalogapi.Supplier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalogapi.Supplier(nil), c.suppliers...)
}

// Errors returns the field errors of the last validation or rejected
// mutation.
func (c *Controller) Errors() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(FieldErrors, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}
