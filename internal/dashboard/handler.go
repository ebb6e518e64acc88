// Package dashboard serves the product pages of the admin console.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/northwind-admin/northwind-admin/internal/catalogapi"
	"github.com/northwind-admin/northwind-admin/internal/productform"
	"github.com/northwind-admin/northwind-admin/internal/shared"
	"github.com/northwind-admin/northwind-admin/internal/view"
	"github.com/northwind-admin/northwind-admin/report"
)

// PageSize is the number of product cards per list page.
const PageSize = 12

// CatalogClient is the catalog API as used by the dashboard.
type CatalogClient interface {
	productform.ProductsService
	productform.CategoriesService
	productform.SuppliersService
	ListProducts(ctx context.Context, q catalogapi.ProductQuery) (catalogapi.ProductPage, error)
}

// PriceListRenderer produces the price list PDF.
type PriceListRenderer interface {
	PDF(ctx context.Context, rows []report.PriceListRow) ([]byte, error)
}

// Handler serves /dashboard.
type Handler struct {
	logger    *slog.Logger
	catalog   CatalogClient
	templates *view.Engine
	csrf      *shared.CSRFManager
	priceList PriceListRenderer
}

// NewHandler builds the dashboard handler.
func NewHandler(logger *slog.Logger, catalog CatalogClient, templates *view.Engine, csrf *shared.CSRFManager, priceList PriceListRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, catalog: catalog, templates: templates, csrf: csrf, priceList: priceList}
}

// MountRoutes registers the product pages. Callers guard them with the
// operator middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard/products", http.StatusSeeOther)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/export.pdf", h.exportPDF)
		r.Get("/add", h.showForm)
		r.Post("/add", h.submitForm)
		r.Get("/edit/{productId}", h.showForm)
		r.Post("/edit/{productId}", h.submitForm)
		r.Get("/edit/{productId}/delete", h.confirmDelete)
		r.Post("/edit/{productId}/delete", h.delete)
	})
}

// formSession is one controller bound to the current request.
type formSession struct {
	ctrl *productform.Controller
	nav  *redirectNavigator
	ctx  context.Context
}

func (h *Handler) openForm(r *http.Request, confirm bool) (*formSession, error) {
	sess := shared.SessionFromContext(r.Context())
	operator := shared.OperatorFromContext(r.Context())
	ctx := catalogapi.WithActor(r.Context(), operator.Email)
	nav := &redirectNavigator{}
	ctrl := productform.NewController(ctx, productform.Dependencies{
		Products:   h.catalog,
		Categories: h.catalog,
		Suppliers:  h.catalog,
		Notifier:   flashNotifier{sess: sess},
		Navigator:  nav,
		Confirmer:  postedConfirmer(confirm),
		Logger:     h.logger,
	})
	fs := &formSession{ctrl: ctrl, nav: nav, ctx: ctx}
	err := ctrl.Mount(ctx, productform.RouteParams{ProductID: chi.URLParam(r, "productId")})
	return fs, err
}

// redirected answers with the controller's navigation, if any.
func (fs *formSession) redirected(w http.ResponseWriter, r *http.Request) bool {
	location, ok := fs.nav.Location()
	if !ok {
		return false
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
	return true
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	fs, err := h.openForm(r, false)
	defer fs.ctrl.Close()
	if fs.redirected(w, r) {
		return
	}
	if err != nil {
		h.logger.Error("mount product form", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderForm(w, r, fs.ctrl, http.StatusOK)
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	fs, err := h.openForm(r, false)
	defer fs.ctrl.Close()
	if fs.redirected(w, r) {
		return
	}
	if err != nil {
		h.logger.Error("mount product form", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := fs.ctrl.Bind(r.PostForm); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err = fs.ctrl.Submit(fs.ctx)
	if fs.redirected(w, r) {
		return
	}
	h.renderForm(w, r, fs.ctrl, submitStatus(err))
}

func submitStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, productform.ErrInvalidForm), errors.Is(err, catalogapi.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalogapi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalogapi.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

type formPage struct {
	Editing    bool
	ProductID  int64
	Action     string
	Values     map[string]string
	Errors     productform.FieldErrors
	Categories []catalogapi.Category
	Suppliers  []catalogapi.Supplier
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, ctrl *productform.Controller, status int) {
	page := formPage{
		Action:     "/dashboard/products/add",
		Values:     ctrl.Form().Values(),
		Errors:     ctrl.Errors(),
		Categories: ctrl.Categories(),
		Suppliers:  ctrl.Suppliers(),
	}
	title := "Add product"
	if edit, ok := ctrl.Mode().(productform.EditMode); ok {
		page.Editing = true
		page.ProductID = edit.Product.ID
		page.Action = RoutePath(productform.EditView(edit.Product.ID))
		title = edit.Product.Name
	}
	h.render(w, r, "pages/product_form.html", title, page, status)
}

type deletePage struct {
	Prompt  string
	Product catalogapi.Product
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	fs, err := h.openForm(r, false)
	defer fs.ctrl.Close()
	if fs.redirected(w, r) {
		return
	}
	edit, ok := fs.ctrl.Mode().(productform.EditMode)
	if err != nil || !ok {
		http.Redirect(w, r, "/dashboard/products", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/product_delete.html", "Delete "+edit.Product.Name, deletePage{
		Prompt:  productform.MsgConfirmDelete,
		Product: edit.Product,
	}, http.StatusOK)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	fs, err := h.openForm(r, r.PostFormValue("confirm") == "yes")
	defer fs.ctrl.Close()
	if fs.redirected(w, r) {
		return
	}
	if err != nil {
		h.logger.Error("mount product form", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := fs.ctrl.Delete(fs.ctx); err != nil {
		h.logger.Warn("delete product", slog.Any("error", err))
	}
	if fs.redirected(w, r) {
		return
	}
	// Declined or failed: back to the edit form, which shows any flash.
	http.Redirect(w, r, "/dashboard/products/edit/"+chi.URLParam(r, "productId"), http.StatusSeeOther)
}

type listPage struct {
	Search        string
	CategoryID    int64
	CategoryParam string
	Categories    []catalogapi.Category
	Rows          []report.PriceListRow
	Pagination    shared.Pagination
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	categoryID, _ := strconv.ParseInt(q.Get("categoryId"), 10, 64)
	query := catalogapi.ProductQuery{
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: categoryID,
		Sort:       "name",
		Page:       page,
		Limit:      PageSize,
	}

	var (
		result     catalogapi.ProductPage
		categories []catalogapi.Category
		suppliers  []catalogapi.Supplier
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		result, err = h.catalog.ListProducts(ctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		if categories, err = h.catalog.ListCategories(ctx); err != nil {
			h.logger.Warn("list categories", slog.Any("error", err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if suppliers, err = h.catalog.ListSuppliers(ctx); err != nil {
			h.logger.Warn("list suppliers", slog.Any("error", err))
		}
		return nil
	})

	status := http.StatusOK
	if err := g.Wait(); err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		flashNotifier{sess: shared.SessionFromContext(r.Context())}.Error("Failed to load products")
		status = http.StatusBadGateway
	}

	data := listPage{
		Search:     query.Search,
		CategoryID: categoryID,
		Categories: categories,
		Rows:       report.Rows(result.Items, categories, suppliers),
		Pagination: shared.NewPagination(page, PageSize, result.Total),
	}
	if categoryID > 0 {
		data.CategoryParam = strconv.FormatInt(categoryID, 10)
	}
	h.render(w, r, "pages/products_list.html", "Products", data, status)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	var (
		result     catalogapi.ProductPage
		categories []catalogapi.Category
		suppliers  []catalogapi.Supplier
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		result, err = h.catalog.ListProducts(ctx, catalogapi.ProductQuery{Sort: "name", All: true})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.catalog.ListCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = h.catalog.ListSuppliers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.exportFailed(w, r, err)
		return
	}

	pdf, err := h.priceList.PDF(r.Context(), report.Rows(result.Items, categories, suppliers))
	if err != nil {
		h.exportFailed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="northwind-price-list.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) exportFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("export price list", slog.Any("error", err))
	flashNotifier{sess: shared.SessionFromContext(r.Context())}.Error("Failed to export the price list")
	http.Redirect(w, r, "/dashboard/products", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flashes []shared.FlashMessage
	if sess != nil {
		flashes = sess.PopFlashes()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		Operator:    shared.OperatorFromContext(r.Context()),
		Data:        data,
	}
	if err := h.templates.RenderStatus(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
