package productform

import (
	"context"
	"strconv"

	"github.com/northwind-admin/northwind-admin/internal/catalogapi"
)

// CategoriesService lists the categories offered by the category select.
type CategoriesService interface {
	ListCategories(ctx context.Context) ([]catalogapi.Category, error)
}

// SuppliersService lists the suppliers offered by the supplier select.
type SuppliersService interface {
	ListSuppliers(ctx context.Context) ([]catalogapi.Supplier, error)
}

// ProductsService is the product API the form submits to.
type ProductsService interface {
	GetProduct(ctx context.Context, id int64) (catalogapi.Product, error)
	AddProduct(ctx context.Context, p catalogapi.Product) (catalogapi.Product, error)
	UpdateProduct(ctx context.Context, p catalogapi.Product) (catalogapi.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Notifier shows operator notifications. Implementations must not call back
// into the Controller.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator moves the operator to another view. Implementations must not call
// back into the Controller.
type Navigator interface {
	Navigate(route Route)
}

// Confirmer asks the operator to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// RouteName identifies a dashboard view.
type RouteName string

const (
	RouteListView RouteName = "list-view"
	RouteEditView RouteName = "edit-view"
)

// Route is a navigation target.
type Route struct {
	Name      RouteName
	ProductID int64
}

// ListView is the product list.
func ListView() Route { return Route{Name: RouteListView} }

// EditView is the edit form of one product.
func EditView(id int64) Route { return Route{Name: RouteEditView, ProductID: id} }

func (r Route) String() string {
	if r.Name == RouteEditView {
		return string(r.Name) + "(" + strconv.FormatInt(r.ProductID, 10) + ")"
	}
	return string(r.Name)
}

// RouteParams are the route parameters read once at mount.
type RouteParams struct {
	// ProductID is the raw productId parameter; empty means create mode.
	ProductID string
}
