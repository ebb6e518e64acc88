package dashboard

import (
	"context"
	"strconv"

	"github.com/northwind-admin/northwind-admin/internal/productform"
	"github.com/northwind-admin/northwind-admin/internal/shared"
)

// flashNotifier turns notifications into session flashes.
type flashNotifier struct {
	sess *shared.Session
}

func (n flashNotifier) Success(message string) {
	if n.sess != nil {
		n.sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: message})
	}
}

func (n flashNotifier) Error(message string) {
	if n.sess != nil {
		n.sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: message})
	}
}

// redirectNavigator remembers the last navigation so the handler can answer
// with a redirect.
type redirectNavigator struct {
	target *productform.Route
}

func (n *redirectNavigator) Navigate(route productform.Route) {
	n.target = &route
}

// Location returns the redirect URL, if a navigation happened.
func (n *redirectNavigator) Location() (string, bool) {
	if n.target == nil {
		return "", false
	}
	return RoutePath(*n.target), true
}

// RoutePath maps a navigation target to its dashboard URL.
func RoutePath(route productform.Route) string {
	switch route.Name {
	case productform.RouteEditView:
		return "/dashboard/products/edit/" + strconv.FormatInt(route.ProductID, 10)
	default:
		return "/dashboard/products"
	}
}

// postedConfirmer answers with the operator's choice on the confirmation page.
type postedConfirmer bool

func (c postedConfirmer) Confirm(ctx context.Context, prompt string) bool {
	return bool(c)
}
