package productform

import "github.com/northwind-admin/northwind-admin/internal/catalogapi"

// Mode is either CreateMode or EditMode.
type Mode interface {
	isMode()
}

// CreateMode has no backing entity.
type CreateMode struct{}

// EditMode carries the backing entity as last confirmed by the API.
type EditMode struct {
	Product catalogapi.Product
}

func (CreateMode) isMode() {}
func (EditMode) isMode()   {}
