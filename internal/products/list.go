package product

import "github.com/shopfront/storefront/pkg/pagination"

// ListProductsInput captures the browse filters. Inactive products are only
// visible to admins.
type ListProductsInput struct {
	IncludeInactive bool
	Category        string
	Pagination      pagination.Params
}
