package util

// DefaultPageSize is used by the search endpoint; MarketplacePageSize is the
// fixed storefront page size.
const (
	DefaultPageSize     = 10
	MarketplacePageSize = 8
)

func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}
