package domain

import (
	"strings"
	"time"
)

// LowStockThreshold is the stock level below which a product counts as low.
const LowStockThreshold = 10

// Product is the console's read-through copy of a catalog row. It may be
// stale; the catalog API owns the data.
type Product struct {
	ID        ID
	Name      string
	Price     float64
	Stock     int
	CreatedAt time.Time
}

// NewProduct carries the user input for a product creation. Stock is bounded
// by the catalog API's 32-bit Int and Price must also be finite.
type NewProduct struct {
	Name  string  `validate:"required"`
	Price float64 `validate:"gte=0"`
	Stock int     `validate:"gte=0,max=2147483647"`
}

// StockFilter narrows a product listing by stock level.
type StockFilter string

const (
	StockAll StockFilter = "all"
	StockLow StockFilter = "low"
	StockOut StockFilter = "out"
)

// ParseStockFilter maps a query-string value to a StockFilter. Unknown
// values select every product.
func ParseStockFilter(s string) StockFilter {
	switch StockFilter(strings.ToLower(strings.TrimSpace(s))) {
	case StockLow:
		return StockLow
	case StockOut:
		return StockOut
	default:
		return StockAll
	}
}

// Matches reports whether a product with the given stock passes the filter.
func (f StockFilter) Matches(stock int) bool {
	switch f {
	case StockLow:
		return stock < LowStockThreshold
	case StockOut:
		return stock == 0
	default:
		return true
	}
}

// ProductQuery is the client-side filter applied to a listing.
type ProductQuery struct {
	Search string
	Stock  StockFilter
}

// Matches reports whether p satisfies both the search term and the stock
// filter. The search term matches case-insensitively anywhere in the name.
func (q ProductQuery) Matches(p Product) bool {
	if !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
		return false
	}
	return q.Stock.Matches(p.Stock)
}

// StockSummary holds the aggregate counters shown on the dashboard.
type StockSummary struct {
	Total      int
	LowStock   int
	OutOfStock int
}
