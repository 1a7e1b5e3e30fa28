package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"iter"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
	"github.com/slooze/inventory-console/internal/pkg/metrics"
)

// Listing is a snapshot of the product list in server order.
type Listing struct {
	products []domain.Product
}

// All yields every product of the snapshot. The sequence can be ranged over
// any number of times.
func (l Listing) All() iter.Seq[domain.Product] {
	return func(yield func(domain.Product) bool) {
		for _, p := range l.products {
			if !yield(p) {
				return
			}
		}
	}
}

// Filter yields the products matching q, keeping server order.
func (l Listing) Filter(q domain.ProductQuery) iter.Seq[domain.Product] {
	return func(yield func(domain.Product) bool) {
		for _, p := range l.products {
			if q.Matches(p) && !yield(p) {
				return
			}
		}
	}
}

func (l Listing) Len() int { return len(l.products) }

// Summary returns the dashboard counters for the snapshot.
func (l Listing) Summary() domain.StockSummary {
	s := domain.StockSummary{Total: len(l.products)}
	for _, p := range l.products {
		if domain.StockLow.Matches(p.Stock) {
			s.LowStock++
		}
		if domain.StockOut.Matches(p.Stock) {
			s.OutOfStock++
		}
	}
	return s
}

// Catalog is the product view-model of one browser. It caches the last
// listing and drops it after every acknowledged write.
//
// Each invalidation bumps a generation counter. A fetch only stores its
// result if the generation it started under is still current, so a fetch
// that began before a write can never hide that write.
type Catalog struct {
	gw       ports.Gateway
	validate *validator.Validate
	log      zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	cached *Listing
}

func NewCatalog(gw ports.Gateway, validate *validator.Validate, log zerolog.Logger) *Catalog {
	return &Catalog{gw: gw, validate: validate, log: log}
}

// List returns the cached listing, fetching it if there is none.
func (c *Catalog) List(ctx context.Context) (Listing, error) {
	c.mu.Lock()
	if c.cached != nil {
		l := *c.cached
		c.mu.Unlock()
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return l, nil
	}
	gen := c.gen
	c.mu.Unlock()

	metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
	return c.fetch(ctx, gen)
}

// Refetch drops the cached listing and fetches a fresh one.
func (c *Catalog) Refetch(ctx context.Context) (Listing, error) {
	return c.fetch(ctx, c.invalidate())
}

// Summary returns the dashboard counters for the current listing.
func (c *Catalog) Summary(ctx context.Context) (domain.StockSummary, error) {
	l, err := c.List(ctx)
	if err != nil {
		return domain.StockSummary{}, err
	}
	return l.Summary(), nil
}

// Create validates in and sends it to the catalog API. Invalid input is
// rejected with a *domain.ValidationError before any request is made. Once
// the API acknowledges the write the listing is refetched before Create
// returns.
func (c *Catalog) Create(ctx context.Context, in domain.NewProduct) (domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := c.validateProduct(in); err != nil {
		metrics.CatalogMutationsTotal.WithLabelValues("create", "invalid").Inc()
		return domain.Product{}, err
	}

	var data createProductData
	if err := c.gw.Execute(ctx, createProductOperation, productVariables(in), &data); err != nil {
		metrics.CatalogMutationsTotal.WithLabelValues("create", "error").Inc()
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	metrics.CatalogMutationsTotal.WithLabelValues("create", "ok").Inc()

	created := data.CreateProduct.toDomain()
	c.log.Info().Str("product_id", created.ID.String()).Str("name", created.Name).Msg("product created")

	c.refreshAfterWrite(ctx)
	return created, nil
}

// Remove deletes the product with id. Nothing is sent unless confirmed is
// true. Once the API acknowledges the removal the listing is refetched
// before Remove returns.
func (c *Catalog) Remove(ctx context.Context, id domain.ID, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}

	var data removeProductData
	if err := c.gw.Execute(ctx, removeProductOperation, idVariables(id), &data); err != nil {
		metrics.CatalogMutationsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("remove product %d: %w", id, err)
	}
	if data.RemoveProduct == nil {
		metrics.CatalogMutationsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("remove product %d: %w", id, domain.ErrProductNotFound)
	}
	metrics.CatalogMutationsTotal.WithLabelValues("remove", "ok").Inc()
	c.log.Info().Str("product_id", id.String()).Msg("product removed")

	c.refreshAfterWrite(ctx)
	return nil
}

// Find returns the product with id from the current listing.
func (c *Catalog) Find(ctx context.Context, id domain.ID) (domain.Product, error) {
	l, err := c.List(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for p := range l.All() {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// Invalidate drops the cached listing.
func (c *Catalog) Invalidate() {
	c.invalidate()
}

func (c *Catalog) invalidate() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cached = nil
	return c.gen
}

// refreshAfterWrite invalidates the listing and waits for a refetch. A failed
// refetch leaves the cache empty so the next List tries again.
func (c *Catalog) refreshAfterWrite(ctx context.Context) {
	if _, err := c.Refetch(ctx); err != nil {
		c.log.Warn().Err(err).Msg("refetch after write failed")
	}
}

func (c *Catalog) fetch(ctx context.Context, gen uint64) (Listing, error) {
	var data productsData
	if err := c.gw.Execute(ctx, getProductsOperation, nil, &data); err != nil {
		return Listing{}, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(data.Products))
	for _, n := range data.Products {
		products = append(products, n.toDomain())
	}
	l := Listing{products: products}

	if ctx.Err() != nil {
		return l, nil
	}

	c.mu.Lock()
	if c.gen == gen {
		c.cached = &l
	}
	c.mu.Unlock()
	return l, nil
}

func (c *Catalog) validateProduct(in domain.NewProduct) error {
	fields := make(map[string]string)
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		fields["price"] = "Price must be a number"
	}

	if err := c.validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			name := strings.ToLower(fe.Field())
			if _, ok := fields[name]; !ok {
				fields[name] = productFieldMessage(fe)
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

func productFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fe.Field() + " must not be negative"
	case "max":
		return fe.Field() + " is too large"
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
