package handler

import (
	"errors"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/api/view"
	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/service"
)

const (
	msgProductCreated = "Product created"
	msgProductDeleted = "Product deleted"
	msgDeleteFailed   = "Failed to delete product"
	msgCreateFailed   = "Failed to create product"
	msgListFailed     = "Failed to load products"
)

type ProductHandler struct {
	log zerolog.Logger
}

func NewProductHandler(log zerolog.Logger) *ProductHandler {
	return &ProductHandler{log: log}
}

type createProductRequest struct {
	Name  string `form:"name"`
	Price string `form:"price"`
	Stock string `form:"stock"`
}

// List renders the product grid filtered by the q and stock query
// parameters.
func (h *ProductHandler) List(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}
	return h.renderList(c, scope, http.StatusOK, listFlash(c), "")
}

// New renders an empty product form.
func (h *ProductHandler) New(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.PageProductForm, h.formPage(scope))
}

// Create adds a product. Invalid input re-renders the form with a message
// next to each offending field.
func (h *ProductHandler) Create(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	page := h.formPage(scope)
	page.Form = productForm{Name: req.Name, Price: req.Price, Stock: req.Stock}

	in, fieldErrs := parseProductForm(req)
	if len(fieldErrs) > 0 {
		page.Errors = fieldErrs
		return c.Render(http.StatusUnprocessableEntity, view.PageProductForm, page)
	}

	if _, err := scope.Catalog.Create(c.Request().Context(), in); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			page.Errors = ve.Fields
			return c.Render(http.StatusUnprocessableEntity, view.PageProductForm, page)
		}
		if ok, rerr := sessionExpired(c, scope, err); ok {
			return rerr
		}
		h.log.Warn().Err(err).Str("browser_id", scope.BrowserID).Msg("create product failed")
		page.Error = msgCreateFailed
		return c.Render(http.StatusBadGateway, view.PageProductForm, page)
	}

	return c.Redirect(http.StatusSeeOther, service.CatalogPath+"?created=1")
}

// ConfirmDelete asks for confirmation before a product is removed.
func (h *ProductHandler) ConfirmDelete(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}
	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := scope.Catalog.Find(c.Request().Context(), id)
	if err != nil {
		if ok, rerr := sessionExpired(c, scope, err); ok {
			return rerr
		}
		return err
	}

	return c.Render(http.StatusOK, view.PageProductDelete, deletePage{
		pageData: pageData{
			Title: "Delete product",
			Nav:   "products",
			User:  userOf(scope),
			Watch: service.PageCatalog,
		},
		Product: product,
	})
}

// Delete removes a product once the confirmation form was submitted.
func (h *ProductHandler) Delete(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}
	id, err := productID(c)
	if err != nil {
		return err
	}

	confirmed := c.FormValue("confirm") == "yes"
	if err := scope.Catalog.Remove(c.Request().Context(), id, confirmed); err != nil {
		if errors.Is(err, domain.ErrConfirmationRequired) {
			return c.Redirect(http.StatusSeeOther, service.CatalogPath+"/"+id.String()+"/delete")
		}
		if ok, rerr := sessionExpired(c, scope, err); ok {
			return rerr
		}
		h.log.Warn().Err(err).Str("browser_id", scope.BrowserID).Str("product_id", id.String()).Msg("delete product failed")
		return h.renderList(c, scope, http.StatusBadGateway, "", msgDeleteFailed)
	}

	return c.Redirect(http.StatusSeeOther, service.CatalogPath+"?deleted=1")
}

func (h *ProductHandler) renderList(c echo.Context, scope *service.Scope, status int, flash, banner string) error {
	query := domain.ProductQuery{
		Search: strings.TrimSpace(c.QueryParam("q")),
		Stock:  domain.ParseStockFilter(c.QueryParam("stock")),
	}
	page := productsPage{
		pageData: pageData{
			Title: "Products",
			Nav:   "products",
			User:  userOf(scope),
			Watch: service.PageCatalog,
			Flash: flash,
			Error: banner,
		},
		Query: query.Search,
		Stock: query.Stock,
	}

	listing, err := scope.Catalog.List(c.Request().Context())
	if err != nil {
		if ok, rerr := sessionExpired(c, scope, err); ok {
			return rerr
		}
		h.log.Warn().Err(err).Str("browser_id", scope.BrowserID).Msg("list products failed")
		if page.Error == "" {
			page.Error = msgListFailed
		}
		return c.Render(http.StatusBadGateway, view.PageProducts, page)
	}

	page.Products = slices.Collect(listing.Filter(query))
	page.Total = listing.Len()
	return c.Render(status, view.PageProducts, page)
}

func (h *ProductHandler) formPage(scope *service.Scope) productFormPage {
	return productFormPage{
		pageData: pageData{
			Title: "Add Product",
			Nav:   "add",
			User:  userOf(scope),
			Watch: service.PageCatalog,
		},
	}
}

func listFlash(c echo.Context) string {
	switch {
	case c.QueryParam("created") == "1":
		return msgProductCreated
	case c.QueryParam("deleted") == "1":
		return msgProductDeleted
	}
	return ""
}

// parseProductForm converts the raw form values. Values that are not finite
// numbers, or stock outside a 32-bit int, are reported per field; the other
// range checks are left to the catalog.
func parseProductForm(req createProductRequest) (domain.NewProduct, map[string]string) {
	in := domain.NewProduct{Name: req.Name}
	errs := map[string]string{}

	if s := strings.TrimSpace(req.Price); s == "" {
		errs["price"] = "Price is required"
	} else if v, err := strconv.ParseFloat(s, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs["price"] = "Price must be a number"
	} else {
		in.Price = v
	}

	if s := strings.TrimSpace(req.Stock); s == "" {
		errs["stock"] = "Stock is required"
	} else if v, err := strconv.ParseInt(s, 10, 32); errors.Is(err, strconv.ErrRange) && v < 0 {
		errs["stock"] = "Stock must not be negative"
	} else if errors.Is(err, strconv.ErrRange) {
		errs["stock"] = "Stock is too large"
	} else if err != nil {
		errs["stock"] = "Stock must be a whole number"
	} else {
		in.Stock = int(v)
	}

	if len(errs) > 0 && strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required"
	}
	return in, errs
}

func productID(c echo.Context) (domain.ID, error) {
	n, err := strconv.Atoi(c.Param("id"))
	if err != nil || n <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return domain.ID(n), nil
}
