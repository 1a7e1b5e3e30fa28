package handler

import (
	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/service"
)

// pageData is the chrome shared by every page: title, sidebar and banners.
type pageData struct {
	Title string
	Nav   string
	User  *domain.User
	// Watch names the guarded page the browser keeps listening on.
	Watch service.Page
	Flash string
	Error string
}

type demoAccount struct {
	Label    string
	Email    string
	Password string
}

var demoAccounts = []demoAccount{
	{Label: "Manager", Email: "manager@example.com", Password: "password"},
	{Label: "Store Keeper", Email: "keeper@example.com", Password: "password"},
}

type loginPage struct {
	pageData
	Expired       bool
	Authenticated bool
	Continue      string
	Email         string
	Errors        map[string]string
	LoginError    string
	DemoAccounts  []demoAccount
}

type dashboardPage struct {
	pageData
	Summary           domain.StockSummary
	LowStockThreshold int
}

type productsPage struct {
	pageData
	Products []domain.Product
	Query    string
	Stock    domain.StockFilter
	Total    int
}

type productForm struct {
	Name  string
	Price string
	Stock string
}

type productFormPage struct {
	pageData
	Form   productForm
	Errors map[string]string
}

type deletePage struct {
	pageData
	Product domain.Product
}

type errorPage struct {
	pageData
	Code    int
	Message string
}

// NewErrorPage builds the view model of the error page.
func NewErrorPage(code int, message string) any {
	return errorPage{pageData: pageData{Title: "Error"}, Code: code, Message: message}
}
