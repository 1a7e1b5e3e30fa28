package service

import (
	"strings"

	"github.com/slooze/inventory-console/internal/pkg/metrics"
)

// Page is a class of pages sharing one access policy.
type Page string

const (
	PageLogin     Page = "login"
	PageDashboard Page = "dashboard"
	PageCatalog   Page = "catalog"
)

const (
	LoginPath     = "/"
	DashboardPath = "/dashboard"
	CatalogPath   = "/products"
)

// ParsePage maps a page name to a Page. ok is false for unknown names.
func ParsePage(s string) (Page, bool) {
	switch p := Page(strings.ToLower(strings.TrimSpace(s))); p {
	case PageLogin, PageDashboard, PageCatalog:
		return p, true
	}
	return "", false
}

// Decision is the outcome of a guard evaluation. Redirect is set only when
// Allow is false.
type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

func allow() Decision { return Decision{Allow: true} }
func redirect(path string) Decision { return Decision{Redirect: path} }

// Guard evaluates the access policy of page for the given session state.
//
//	login     always allowed
//	dashboard anonymous → /, authenticated but not MANAGER → /products
//	catalog   anonymous → /
func Guard(snap SessionSnapshot, page Page) Decision {
	var d Decision
	switch page {
	case PageLogin:
		d = allow()
	case PageDashboard:
		switch {
		case !snap.Authenticated():
			d = redirect(LoginPath)
		case !snap.User.IsManager():
			d = redirect(CatalogPath)
		default:
			d = allow()
		}
	case PageCatalog:
		if snap.Authenticated() {
			d = allow()
		} else {
			d = redirect(LoginPath)
		}
	default:
		d = redirect(LoginPath)
	}

	metrics.GuardDecisionsTotal.WithLabelValues(string(page), decisionLabel(d)).Inc()
	return d
}

// WatchGuard evaluates page now and again on every session transition,
// passing each decision to fn. The returned function stops the watch.
func WatchGuard(session *IdentitySession, page Page, fn func(Decision)) (cancel func()) {
	cancel = session.Subscribe(func(snap SessionSnapshot) {
		fn(Guard(snap, page))
	})
	fn(Guard(session.Snapshot(), page))
	return cancel
}

func decisionLabel(d Decision) string {
	if d.Allow {
		return "allow"
	}
	return "redirect"
}
