// Package shared contains helpers reused across domain modules.
package shared

import (
	"net/http"
	"strconv"
)

// MaxPageLimit bounds listing sizes regardless of what the caller asks for.
const MaxPageLimit = 100

// DefaultPageLimit is applied when the caller omits a limit.
const DefaultPageLimit = 20

// Page carries offset/limit pagination parameters.
type Page struct {
	Offset int
	Limit  int
}

// Normalize clamps the page to offset >= 0 and 1 <= limit <= MaxPageLimit.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// PageFromRequest reads skip/limit query parameters. Unparseable values fall
// back to the defaults via Normalize.
func PageFromRequest(r *http.Request) Page {
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return Page{Offset: offset, Limit: limit}.Normalize()
}
