package api

import (
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestRouterKnowsItsRoutes(t *testing.T) {
	r := NewRouter(nil, false)

	cases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"POST", "/api/login"},
		{"GET", "/api/rules"},
		{"GET", "/api/rules/3"},
		{"PUT", "/api/rules/3"},
		{"GET", "/api/transactions"},
		{"DELETE", "/api/transactions/unassigned"},
		{"GET", "/api/transactions/7"},
		{"POST", "/api/import/confirm"},
		{"GET", "/api/stats/recurrents/summary"},
		{"GET", "/api/projection/categories/forecast"},
	}
	for _, c := range cases {
		rctx := chi.NewRouteContext()
		assert.True(t, r.Match(rctx, c.method, c.path), "%s %s", c.method, c.path)
	}

	rctx := chi.NewRouteContext()
	assert.False(t, r.Match(rctx, "PATCH", "/api/rules/3"))
}
