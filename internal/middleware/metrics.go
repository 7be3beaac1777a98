// Package middleware provides Gin HTTP middleware components for the student-tracking backend.
// All middleware in this package is registered in internal/api/router.go before any
// route handlers so that every request is covered regardless of handler.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/telemetry"
)

const noRoute = "<no-route>"

// entityRoutes maps the route templates of tracked-entity collections to
// their collection name, split by whether the template targets one row.
type entityRoutes struct {
	collection map[string]string
	member     map[string]string
}

func newEntityRoutes(roots []string) entityRoutes {
	er := entityRoutes{
		collection: make(map[string]string, len(roots)),
		member:     make(map[string]string, len(roots)),
	}
	for _, root := range roots {
		root = strings.TrimSuffix(root, "/")
		name := root[strings.LastIndex(root, "/")+1:]
		er.collection[root] = name
		er.member[root+"/:id"] = name
	}
	return er
}

// operation names the CRUD operation a request performs on a tracked entity.
// ok is false for routes outside the entity collections.
func (er entityRoutes) operation(method, path string) (entity, op string, ok bool) {
	if entity, ok = er.collection[path]; ok {
		switch method {
		case http.MethodGet:
			return entity, "list", true
		case http.MethodPost:
			return entity, "create", true
		}
		return "", "", false
	}
	if entity, ok = er.member[path]; ok {
		switch method {
		case http.MethodGet:
			return entity, "get", true
		case http.MethodPut, http.MethodPatch:
			return entity, "update", true
		case http.MethodDelete:
			return entity, "delete", true
		}
	}
	return "", "", false
}

// MetricsMiddleware returns a Gin handler that records Prometheus metrics for every
// request that passes through the router:
//   - http_requests_total{method, path, status}
//   - http_request_duration_seconds{method, path}
//   - http_entity_requests_total{entity, operation, status}, only for requests
//     under one of entityRoots (e.g. /api/v1/alumnos)
//
// The path label is the matched Gin route template (/api/v1/alumnos/:id), or
// "<no-route>" for 404/405 so unmatched URLs do not inflate label cardinality.
//
// Register it after gin.Recovery() and RequestIDMiddleware so the final status is captured.
func MetricsMiddleware(entityRoots ...string) gin.HandlerFunc {
	entities := newEntityRoutes(entityRoots)

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = noRoute
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		if entity, op, ok := entities.operation(method, path); ok {
			telemetry.EntityRequestsTotal.WithLabelValues(entity, op, status).Inc()
		}
	}
}
