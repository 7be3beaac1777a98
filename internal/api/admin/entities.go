// entities.go implements generic CRUD handlers shared by every tracked entity.
// Each mutation passes the request's audit.Actor to the repository, which
// reports the committed change to the audit interceptor.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/audit"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/repositories"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/middleware"
)

// EntityStore is the persistence surface used by EntityHandlers.
// *repositories.TrackedRepository satisfies it.
type EntityStore[T any] interface {
	Create(ctx context.Context, actor audit.Actor, e *T) error
	Update(ctx context.Context, actor audit.Actor, e *T) error
	Delete(ctx context.Context, actor audit.Actor, id int64) error
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, limit, offset int) ([]T, int, error)
}

// Identifiable lets Update take the row id from the URL.
type Identifiable[T any] interface {
	*T
	SetID(id int64)
}

// EntityHooks customises EntityHandlers for one entity.
type EntityHooks[T any] struct {
	// BeforeSave runs after binding and before Create or Update. existing is
	// nil on create. A returned error becomes a 400 response.
	BeforeSave func(ctx context.Context, existing *T, incoming *T) error
	// Present converts a row into its response body. Nil returns the row as is.
	Present func(*T) any
}

// EntityHandlers serves /api/v1/<plural> for T.
type EntityHandlers[T any, P Identifiable[T]] struct {
	store EntityStore[T]
	name  string
	hooks EntityHooks[T]
}

// NewEntityHandlers creates handlers for the entity whose response key is name.
func NewEntityHandlers[T any, P Identifiable[T]](store EntityStore[T], name string, hooks EntityHooks[T]) *EntityHandlers[T, P] {
	return &EntityHandlers[T, P]{store: store, name: name, hooks: hooks}
}

func (h *EntityHandlers[T, P]) present(e *T) any {
	if h.hooks.Present != nil {
		return h.hooks.Present(e)
	}
	return e
}

// parseID reads the :id path parameter, writing a 400 response when invalid.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid id",
		})
		return 0, false
	}
	return id, true
}

// ListHandler lists rows with pagination
// GET /api/v1/<plural>?page=1&per_page=20
func (h *EntityHandlers[T, P]) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pagination(c)

		rows, total, err := h.store.List(c.Request.Context(), perPage, (page-1)*perPage)
		if err != nil {
			slog.Error("failed to list entities", "entity", h.name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list " + h.name,
			})
			return
		}

		items := make([]any, len(rows))
		for i := range rows {
			items[i] = h.present(&rows[i])
		}
		c.JSON(http.StatusOK, gin.H{
			h.name: items,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// GetHandler returns one row
// GET /api/v1/<plural>/:id
func (h *EntityHandlers[T, P]) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		row, err := h.store.Get(c.Request.Context(), id)
		if err != nil {
			slog.Error("failed to get entity", "entity", h.name, "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get record",
			})
			return
		}
		if row == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Record not found",
			})
			return
		}
		c.JSON(http.StatusOK, h.present(row))
	}
}

// CreateHandler inserts a row
// POST /api/v1/<plural>
func (h *EntityHandlers[T, P]) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		row := new(T)
		if err := c.ShouldBindJSON(row); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}
		P(row).SetID(0)

		if h.hooks.BeforeSave != nil {
			if err := h.hooks.BeforeSave(c.Request.Context(), nil, row); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": err.Error(),
				})
				return
			}
		}

		if err := h.store.Create(c.Request.Context(), middleware.ActorFromContext(c), row); err != nil {
			slog.Error("failed to create entity", "entity", h.name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create record",
			})
			return
		}
		c.JSON(http.StatusCreated, h.present(row))
	}
}

// UpdateHandler replaces a row
// PUT /api/v1/<plural>/:id
func (h *EntityHandlers[T, P]) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		row := new(T)
		if err := c.ShouldBindJSON(row); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}
		P(row).SetID(id)

		if h.hooks.BeforeSave != nil {
			existing, err := h.store.Get(c.Request.Context(), id)
			if err != nil {
				slog.Error("failed to load entity for update", "entity", h.name, "id", id, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to update record",
				})
				return
			}
			if existing == nil {
				c.JSON(http.StatusNotFound, gin.H{
					"error": "Record not found",
				})
				return
			}
			if err := h.hooks.BeforeSave(c.Request.Context(), existing, row); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": err.Error(),
				})
				return
			}
		}

		err := h.store.Update(c.Request.Context(), middleware.ActorFromContext(c), row)
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Record not found",
			})
			return
		}
		if err != nil {
			slog.Error("failed to update entity", "entity", h.name, "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update record",
			})
			return
		}
		c.JSON(http.StatusOK, h.present(row))
	}
}

// DeleteHandler removes a row
// DELETE /api/v1/<plural>/:id
func (h *EntityHandlers[T, P]) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		err := h.store.Delete(c.Request.Context(), middleware.ActorFromContext(c), id)
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Record not found",
			})
			return
		}
		if err != nil {
			slog.Error("failed to delete entity", "entity", h.name, "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete record",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Record deleted",
		})
	}
}

// Register mounts the five routes on group. write guards the mutating routes.
func (h *EntityHandlers[T, P]) Register(group *gin.RouterGroup, write ...gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), handler)
	}
	group.GET("", h.ListHandler())
	group.GET("/:id", h.GetHandler())
	group.POST("", guarded(h.CreateHandler())...)
	group.PUT("/:id", guarded(h.UpdateHandler())...)
	group.DELETE("/:id", guarded(h.DeleteHandler())...)
}

// pagination reads page and per_page, defaulting to 1 and 20 with a maximum of 100.
func pagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
