// activity_logs.go implements the read-only activity log API: filtered, sorted
// and paginated listing, single-record lookup, and per-entity action counts.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/repositories"
)

// ActivityLogStore is the read surface of *repositories.ActivityLogRepository.
type ActivityLogStore interface {
	ListActivityLogs(ctx context.Context, filters repositories.ActivityLogFilters, sort repositories.ActivityLogSort, limit, offset int) ([]*models.ActivityLog, int, error)
	GetActivityLog(ctx context.Context, id int64) (*models.ActivityLog, error)
	CountByEntityAction(ctx context.Context) (map[string]map[models.ActivityAction]int, error)
}

// ActivityLogHandlers handles activity log endpoints
type ActivityLogHandlers struct {
	store ActivityLogStore
}

// NewActivityLogHandlers creates a new ActivityLogHandlers instance
func NewActivityLogHandlers(store ActivityLogStore) *ActivityLogHandlers {
	return &ActivityLogHandlers{store: store}
}

const dateOnly = "2006-01-02"

// parseTimeParam accepts RFC 3339 or a bare date. A bare date used as an upper
// bound covers the whole day at the microsecond precision of timestamptz.
func parseTimeParam(name, raw string, upper bool) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: use RFC 3339 or YYYY-MM-DD", name)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return &t, nil
}

func parseIDParam(name, raw string) (*int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &v, nil
}

// parseActivityLogQuery builds filters and sort from the query string.
func parseActivityLogQuery(c *gin.Context) (repositories.ActivityLogFilters, repositories.ActivityLogSort, error) {
	var (
		f   repositories.ActivityLogFilters
		err error
	)

	if v := c.Query("user_id"); v != "" {
		if f.UserID, err = parseIDParam("user_id", v); err != nil {
			return f, repositories.ActivityLogSort{}, err
		}
	}
	if v := c.Query("loggable_id"); v != "" {
		if f.LoggableID, err = parseIDParam("loggable_id", v); err != nil {
			return f, repositories.ActivityLogSort{}, err
		}
	}
	if v := c.Query("datetime_from"); v != "" {
		if f.DatetimeFrom, err = parseTimeParam("datetime_from", v, false); err != nil {
			return f, repositories.ActivityLogSort{}, err
		}
	}
	if v := c.Query("datetime_to"); v != "" {
		if f.DatetimeTo, err = parseTimeParam("datetime_to", v, true); err != nil {
			return f, repositories.ActivityLogSort{}, err
		}
	}

	for name, dst := range map[string]**string{
		"loggable_type": &f.LoggableType,
		"entity":        &f.Entity,
		"action":        &f.Action,
		"description":   &f.Description,
	} {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			*dst = &v
		}
	}

	sort := repositories.DefaultActivityLogSort
	if v := c.Query("sort"); v != "" {
		sort.Field = v
	}
	if strings.EqualFold(c.Query("order"), "asc") {
		sort.Desc = false
	}
	return f, sort, nil
}

// ListActivityLogsHandler lists activity logs
// GET /api/v1/activity-logs?page=1&per_page=20&entity=alumnos&sort=datetime&order=desc
func (h *ActivityLogHandlers) ListActivityLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pagination(c)

		filters, sort, err := parseActivityLogQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		logs, total, err := h.store.ListActivityLogs(c.Request.Context(), filters, sort, perPage, (page-1)*perPage)
		if err != nil {
			slog.Error("failed to list activity logs", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list activity logs",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"activity_logs": logs,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// GetActivityLogHandler returns one activity log
// GET /api/v1/activity-logs/:id
func (h *ActivityLogHandlers) GetActivityLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		log, err := h.store.GetActivityLog(c.Request.Context(), id)
		if err != nil {
			slog.Error("failed to get activity log", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get activity log",
			})
			return
		}
		if log == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Activity log not found",
			})
			return
		}
		c.JSON(http.StatusOK, log)
	}
}

// ActivityStatsHandler returns record counts per entity and action
// GET /api/v1/stats/activity-logs
func (h *ActivityLogHandlers) ActivityStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := h.store.CountByEntityAction(c.Request.Context())
		if err != nil {
			slog.Error("failed to count activity logs", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load activity stats",
			})
			return
		}

		total := 0
		for _, byAction := range counts {
			for _, n := range byAction {
				total += n
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"entities": counts,
			"total":    total,
		})
	}
}
