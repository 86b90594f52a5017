// Package api exposes the read-side HTTP surface: paginated view records,
// aggregate summaries and refresh triggers, handed to the presentation
// collaborator as plain JSON.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/courtside-lab/project-courtside/internal/core/aggregate"
	httperr "github.com/courtside-lab/project-courtside/internal/core/errors"
	"github.com/courtside-lab/project-courtside/internal/core/join"
	"github.com/courtside-lab/project-courtside/internal/core/query"
	"github.com/courtside-lab/project-courtside/internal/fetch"
	"github.com/courtside-lab/project-courtside/internal/screen"
	"github.com/gin-gonic/gin"
)

// RefreshService is the slice of the fetch service the handlers consume.
type RefreshService interface {
	Refresh(ctx context.Context, name string) (*fetch.Snapshot, error)
	Snapshot(name string) (*fetch.Snapshot, bool)
	Summary(name string, w aggregate.Window) (aggregate.Bucket, error)
	Recent(name string, n int) ([]join.ViewRecord, error)
}

// Handler serves the screen endpoints. It owns one query session per
// screen: the session is the boundary that keeps the current page and sort
// direction between requests, so toggling and out-of-range page no-ops
// behave like the original views.
type Handler struct {
	svc         RefreshService
	screens     *screen.Repository
	pageSize    int
	recentLimit int

	mu       sync.Mutex
	sessions map[string]*query.Session
}

// NewHandler creates the API handler.
func NewHandler(svc RefreshService, screens *screen.Repository, pageSize, recentLimit int) *Handler {
	if recentLimit <= 0 {
		recentLimit = aggregate.DefaultRecentLimit
	}
	return &Handler{
		svc:         svc,
		screens:     screens,
		pageSize:    pageSize,
		recentLimit: recentLimit,
		sessions:    make(map[string]*query.Session),
	}
}

// RegisterRoutes attaches the screen endpoints to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.GET("/screens", h.listScreens)
	v1.POST("/screens/:screen/refresh", h.refreshScreen)
	v1.GET("/screens/:screen/records", h.screenRecords)
	v1.GET("/screens/:screen/summary", h.screenSummary)
	v1.GET("/screens/:screen/recent", h.screenRecent)
}

func (h *Handler) listScreens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"screens": h.screens.Names()})
}

// refreshResponse reports a refresh without the record payload.
type refreshResponse struct {
	SnapshotID  string             `json:"snapshotId"`
	Generation  uint64             `json:"generation"`
	TakenAt     time.Time          `json:"takenAt"`
	Records     int                `json:"records"`
	Diagnostics []fetch.Diagnostic `json:"diagnostics,omitempty"`
}

func (h *Handler) refreshScreen(c *gin.Context) {
	snap, err := h.svc.Refresh(c.Request.Context(), c.Param("screen"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, refreshResponse{
		SnapshotID:  snap.ID.String(),
		Generation:  snap.Generation,
		TakenAt:     snap.TakenAt,
		Records:     len(snap.Records),
		Diagnostics: snap.Diagnostics,
	})
}

// recordsResponse is one page of view records plus snapshot provenance.
type recordsResponse struct {
	Records     []join.ViewRecord  `json:"records"`
	Page        int                `json:"page"`
	PageSize    int                `json:"pageSize"`
	TotalCount  int                `json:"totalCount"`
	TotalPages  int                `json:"totalPages"`
	Sort        query.SortSpec     `json:"sort"`
	SnapshotID  string             `json:"snapshotId"`
	TakenAt     time.Time          `json:"takenAt"`
	Diagnostics []fetch.Diagnostic `json:"diagnostics,omitempty"`
}

func (h *Handler) screenRecords(c *gin.Context) {
	name := c.Param("screen")
	def, err := h.screens.Get(name)
	if err != nil {
		writeError(c, err)
		return
	}

	snap, err := h.snapshotOrRefresh(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}

	page := 0
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			writeInvalidQuery(c, "page must be an integer")
			return
		}
	}

	h.mu.Lock()
	sess, ok := h.sessions[name]
	if !ok {
		sess = query.NewSession(def.QueryConfig(h.pageSize))
		h.sessions[name] = sess
	}
	if term, ok := c.GetQuery("q"); ok {
		sess.SetSearch(term)
	}
	if field := c.Query("sort"); field != "" {
		sess.ToggleSort(field)
	}
	if page != 0 {
		sess.SetPage(page) // out of range: no-op, current page retained
	}
	res := sess.Run(snap.Records)
	sort := sess.Sort()
	h.mu.Unlock()

	c.JSON(http.StatusOK, recordsResponse{
		Records:     res.Records,
		Page:        res.Page,
		PageSize:    res.PageSize,
		TotalCount:  res.TotalCount,
		TotalPages:  res.TotalPages,
		Sort:        sort,
		SnapshotID:  snap.ID.String(),
		TakenAt:     snap.TakenAt,
		Diagnostics: snap.Diagnostics,
	})
}

func (h *Handler) screenSummary(c *gin.Context) {
	name := c.Param("screen")
	now := time.Now().UTC()

	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		writeInvalidQuery(c, "month must be an integer between 1 and 12")
		return
	}
	year, err := intQuery(c, "year", now.Year())
	if err != nil || year < 1 {
		writeInvalidQuery(c, "year must be a positive integer")
		return
	}

	if _, err := h.snapshotOrRefresh(c.Request.Context(), name); err != nil {
		writeError(c, err)
		return
	}

	bucket, err := h.svc.Summary(name, aggregate.Window{Month: time.Month(month), Year: year})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bucket)
}

func (h *Handler) screenRecent(c *gin.Context) {
	name := c.Param("screen")

	limit, err := intQuery(c, "limit", h.recentLimit)
	if err != nil || limit < 1 {
		writeInvalidQuery(c, "limit must be a positive integer")
		return
	}

	if _, err := h.snapshotOrRefresh(c.Request.Context(), name); err != nil {
		writeError(c, err)
		return
	}

	records, err := h.svc.Recent(name, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// snapshotOrRefresh serves the published snapshot, running the first
// refresh on demand the way the original views fetched on mount.
func (h *Handler) snapshotOrRefresh(ctx context.Context, name string) (*fetch.Snapshot, error) {
	if snap, ok := h.svc.Snapshot(name); ok {
		return snap, nil
	}
	return h.svc.Refresh(ctx, name)
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeInvalidQuery(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidQueryError,
		Message:   msg,
	})
}

// writeError maps the error taxonomy onto HTTP statuses: unknown screens
// are 404, a failed primary fetch is the one user-visible error state
// (502), everything else is internal.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, screen.ErrNotFound):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpUnknownScreen,
			Message:   err.Error(),
		})
	case errors.Is(err, fetch.ErrPrimaryFetch):
		c.JSON(http.StatusBadGateway, httperr.ErrorResponse{
			ErrorType: httperr.HttpPrimaryFetchError,
			Message:   err.Error(),
		})
	case errors.Is(err, fetch.ErrNoSnapshot):
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpNoSnapshotError,
			Message:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   err.Error(),
		})
	}
}
