package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtside-lab/project-courtside/internal/core/aggregate"
	"github.com/courtside-lab/project-courtside/internal/core/join"
	"github.com/courtside-lab/project-courtside/internal/fetch"
	"github.com/courtside-lab/project-courtside/internal/screen"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	snap       *fetch.Snapshot
	refreshErr error
	refreshes  int
}

func (s *stubService) Refresh(_ context.Context, name string) (*fetch.Snapshot, error) {
	s.refreshes++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.snap, nil
}

func (s *stubService) Snapshot(string) (*fetch.Snapshot, bool) {
	if s.snap == nil {
		return nil, false
	}
	return s.snap, true
}

func (s *stubService) Summary(string, aggregate.Window) (aggregate.Bucket, error) {
	return aggregate.Bucket{}, nil
}

func (s *stubService) Recent(string, int) ([]join.ViewRecord, error) {
	return s.snap.Records, nil
}

func newTestRouter(t *testing.T, svc RefreshService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := screen.NewStaticRepository(screen.Definition{
		Name:         "bookings",
		Endpoint:     "/bookings",
		SearchFields: []string{"id", "resolvedStadiumName"},
	})
	require.NoError(t, err)

	r := gin.New()
	NewHandler(svc, repo, 10, 5).RegisterRoutes(r)
	return r
}

func snapshotWith(n int) *fetch.Snapshot {
	records := make([]join.ViewRecord, n)
	for i := range records {
		records[i] = join.ViewRecord{"id": fmt.Sprintf("b%02d", i), "resolvedStadiumName": "Alpha Court"}
	}
	return &fetch.Snapshot{
		ID:      uuid.New(),
		Screen:  "bookings",
		TakenAt: time.Now().UTC(),
		Records: records,
	}
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestScreenRecords(t *testing.T) {
	svc := &stubService{snap: snapshotWith(23)}
	r := newTestRouter(t, svc)

	w := get(r, "/api/v1/screens/bookings/records")
	require.Equal(t, http.StatusOK, w.Code)

	var res recordsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 23, res.TotalCount)
	require.Equal(t, 3, res.TotalPages)
	require.Equal(t, 1, res.Page)
	require.Len(t, res.Records, 10)
	require.Zero(t, svc.refreshes) // snapshot already published
}

func TestScreenRecordsPageBoundary(t *testing.T) {
	r := newTestRouter(t, &stubService{snap: snapshotWith(23)})

	w := get(r, "/api/v1/screens/bookings/records?page=4")
	require.Equal(t, http.StatusOK, w.Code)

	var res recordsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 1, res.Page) // out of range: previous page retained

	w = get(r, "/api/v1/screens/bookings/records?page=3")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 3, res.Page)
	require.Len(t, res.Records, 3)

	w = get(r, "/api/v1/screens/bookings/records?page=abc")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScreenRecordsSearch(t *testing.T) {
	r := newTestRouter(t, &stubService{snap: snapshotWith(23)})

	w := get(r, "/api/v1/screens/bookings/records?q=b01")
	var res recordsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 1, res.TotalCount)
}

func TestUnknownScreen(t *testing.T) {
	r := newTestRouter(t, &stubService{snap: snapshotWith(1)})

	w := get(r, "/api/v1/screens/ghosts/records")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "unknown_screen")
}

func TestRefreshOnDemandAndPrimaryFailure(t *testing.T) {
	svc := &stubService{refreshErr: fmt.Errorf("%w: upstream down", fetch.ErrPrimaryFetch)}
	r := newTestRouter(t, svc)

	w := get(r, "/api/v1/screens/bookings/records")
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "primary_fetch_failed")
	require.Equal(t, 1, svc.refreshes)
}

func TestSummaryValidation(t *testing.T) {
	r := newTestRouter(t, &stubService{snap: snapshotWith(1)})

	w := get(r, "/api/v1/screens/bookings/summary?month=13&year=2025")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid_query")

	w = get(r, "/api/v1/screens/bookings/summary?month=3&year=2025")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRecentEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubService{snap: snapshotWith(2)})

	w := get(r, "/api/v1/screens/bookings/recent")
	require.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/api/v1/screens/bookings/recent?limit=0")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
