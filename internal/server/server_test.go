package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/modules/reports"
	"github.com/masterc/wealthdesk/internal/replica"
	"github.com/masterc/wealthdesk/internal/scheduler"
	testingpkg "github.com/masterc/wealthdesk/internal/testing"
)

func newTestServer(t *testing.T, store *database.Store, refresher *replica.Refresher) http.Handler {
	t.Helper()
	return newTestServerWithScheduler(t, store, refresher, nil)
}

func newTestServerWithScheduler(t *testing.T, store *database.Store, refresher *replica.Refresher, sched *scheduler.Scheduler) http.Handler {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	srv := New(Config{
		Log:       log,
		Store:     store,
		Reports:   reports.NewService(store, reports.DefaultDisplayLimit, log),
		Refresher: refresher,
		Scheduler: sched,
		DataDir:   filepath.Dir(store.Path()),
		Port:      0,
		DevMode:   true,
	})
	return srv.Handler()
}

func missingStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "Base.sqlite")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	t.Run("healthy replica", func(t *testing.T) {
		h := newTestServer(t, testingpkg.NewBookStore(t), nil)
		rec := do(t, h, http.MethodGet, "/health")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "healthy")
	})

	t.Run("missing replica", func(t *testing.T) {
		h := newTestServer(t, missingStore(t), nil)
		rec := do(t, h, http.MethodGet, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "unhealthy")
	})
}

func TestServer_MountsReportRoutes(t *testing.T) {
	h := newTestServer(t, testingpkg.NewBookStore(t), nil)

	rec := do(t, h, http.MethodGet, "/api/clients/1/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "data")
	assert.Contains(t, body, "metadata")

	rec = do(t, h, http.MethodGet, "/api/benchmarks")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/nowhere/1/metrics")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodOptions, "/api/clients/1/metrics")
	assert.NotEqual(t, http.StatusInternalServerError, rec.Code)
}

func TestSystemHandlers_Status(t *testing.T) {
	t.Run("available replica", func(t *testing.T) {
		h := newTestServer(t, testingpkg.NewBookStore(t), nil)
		rec := do(t, h, http.MethodGet, "/api/system/status")
		require.Equal(t, http.StatusOK, rec.Code)

		var status SystemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "healthy", status.Status)
		assert.True(t, status.ReplicaAvailable)
		assert.Greater(t, status.ReplicaSizeBytes, int64(0))
		assert.False(t, status.RefreshSource)
		assert.Nil(t, status.LastRefresh)
		assert.Greater(t, status.Goroutines, 0)
	})

	t.Run("lists scheduled jobs", func(t *testing.T) {
		store := testingpkg.NewBookStore(t)
		sched := scheduler.New(zerolog.Nop())
		require.NoError(t, sched.AddJob("0 15 * * * *", scheduler.NewCheckReplicaJob(store, zerolog.Nop())))

		rec := do(t, newTestServerWithScheduler(t, store, nil, sched), http.MethodGet, "/api/system/status")
		require.Equal(t, http.StatusOK, rec.Code)

		var status SystemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		require.Len(t, status.Jobs, 1)
		assert.Equal(t, "check_replica", status.Jobs[0].Name)
		assert.Equal(t, "0 15 * * * *", status.Jobs[0].Schedule)
	})

	t.Run("missing replica", func(t *testing.T) {
		h := newTestServer(t, missingStore(t), nil)
		rec := do(t, h, http.MethodGet, "/api/system/status")
		require.Equal(t, http.StatusOK, rec.Code)

		var status SystemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "degraded", status.Status)
		assert.False(t, status.ReplicaAvailable)
	})
}

func TestSystemHandlers_DatabaseStats(t *testing.T) {
	h := newTestServer(t, testingpkg.NewBookStore(t), nil)
	rec := do(t, h, http.MethodGet, "/api/system/database")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats DatabaseStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Len(t, stats.Tables, len(database.ExpectedTables))
	require.NotNil(t, stats.File)
	assert.Greater(t, stats.File.PageCount, int64(0))

	rec = do(t, newTestServer(t, missingStore(t), nil), http.MethodGet, "/api/system/database")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSystemHandlers_DiskUsage(t *testing.T) {
	h := newTestServer(t, testingpkg.NewBookStore(t), nil)
	rec := do(t, h, http.MethodGet, "/api/system/disk")
	require.Equal(t, http.StatusOK, rec.Code)

	var usage DiskUsageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usage))
	assert.Greater(t, usage.DataDirMB, 0.0)
}

func TestSystemHandlers_ReplicaRefresh(t *testing.T) {
	seed := testingpkg.NewReplica(t)
	testingpkg.SeedBook(seed)
	seed.Close()
	payload, err := os.ReadFile(seed.Path)
	require.NoError(t, err)

	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer source.Close()

	t.Run("not configured", func(t *testing.T) {
		h := newTestServer(t, testingpkg.NewBookStore(t), nil)
		rec := do(t, h, http.MethodPost, "/api/replica/refresh")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("get does not refresh", func(t *testing.T) {
		h := newTestServer(t, testingpkg.NewBookStore(t), nil)
		rec := do(t, h, http.MethodGet, "/api/replica/refresh")
		assert.NotEqual(t, http.StatusOK, rec.Code)
	})

	t.Run("installs a fresh replica", func(t *testing.T) {
		store := missingStore(t)
		refresher := replica.NewRefresher(store, replica.NewHTTPSource(source.URL, nil), zerolog.Nop())
		h := newTestServer(t, store, refresher)

		rec := do(t, h, http.MethodGet, "/api/clients/1/metrics")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = do(t, h, http.MethodPost, "/api/replica/refresh")
		require.Equal(t, http.StatusOK, rec.Code)

		var result replica.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.NotEmpty(t, result.RunID)
		assert.Equal(t, int64(len(payload)), result.Bytes)

		rec = do(t, h, http.MethodGet, "/api/clients/1/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, h, http.MethodGet, "/api/system/status")
		var status SystemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.True(t, status.RefreshSource)
		require.NotNil(t, status.LastRefresh)
		assert.Equal(t, result.RunID, status.LastRefresh.RunID)
	})

	t.Run("rejects invalid content", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("garbage"))
		}))
		defer bad.Close()

		store := testingpkg.NewBookStore(t)
		refresher := replica.NewRefresher(store, replica.NewHTTPSource(bad.URL, nil), zerolog.Nop())
		rec := do(t, newTestServer(t, store, refresher), http.MethodPost, "/api/replica/refresh")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
