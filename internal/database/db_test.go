package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeReplica creates a SQLite file at path with the given statements applied
func writeReplica(t *testing.T, path string, statements ...string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func allTablesSchema(extra ...string) []string {
	statements := make([]string, 0, len(ExpectedTables)+len(extra))
	for _, name := range ExpectedTables {
		statements = append(statements, "CREATE TABLE "+name+" (id INTEGER, label TEXT, value REAL)")
	}
	return append(statements, extra...)
}

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()

	store, err := New(Config{Path: path, Name: "test"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type labelled struct {
	ID    int64
	Label sql.NullString
	Value sql.NullFloat64
}

func scanLabelled(row Scanner) (labelled, error) {
	var l labelled
	err := row.Scan(&l.ID, &l.Label, &l.Value)
	return l, err
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestStore_MissingReplica(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sqlite")
	store := newTestStore(t, path)

	assert.False(t, store.Available())

	_, err := Select(store, "SELECT 1", func(row Scanner) (int, error) {
		var v int
		return v, row.Scan(&v)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "a missing replica must not be created")
}

func TestStore_OpensLazilyOnceFileAppears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	store := newTestStore(t, path)

	_, _, err := Scalar[int64](store, "SELECT COUNT(*) FROM "+TableClients)
	require.ErrorIs(t, err, ErrStorageUnavailable)

	writeReplica(t, path, allTablesSchema()...)

	count, ok, err := Scalar[int64](store, "SELECT COUNT(*) FROM "+TableClients)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), count)
}

func TestSelect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema(
		"INSERT INTO "+TableClients+" VALUES (1, 'a', 1.5), (2, NULL, NULL), (3, 'c', 3.5)",
	)...)
	store := newTestStore(t, path)

	t.Run("bound parameters", func(t *testing.T) {
		rows, err := Select(store, "SELECT id, label, value FROM "+TableClients+" WHERE id >= ? ORDER BY id", scanLabelled, 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(2), rows[0].ID)
		assert.False(t, rows[0].Label.Valid)
		assert.Equal(t, "c", rows[1].Label.String)
	})

	t.Run("no match yields empty slice", func(t *testing.T) {
		rows, err := Select(store, "SELECT id, label, value FROM "+TableClients+" WHERE id = ?", scanLabelled, 99)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("malformed statement", func(t *testing.T) {
		_, err := Select(store, "SELECT id FROM no_such_table", scanLabelled)
		require.Error(t, err)

		var qerr *QueryError
		require.True(t, errors.As(err, &qerr))
		assert.Equal(t, "SELECT id FROM no_such_table", qerr.Query)
		assert.Contains(t, qerr.Error(), "no_such_table")
	})

	t.Run("scan error is a query error", func(t *testing.T) {
		_, err := Select(store, "SELECT id FROM "+TableClients, scanLabelled)
		var qerr *QueryError
		assert.True(t, errors.As(err, &qerr))
	})
}

func TestScalar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema(
		"INSERT INTO "+TableClients+" VALUES (1, 'a', 1.5), (2, NULL, NULL)",
	)...)
	store := newTestStore(t, path)

	value, ok, err := Scalar[float64](store, "SELECT value FROM "+TableClients+" WHERE id = ?", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.5, value)

	_, ok, err = Scalar[float64](store, "SELECT value FROM "+TableClients+" WHERE id = ?", 2)
	require.NoError(t, err)
	assert.False(t, ok, "NULL is reported as absent")

	_, ok, err = Scalar[float64](store, "SELECT value FROM "+TableClients+" WHERE id = ?", 3)
	require.NoError(t, err)
	assert.False(t, ok, "no row is reported as absent")

	_, _, err = Scalar[float64](store, "SELECT nope FROM "+TableClients)
	var qerr *QueryError
	assert.True(t, errors.As(err, &qerr))
}

func TestStore_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema()...)
	store := newTestStore(t, path)

	err := store.Do(func(conn *sql.DB) error {
		_, err := conn.Exec("INSERT INTO " + TableClients + " VALUES (1, 'x', 1)")
		return err
	})
	assert.Error(t, err)
}

func TestStore_RequestsRunInSubmissionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema()...)
	store := newTestStore(t, path)

	var (
		mu         sync.Mutex
		order      []int
		active     int32
		overlapped atomic.Bool
	)

	record := func(i int) func(*sql.DB) error {
		return func(*sql.DB) error {
			if atomic.AddInt32(&active, 1) > 1 {
				overlapped.Store(true)
			}
			time.Sleep(100 * time.Microsecond)

			mu.Lock()
			order = append(order, i)
			mu.Unlock()

			atomic.AddInt32(&active, -1)
			return nil
		}
	}

	// Sequential submissions from one goroutine must be served in order
	for i := 0; i < 20; i++ {
		require.NoError(t, store.Do(record(i)))
	}

	var wg sync.WaitGroup
	for i := 20; i < 60; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Do(record(i)))
		}(i)
	}
	wg.Wait()

	require.Len(t, order, 60)
	for i := 0; i < 20; i++ {
		assert.Equal(t, i, order[i])
	}
	assert.False(t, overlapped.Load(), "requests never overlap")
}

func TestStore_QueuedRequestsRunFIFO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema()...)
	store := newTestStore(t, path)

	// Hold the worker so every later request waits in the queue
	started := make(chan struct{})
	release := make(chan struct{})
	blocked := make(chan error, 1)
	go func() {
		blocked <- store.Do(func(*sql.DB) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	const n = 30
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Do(func(*sql.DB) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			}))
		}(i)

		// The next sender starts only once this request sits in the queue
		require.Eventually(t, func() bool { return len(store.requests) == i+1 },
			2*time.Second, time.Millisecond)
	}

	close(release)
	require.NoError(t, <-blocked)
	wg.Wait()

	expected := make([]int, n)
	for i := range expected {
		expected[i] = i
	}
	assert.Equal(t, expected, order)
}

func TestStore_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema()...)

	store, err := New(Config{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "replica", store.Name())

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close is idempotent")

	err = store.Do(func(*sql.DB) error { return nil })
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestStore_RecoversFromPanickingRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema()...)
	store := newTestStore(t, path)

	err := store.Do(func(*sql.DB) error { panic("boom") })
	require.Error(t, err)

	_, ok, err := Scalar[int64](store, "SELECT 1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Replace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Base.sqlite")
	writeReplica(t, path, allTablesSchema(
		"INSERT INTO "+TableClients+" VALUES (1, 'old', 1)",
	)...)
	store := newTestStore(t, path)

	label, _, err := Scalar[string](store, "SELECT label FROM "+TableClients)
	require.NoError(t, err)
	assert.Equal(t, "old", label)

	t.Run("rejects incomplete replica", func(t *testing.T) {
		candidate := filepath.Join(dir, "incomplete.sqlite")
		writeReplica(t, candidate, "CREATE TABLE "+TableClients+" (id INTEGER, label TEXT, value REAL)")

		err := store.Replace(candidate, ExpectedTables)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidReplica)
		assert.Contains(t, err.Error(), TableBenchmarks)

		label, _, err := Scalar[string](store, "SELECT label FROM "+TableClients)
		require.NoError(t, err)
		assert.Equal(t, "old", label, "current replica is kept")
	})

	t.Run("rejects missing candidate", func(t *testing.T) {
		err := store.Replace(filepath.Join(dir, "nope.sqlite"), ExpectedTables)
		assert.ErrorIs(t, err, ErrInvalidReplica)
	})

	t.Run("swaps in a valid replica", func(t *testing.T) {
		candidate := filepath.Join(dir, "fresh.sqlite")
		writeReplica(t, candidate, allTablesSchema(
			"INSERT INTO "+TableClients+" VALUES (1, 'new', 1)",
		)...)

		require.NoError(t, store.Replace(candidate, ExpectedTables))

		label, _, err := Scalar[string](store, "SELECT label FROM "+TableClients)
		require.NoError(t, err)
		assert.Equal(t, "new", label)
		assert.NoFileExists(t, candidate)
	})
}

func TestStore_TableStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema(
		"INSERT INTO "+TableBenchmarks+" VALUES (1, 'a', 1), (2, 'b', 2)",
	)...)
	store := newTestStore(t, path)

	stats, err := store.TableStats()
	require.NoError(t, err)
	require.Len(t, stats, len(ExpectedTables))

	byName := make(map[string]TableStats)
	for _, s := range stats {
		byName[s.Name] = s
	}
	assert.Equal(t, int64(2), byName[TableBenchmarks].Rows)
	assert.Equal(t, int64(0), byName[TableClients].Rows)
	assert.Equal(t, []string{"id", "label", "value"}, byName[TableClients].Columns)

	fileStats, err := store.GetStats()
	require.NoError(t, err)
	assert.Greater(t, fileStats.SizeBytes, int64(0))
	assert.Greater(t, fileStats.PageCount, int64(0))
}

func TestStore_HealthCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Base.sqlite")
	writeReplica(t, path, allTablesSchema()...)
	store := newTestStore(t, path)

	assert.NoError(t, store.HealthCheck(context.Background()))
}
