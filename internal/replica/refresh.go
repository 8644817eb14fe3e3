package replica

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
)

// Result describes a completed refresh
type Result struct {
	RunID       string                `json:"run_id"`
	Source      string                `json:"source"`
	Bytes       int64                 `json:"bytes"`
	Duration    time.Duration         `json:"duration"`
	Tables      []database.TableStats `json:"tables"`
	CompletedAt time.Time             `json:"completed_at"`
}

// Refresher downloads a replica next to the live one and swaps it in through
// the store queue, so a swap never overlaps a running query.
// mu serializes runs only; last is readable while a run is in flight.
type Refresher struct {
	mu     sync.Mutex
	store  *database.Store
	source Source
	last   atomic.Pointer[Result]
	log    zerolog.Logger
}

// NewRefresher creates a refresher; a nil source makes Refresh fail with ErrNotConfigured
func NewRefresher(store *database.Store, source Source, log zerolog.Logger) *Refresher {
	return &Refresher{
		store:  store,
		source: source,
		log:    log.With().Str("component", "replica_refresher").Logger(),
	}
}

// Configured reports whether a source is set
func (r *Refresher) Configured() bool {
	return r.source != nil
}

// Last returns the most recent successful refresh, or nil
func (r *Refresher) Last() *Result {
	return r.last.Load()
}

// Refresh fetches, verifies and installs a new replica. Concurrent calls run one after the other.
func (r *Refresher) Refresh(ctx context.Context) (*Result, error) {
	if r.source == nil {
		return nil, ErrNotConfigured
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.New().String()
	log := r.log.With().Str("run_id", runID).Str("source", r.source.Name()).Logger()
	start := time.Now()

	tmp, err := os.CreateTemp(filepath.Dir(r.store.Path()), ".replica-*.sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp replica: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	installed := false
	defer func() {
		if !installed {
			_ = os.Remove(tmpPath)
		}
	}()

	log.Info().Msg("Fetching replica")
	n, err := r.source.Fetch(ctx, tmpPath)
	if err != nil {
		log.Error().Err(err).Msg("Replica fetch failed")
		return nil, err
	}

	if err := r.store.Replace(tmpPath, database.ExpectedTables); err != nil {
		log.Error().Err(err).Msg("Replica rejected")
		return nil, fmt.Errorf("failed to install replica: %w", err)
	}
	installed = true

	tables, err := r.store.TableStats()
	if err != nil {
		return nil, fmt.Errorf("failed to read table statistics: %w", err)
	}
	for _, t := range tables {
		log.Info().Str("table", t.Name).Int64("rows", t.Rows).Msg("Replica table")
	}

	result := &Result{
		RunID:       runID,
		Source:      r.source.Name(),
		Bytes:       n,
		Duration:    time.Since(start),
		Tables:      tables,
		CompletedAt: time.Now().UTC(),
	}
	r.last.Store(result)

	log.Info().Int64("bytes", n).Dur("duration", result.Duration).Msg("Replica refreshed")
	return result, nil
}
