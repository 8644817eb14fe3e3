// Package database provides serialized, read-only access to the local replica.
//
// All statements run on a single worker goroutine that owns the *sql.DB handle.
// Callers may submit from any goroutine; requests execute one at a time in
// submission order. Replacing the replica goes through the same queue, so it
// never overlaps an in-flight query.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// queueDepth bounds how many requests may wait without blocking their sender.
// Senders beyond it block on the channel, which keeps FIFO order.
const queueDepth = 64

// Config holds store configuration
type Config struct {
	Path string
	Name string // Friendly name for logging (e.g., "replica")
}

// Store owns the single connection to the replica
type Store struct {
	path     string
	name     string
	log      zerolog.Logger
	conn     *sql.DB // touched only by the worker goroutine
	requests chan request
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

type request struct {
	fn        func(conn *sql.DB) error
	needsConn bool
	reply     chan error
}

// New creates a store and starts its worker. The replica is opened lazily on
// the first request, so a missing file is reported per query rather than here.
func New(cfg Config, log zerolog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}

	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
	}

	if cfg.Name == "" {
		cfg.Name = "replica"
	}

	s := &Store{
		path:     absPath,
		name:     cfg.Name,
		log:      log.With().Str("component", "store").Str("database", cfg.Name).Logger(),
		requests: make(chan request, queueDepth),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	go s.run()

	return s, nil
}

// Path returns the absolute replica path
func (s *Store) Path() string {
	return s.path
}

// Name returns the store name used in logs
func (s *Store) Name() string {
	return s.name
}

// Available reports whether the replica file is present on disk
func (s *Store) Available() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Close stops the worker and closes the connection. Requests already queued
// are executed first; later submissions fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.done) })
	<-s.stopped
	return nil
}

// Do runs fn on the worker goroutine with an open connection.
// fn must not retain conn after returning.
func (s *Store) Do(fn func(conn *sql.DB) error) error {
	return s.enqueue(request{fn: fn, needsConn: true})
}

// submit queues fn without opening the connection first
func (s *Store) submit(fn func() error) error {
	return s.enqueue(request{fn: func(*sql.DB) error { return fn() }})
}

func (s *Store) enqueue(req request) error {
	req.reply = make(chan error, 1)

	select {
	case s.requests <- req:
	case <-s.done:
		return ErrStoreClosed
	}

	select {
	case err := <-req.reply:
		return err
	case <-s.stopped:
		select {
		case err := <-req.reply:
			return err
		default:
			return ErrStoreClosed
		}
	}
}

func (s *Store) run() {
	defer close(s.stopped)

	for {
		select {
		case req := <-s.requests:
			req.reply <- s.handle(req)
		case <-s.done:
			s.drain()
			s.closeConn()
			return
		}
	}
}

// drain serves requests that were accepted before Close.
func (s *Store) drain() {
	for {
		select {
		case req := <-s.requests:
			req.reply <- s.handle(req)
		default:
			return
		}
	}
}

func (s *Store) handle(req request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Store request panicked")
			err = fmt.Errorf("store request panicked: %v", r)
		}
	}()

	if req.needsConn {
		if err := s.ensureOpen(); err != nil {
			return err
		}
	}
	return req.fn(s.conn)
}

func (s *Store) ensureOpen() error {
	if s.conn != nil {
		return nil
	}

	conn, err := openReadOnly(s.path)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Replica unavailable")
		return err
	}

	s.conn = conn
	s.log.Info().Str("path", s.path).Msg("Replica opened")
	return nil
}

func (s *Store) closeConn() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to close replica connection")
	}
	s.conn = nil
	s.log.Info().Msg("Replica closed")
}

// openReadOnly opens an existing replica file. It never creates one.
func openReadOnly(path string) (*sql.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrStorageUnavailable, path)
	}

	conn, err := sql.Open("sqlite", buildConnectionString(path))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrStorageUnavailable, path, err)
	}

	// The worker is the only user of the handle
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: failed to ping %s: %v", ErrStorageUnavailable, path, err)
	}

	return conn, nil
}

// buildConnectionString creates the SQLite connection string for a read-only replica
func buildConnectionString(path string) string {
	connStr := path + "?_pragma=query_only(1)"
	connStr += "&_pragma=busy_timeout(5000)"
	connStr += "&_pragma=temp_store(MEMORY)"
	connStr += "&_pragma=cache_size(-64000)" // 64MB cache (negative = KB)
	return connStr
}
