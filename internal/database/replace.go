package database

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Replace swaps the replica for the file at srcPath. It runs on the store
// queue: queries submitted earlier complete against the old file, later ones
// see the new file. The candidate must contain every table in expected,
// otherwise the current replica is left untouched.
func (s *Store) Replace(srcPath string, expected []string) error {
	return s.submit(func() error {
		if err := verifyTables(srcPath, expected); err != nil {
			return err
		}

		s.closeConn()

		if err := os.Rename(srcPath, s.path); err != nil {
			return fmt.Errorf("failed to move replica into place: %w", err)
		}
		// Stale journal files belong to the previous replica
		for _, suffix := range []string{"-wal", "-shm", "-journal"} {
			_ = os.Remove(s.path + suffix)
		}

		if err := s.ensureOpen(); err != nil {
			return err
		}

		s.log.Info().Str("source", srcPath).Msg("Replica replaced")
		return nil
	})
}

func verifyTables(path string, expected []string) error {
	conn, err := openReadOnly(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReplica, err)
	}
	defer conn.Close()

	present, err := tableNames(conn)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReplica, err)
	}

	have := make(map[string]bool, len(present))
	for _, name := range present {
		have[name] = true
	}

	var missing []string
	for _, name := range expected {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing tables %s", ErrInvalidReplica, strings.Join(missing, ", "))
	}

	return nil
}

func tableNames(conn *sql.DB) ([]string, error) {
	rows, err := conn.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
