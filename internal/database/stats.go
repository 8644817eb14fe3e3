package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
)

// TableStats describes one replica table
type TableStats struct {
	Name    string   `json:"name"`
	Rows    int64    `json:"rows"`
	Columns []string `json:"columns"`
}

// Stats returns database statistics
type Stats struct {
	SizeBytes     int64 `json:"size_bytes"`
	PageCount     int64 `json:"page_count"`
	PageSize      int64 `json:"page_size"`
	FreelistCount int64 `json:"freelist_count"`
}

// TableStats lists every table with its row count and column names
func (s *Store) TableStats() ([]TableStats, error) {
	var stats []TableStats

	err := s.Do(func(conn *sql.DB) error {
		names, err := tableNames(conn)
		if err != nil {
			return s.queryError("sqlite_master", err)
		}

		stats = make([]TableStats, 0, len(names))
		for _, name := range names {
			ident := quoteIdent(name)

			var count int64
			countQuery := "SELECT COUNT(*) FROM " + ident
			if err := conn.QueryRow(countQuery).Scan(&count); err != nil {
				return s.queryError(countQuery, err)
			}

			columns, err := tableColumns(conn, ident)
			if err != nil {
				return s.queryError("PRAGMA table_info", err)
			}

			stats = append(stats, TableStats{Name: name, Rows: count, Columns: columns})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// GetStats retrieves file level statistics
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	err := s.Do(func(conn *sql.DB) error {
		if fileInfo, err := os.Stat(s.path); err == nil {
			stats.SizeBytes = fileInfo.Size()
		}

		if err := conn.QueryRow("PRAGMA page_count").Scan(&stats.PageCount); err != nil {
			return fmt.Errorf("failed to get page count: %w", err)
		}
		if err := conn.QueryRow("PRAGMA page_size").Scan(&stats.PageSize); err != nil {
			return fmt.Errorf("failed to get page size: %w", err)
		}
		if err := conn.QueryRow("PRAGMA freelist_count").Scan(&stats.FreelistCount); err != nil {
			return fmt.Errorf("failed to get freelist count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// HealthCheck runs SQLite's quick_check against the replica
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.Do(func(conn *sql.DB) error {
		var result string
		if err := conn.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
			return fmt.Errorf("quick check query failed for %s: %w", s.name, err)
		}
		if result != "ok" {
			return fmt.Errorf("quick check failed for %s: %s", s.name, result)
		}
		return nil
	})
}

func tableColumns(conn *sql.DB, ident string) ([]string, error) {
	rows, err := conn.Query("PRAGMA table_info(" + ident + ")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// quoteIdent quotes a table name read from sqlite_master
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
