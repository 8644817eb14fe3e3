package database

import (
	"database/sql"
	"errors"
)

// Scanner is satisfied by *sql.Row and *sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

// Select runs query with bound args and maps every row through scan.
// A query matching nothing returns an empty, non-nil slice.
func Select[T any](s *Store, query string, scan func(Scanner) (T, error), args ...any) ([]T, error) {
	results := []T{}

	err := s.Do(func(conn *sql.DB) error {
		rows, err := conn.Query(query, args...)
		if err != nil {
			return s.queryError(query, err)
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return s.queryError(query, err)
			}
			results = append(results, item)
		}

		if err := rows.Err(); err != nil {
			return s.queryError(query, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Scalar runs a single-value query. ok is false when there is no row or the value is NULL.
func Scalar[T any](s *Store, query string, args ...any) (value T, ok bool, err error) {
	err = s.Do(func(conn *sql.DB) error {
		var v sql.Null[T]
		if err := conn.QueryRow(query, args...).Scan(&v); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return s.queryError(query, err)
		}
		value, ok = v.V, v.Valid
		return nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return value, ok, nil
}

func (s *Store) queryError(query string, err error) error {
	s.log.Error().Err(err).Str("query", query).Msg("Query failed")
	return &QueryError{Query: query, Err: err}
}
