package store

import (
	"database/sql"
	"errors"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

// Set upserts a key-value pair in the app_state table.
func (s *Store) Set(key, value string) error {
	return set(s.db, key, value)
}

// Get returns the value for key.
// Returns empty string, false and nil error if the key is missing.
func (s *Store) Get(key string) (string, bool, error) {
	return get(s.db, key)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, key)
	return err
}

func set(db execer, key, value string) error {
	_, err := db.Exec(
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

func get(db queryer, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
