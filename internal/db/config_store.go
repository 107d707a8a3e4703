package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotOpen is returned when the store is used before Open.
var ErrNotOpen = errors.New("db: not open")

// GetConfig returns the value stored under key. Missing keys report
// sql.ErrNoRows.
func GetConfig(key string) (string, error) {
	if db == nil {
		return "", ErrNotOpen
	}
	var val string
	err := db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&val)
	if err != nil {
		return "", err
	}
	return val, nil
}

// LookupConfig is GetConfig with missing keys reported as ok=false.
func LookupConfig(key string) (string, bool, error) {
	val, err := GetConfig(key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

func SetConfig(key, value string) error {
	if db == nil {
		return ErrNotOpen
	}
	_, err := db.Exec(`
		INSERT INTO config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	return err
}
