// Package cache keeps the city list on disk so repeated `list cities`
// invocations do not hammer the service. Entries expire after an hour.
package cache

import (
	"database/sql"
	"time"

	"github.com/edmundmok/mealpy/core"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// TTL is the freshness window for a cached city list.
const TTL = time.Hour

// DB wraps the sqlite cache file.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens the cache database and runs migrations.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS cities (
			position INTEGER PRIMARY KEY,
			object_id TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (db *DB) Close() error { return db.conn.Close() }

// Cities returns the cached list and whether it is still fresh. A stale
// or empty cache returns ok=false; the caller refetches and Puts.
func (db *DB) Cities() ([]core.City, bool, error) {
	var fetchedAt string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = 'fetched_at'`).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	at, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil || db.now().After(at.Add(TTL)) {
		return nil, false, nil
	}

	rows, err := db.conn.Query(`SELECT object_id, name FROM cities ORDER BY position`)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var cities []core.City
	for rows.Next() {
		var c core.City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, false, err
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(cities) == 0 {
		return nil, false, nil
	}
	return cities, true, nil
}

// Put replaces the cached list and stamps it with the current time.
func (db *DB) Put(cities []core.City) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cities`); err != nil {
		return err
	}
	for i, c := range cities {
		if _, err := tx.Exec(`INSERT INTO cities (position, object_id, name) VALUES (?, ?, ?)`,
			i, c.ID, c.Name); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('fetched_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		db.now().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}
