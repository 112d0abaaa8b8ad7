package eeprom

import (
	"database/sql"
	"errors"

	// registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

// SQLite is a Storage persisted in a sqlite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS variables (
			addr   INTEGER PRIMARY KEY,
			value  INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ReadVariable implements Storage.
func (s *SQLite) ReadVariable(addr uint16) (uint16, error) {
	var v int64
	err := s.db.QueryRow(`SELECT value FROM variables WHERE addr = ?`, int64(addr)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// WriteVariable implements Storage.
func (s *SQLite) WriteVariable(addr, value uint16) error {
	_, err := s.db.Exec(`
		INSERT INTO variables (addr, value) VALUES (?, ?)
		ON CONFLICT(addr) DO UPDATE SET value = excluded.value
	`, int64(addr), int64(value))
	return err
}
