package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"chargen/src/errors"
	"chargen/src/history"
	"chargen/src/store"
)

// PresetInfo summarizes a saved preset for listings.
type PresetInfo struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DB struct {
	db *sql.DB
}

// New opens (or creates) the local libSQL database and initializes the
// schema. Pass ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{db: db}
	if err := d.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return d, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *DB) initSchema() error {
	presetsSQL := `
	CREATE TABLE IF NOT EXISTS presets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		snapshot TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := d.db.Exec(presetsSQL); err != nil {
		return fmt.Errorf("failed to create presets table: %w", err)
	}

	historySQL := `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		prefix TEXT,
		snapshot TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := d.db.Exec(historySQL); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}

	indexSQL := `CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at)`
	if _, err := d.db.Exec(indexSQL); err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}

	return nil
}

// SavePreset stores a named snapshot, overwriting any preset with the
// same name.
func (d *DB) SavePreset(name string, snap store.Snapshot) error {
	if name == "" {
		return errors.WrapWithContext(errors.ErrInvalidInput, "preset name is empty")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.NewStorageError("encode", "presets", err)
	}
	upsertSQL := `
	INSERT INTO presets (name, snapshot, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET
		snapshot = excluded.snapshot,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := d.db.Exec(upsertSQL, name, string(payload)); err != nil {
		return errors.NewStorageError("insert", "presets", err)
	}
	return nil
}

// LoadPreset returns the snapshot stored under a name.
func (d *DB) LoadPreset(name string) (store.Snapshot, error) {
	var payload string
	err := d.db.QueryRow(`SELECT snapshot FROM presets WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return store.Snapshot{}, errors.WrapWithContext(errors.ErrPresetNotFound, "preset %q", name)
	}
	if err != nil {
		return store.Snapshot{}, errors.NewStorageError("query", "presets", err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return store.Snapshot{}, errors.NewStorageError("decode", "presets", err)
	}
	return snap, nil
}

// ListPresets returns saved presets, most recently updated first.
func (d *DB) ListPresets() ([]PresetInfo, error) {
	rows, err := d.db.Query(`SELECT name, updated_at FROM presets ORDER BY updated_at DESC`)
	if err != nil {
		return nil, errors.NewStorageError("query", "presets", err)
	}
	defer rows.Close()

	var out []PresetInfo
	for rows.Next() {
		var info PresetInfo
		if err := rows.Scan(&info.Name, &info.UpdatedAt); err != nil {
			return nil, errors.NewStorageError("scan", "presets", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeletePreset removes a preset by name.
func (d *DB) DeletePreset(name string) error {
	res, err := d.db.Exec(`DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return errors.NewStorageError("delete", "presets", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.WrapWithContext(errors.ErrPresetNotFound, "preset %q", name)
	}
	return nil
}

// SaveHistory replaces the persisted history with the given entries. The
// whole write runs in one transaction so a crash never leaves a mix of old
// and new entries.
func (d *DB) SaveHistory(entries []history.Entry) error {
	tx, err := d.db.Begin()
	if err != nil {
		return errors.NewStorageError("begin", "history", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history`); err != nil {
		return errors.NewStorageError("delete", "history", err)
	}

	insertSQL := `INSERT INTO history (id, prompt, prefix, snapshot, created_at) VALUES (?, ?, ?, ?, ?)`
	for _, e := range entries {
		payload, err := json.Marshal(e.Snapshot)
		if err != nil {
			return errors.NewStorageError("encode", "history", err)
		}
		if _, err := tx.Exec(insertSQL, e.ID, e.Prompt, e.Prefix, string(payload), e.CreatedAt); err != nil {
			return errors.NewStorageError("insert", "history", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageError("commit", "history", err)
	}
	return nil
}

// LoadHistory returns persisted entries, newest first. Entries with
// undecodable snapshots are skipped so one bad row can't block startup.
func (d *DB) LoadHistory() ([]history.Entry, error) {
	rows, err := d.db.Query(`
		SELECT id, prompt, prefix, snapshot, created_at
		FROM history ORDER BY created_at DESC LIMIT ?`, history.MaxEntries)
	if err != nil {
		return nil, errors.NewStorageError("query", "history", err)
	}
	defer rows.Close()

	var out []history.Entry
	for rows.Next() {
		var e history.Entry
		var prefix sql.NullString
		var payload string
		if err := rows.Scan(&e.ID, &e.Prompt, &prefix, &payload, &e.CreatedAt); err != nil {
			return nil, errors.NewStorageError("scan", "history", err)
		}
		e.Prefix = prefix.String
		if err := json.Unmarshal([]byte(payload), &e.Snapshot); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}
