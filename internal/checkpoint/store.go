// Package checkpoint persists correction-model weights in SQLite, keyed by
// model name.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	model_name  TEXT PRIMARY KEY,
	weights     BLOB NOT NULL,
	size        INTEGER NOT NULL,
	updated_at  TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. Use ":memory:" for a private
// in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the weights stored under name.
func (s *Store) Save(ctx context.Context, name string, weights []float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (model_name, weights, size, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(model_name) DO UPDATE SET
			weights = excluded.weights,
			size = excluded.size,
			updated_at = excluded.updated_at`,
		name, encode(weights), len(weights), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save checkpoint %q: %w", name, err)
	}
	return nil
}

// Load returns the weights stored under name. ok is false when there are
// none.
func (s *Store) Load(ctx context.Context, name string) ([]float64, bool, error) {
	var (
		blob []byte
		size int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT weights, size FROM checkpoints WHERE model_name = ?`, name).Scan(&blob, &size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint %q: %w", name, err)
	}
	w, err := decode(blob)
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint %q: %w", name, err)
	}
	if len(w) != size {
		return nil, false, fmt.Errorf("load checkpoint %q: %d weights stored, header says %d", name, len(w), size)
	}
	return w, true, nil
}

// Models lists the stored model names.
func (s *Store) Models(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT model_name FROM checkpoints ORDER BY model_name`)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func encode(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decode(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
