// Package history provides SQLite-based storage of solved blend requests.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/iwvelando/feed-blend/pkg/pearson"
)

// ErrNotFound is returned by Get for an unknown entry ID.
var ErrNotFound = errors.New("history entry not found")

// Entry is one recorded blend request and its outcome. Weights is empty
// when the request failed.
type Entry struct {
	ID           string                     `json:"id"`
	CreatedAt    time.Time                  `json:"createdAt"`
	Target       float64                    `json:"target"`
	FinalWeight  float64                    `json:"finalWeight"`
	Unit         string                     `json:"unit"`
	Ingredients  []pearson.Ingredient       `json:"ingredients"`
	Weights      []pearson.IngredientWeight `json:"weights,omitempty"`
	ErrorKind    string                     `json:"errorKind,omitempty"`
	ErrorMessage string                     `json:"errorMessage,omitempty"`
}

// NewEntry builds an entry from a solver call. errorKind classifies err for
// later filtering.
func NewEntry(ingredients []pearson.Ingredient, target, finalWeight float64, unit string,
	result *pearson.BlendResult, errorKind string, err error) Entry {
	e := Entry{
		Target:      target,
		FinalWeight: finalWeight,
		Unit:        unit,
		Ingredients: append([]pearson.Ingredient(nil), ingredients...),
	}
	if err != nil {
		e.ErrorKind = errorKind
		e.ErrorMessage = err.Error()
		return e
	}
	if result != nil {
		e.Weights = append([]pearson.IngredientWeight(nil), result.Blend...)
	}
	return e
}

// Failed reports whether the recorded request produced an error.
func (e Entry) Failed() bool {
	return e.ErrorKind != "" || e.ErrorMessage != ""
}

type row struct {
	ID              string  `db:"id"`
	CreatedAt       int64   `db:"created_at"`
	Target          float64 `db:"target"`
	FinalWeight     float64 `db:"final_weight"`
	Unit            string  `db:"unit"`
	IngredientsJSON string  `db:"ingredients_json"`
	WeightsJSON     string  `db:"weights_json"`
	ErrorKind       string  `db:"error_kind"`
	ErrorMessage    string  `db:"error_message"`
}

// Store wraps a SQLite connection for blend history.
type Store struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blends (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL,
		target REAL NOT NULL,
		final_weight REAL NOT NULL,
		unit TEXT NOT NULL,
		ingredients_json TEXT NOT NULL,
		weights_json TEXT NOT NULL,
		error_kind TEXT NOT NULL,
		error_message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blends_created ON blends(created_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Record stores an entry, assigning a new ID and the current time. The
// stored entry is returned.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()

	ingredientsJSON, err := json.Marshal(e.Ingredients)
	if err != nil {
		return Entry{}, fmt.Errorf("encode ingredients: %w", err)
	}
	weights := e.Weights
	if weights == nil {
		weights = []pearson.IngredientWeight{}
	}
	weightsJSON, err := json.Marshal(weights)
	if err != nil {
		return Entry{}, fmt.Errorf("encode weights: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `INSERT INTO blends
		(id, created_at, target, final_weight, unit, ingredients_json, weights_json, error_kind, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UnixNano(), e.Target, e.FinalWeight, e.Unit,
		string(ingredientsJSON), string(weightsJSON), e.ErrorKind, e.ErrorMessage,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert blend %s: %w", e.ID, err)
	}

	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}

	var rows []row
	err := s.conn.SelectContext(ctx, &rows, `SELECT
		id, created_at, target, final_weight, unit, ingredients_json, weights_json, error_kind, error_message
		FROM blends ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select blends: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	var r row
	err := s.conn.GetContext(ctx, &r, `SELECT
		id, created_at, target, final_weight, unit, ingredients_json, weights_json, error_kind, error_message
		FROM blends WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("select blend %s: %w", id, err)
	}
	return r.entry()
}

func (r row) entry() (Entry, error) {
	e := Entry{
		ID:           r.ID,
		CreatedAt:    time.Unix(0, r.CreatedAt).UTC(),
		Target:       r.Target,
		FinalWeight:  r.FinalWeight,
		Unit:         r.Unit,
		ErrorKind:    r.ErrorKind,
		ErrorMessage: r.ErrorMessage,
	}
	if err := json.Unmarshal([]byte(r.IngredientsJSON), &e.Ingredients); err != nil {
		return Entry{}, fmt.Errorf("decode ingredients of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.WeightsJSON), &e.Weights); err != nil {
		return Entry{}, fmt.Errorf("decode weights of %s: %w", r.ID, err)
	}
	if len(e.Weights) == 0 {
		e.Weights = nil
	}
	return e, nil
}
