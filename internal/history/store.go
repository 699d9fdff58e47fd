package history

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/ironsheep/nutrition-lens/internal/nutrition"
	"github.com/ironsheep/nutrition-lens/internal/pipeline"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("scan record not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

const timeLayout = "2006-01-02T15:04:05.000Z"

var schema = []string{`
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		digest TEXT NOT NULL DEFAULT '',
		verdict TEXT NOT NULL,
		result TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_digest ON scans(digest)`,
}

// Record is one stored scan.
type Record struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Source    string               `json:"source,omitempty"`
	Digest    string               `json:"digest,omitempty"`
	Verdict   nutrition.Verdict    `json:"verdict"`
	Result    *pipeline.ScanResult `json:"result"`
}

// Summary is the listing form of a Record.
type Summary struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Source    string            `json:"source,omitempty"`
	Verdict   nutrition.Verdict `json:"verdict"`
	Nutrients int               `json:"nutrients"`
	Allergens []string          `json:"allergens"`
}

// Summary drops the stored text and tables.
func (r *Record) Summary() Summary {
	s := Summary{ID: r.ID, CreatedAt: r.CreatedAt, Source: r.Source, Verdict: r.Verdict, Allergens: []string{}}
	if r.Result != nil {
		s.Nutrients = r.Result.Nutrition.Len()
		if r.Result.Allergens != nil {
			s.Allergens = r.Result.Allergens
		}
	}
	return s
}

// Summaries maps Summary over records.
func Summaries(records []*Record) []Summary {
	out := make([]Summary, 0, len(records))
	for _, r := range records {
		out = append(out, r.Summary())
	}
	return out
}

// Store is a SQLite-backed scan history. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite serializes writers, and every ":memory:" connection is its own database.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create history schema: %w", err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Digest returns the hex BLAKE2b-256 digest of data, or "" for no data.
func Digest(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save stores result. image may be nil when the result came from plain text.
func (s *Store) Save(ctx context.Context, source string, image []byte, result *pipeline.ScanResult) (*Record, error) {
	if result == nil {
		return nil, errors.New("nil scan result")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scan result: %w", err)
	}

	rec := &Record{
		ID:        uuid.New().String(),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Source:    source,
		Digest:    Digest(image),
		Verdict:   result.Rating.Verdict,
		Result:    result,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, created_at, source, digest, verdict, result) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(timeLayout), rec.Source, rec.Digest, string(rec.Verdict), string(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}
	return rec, nil
}

// SaveOnce is Save, except that an image already stored with the same
// recognized text returns the existing record and true instead of a new row.
func (s *Store) SaveOnce(ctx context.Context, source string, image []byte, result *pipeline.ScanResult) (*Record, bool, error) {
	if result == nil {
		return nil, false, errors.New("nil scan result")
	}
	existing, err := s.FindByDigest(ctx, Digest(image))
	switch {
	case err == nil && existing.Result != nil && existing.Result.RawText == result.RawText:
		return existing, true, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, false, err
	}
	rec, err := s.Save(ctx, source, image, result)
	return rec, false, err
}

// Get returns the record with the given ID or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, digest, verdict, result FROM scans WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan %s: %w", id, err)
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, digest, verdict, result FROM scans ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return records, nil
}

// FindByDigest returns the newest record for an image digest or ErrNotFound.
func (s *Store) FindByDigest(ctx context.Context, digest string) (*Record, error) {
	if digest == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, digest, verdict, result FROM scans WHERE digest = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, digest)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scan by digest: %w", err)
	}
	return rec, nil
}

// Delete removes a record. Deleting an unknown ID returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete scan %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec       Record
		createdAt string
		verdict   string
		payload   string
	)
	if err := row.Scan(&rec.ID, &createdAt, &rec.Source, &rec.Digest, &verdict, &payload); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = t
	rec.Verdict = nutrition.Verdict(verdict)

	rec.Result = &pipeline.ScanResult{}
	if err := json.Unmarshal([]byte(payload), rec.Result); err != nil {
		return nil, fmt.Errorf("failed to decode scan result: %w", err)
	}
	return &rec, nil
}
