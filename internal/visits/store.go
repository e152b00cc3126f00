// Package visits keeps a privacy-conscious log of page views in SQLite.
// Client addresses are stored only as salted, truncated hashes.
package visits

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Visit is one recorded page view.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	RouteKey  string    `json:"route_key"`
	WorkCode  string    `json:"work_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Count is a key with its number of visits.
type Count struct {
	Key    string `json:"key"`
	Visits int64  `json:"visits"`
}

// Stats summarizes the log for the admin dashboard.
type Stats struct {
	TotalVisits    int64   `json:"total_visits"`
	UniqueVisitors int64   `json:"unique_visitors"`
	VisitsToday    int64   `json:"visits_today"`
	VisitsThisWeek int64   `json:"visits_this_week"`
	TopRoutes      []Count `json:"top_routes"`
	TopWorks       []Count `json:"top_works"`
	RecentVisits   []Visit `json:"recent_visits"`
}

// Store wraps the visits database.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return newStore(db)
}

// OpenMemory creates an in-memory database (useful for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "opening in-memory database")
	}
	// Every pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	return newStore(db)
}

func newStore(db *sql.DB) (*Store, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating visits table")
	}
	salt, err := randomHex(32)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, salt: salt, now: time.Now}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	route_key TEXT NOT NULL DEFAULT '',
	work_code TEXT NOT NULL DEFAULT '',
	timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
`

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashIP hashes ip with the per-process salt. The same address gives the
// same hash for the lifetime of the store.
func (s *Store) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Record stores one page view. The address is hashed before it is written.
func (s *Store) Record(ctx context.Context, ip, userAgent, path, routeKey, workCode string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (hashed_ip, user_agent, path, route_key, work_code, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.HashIP(ip), userAgent, path, routeKey, workCode, s.now().UTC())
	if err != nil {
		return errors.Wrap(err, "recording visit")
	}
	return nil
}

// Cleanup deletes visits older than retention and returns how many were removed.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-retention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "cleaning up visits")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats computes the dashboard summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisits, `SELECT COUNT(*) FROM visits`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visits`, nil},
		{&stats.VisitsToday, `SELECT COUNT(*) FROM visits WHERE timestamp >= ?`, []any{today}},
		{&stats.VisitsThisWeek, `SELECT COUNT(*) FROM visits WHERE timestamp >= ?`, []any{now.Add(-7 * 24 * time.Hour)}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, errors.Wrap(err, "counting visits")
		}
	}

	var err error
	stats.TopRoutes, err = s.top(ctx, "route_key", 10)
	if err != nil {
		return nil, err
	}
	stats.TopWorks, err = s.top(ctx, "work_code", 10)
	if err != nil {
		return nil, err
	}
	stats.RecentVisits, err = s.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// top groups by column, which must be one of the fixed column names above.
func (s *Store) top(ctx context.Context, column string, limit int) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+column+`, COUNT(*) AS n FROM visits
		WHERE `+column+` != ''
		GROUP BY `+column+`
		ORDER BY n DESC, `+column+` ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "querying top %s", column)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Visits); err != nil {
			return nil, errors.Wrapf(err, "scanning top %s", column)
		}
		out = append(out, c)
	}
	return out, errors.Wrapf(rows.Err(), "reading top %s", column)
}

// Recent returns the newest visits first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, route_key, work_code, timestamp
		FROM visits
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent visits")
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.RouteKey, &v.WorkCode, &v.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scanning visit")
		}
		out = append(out, v)
	}
	return out, errors.Wrap(rows.Err(), "reading recent visits")
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generating random bytes")
	}
	return hex.EncodeToString(b), nil
}

// NewToken returns a random hex token suitable for an admin session cookie.
func NewToken() (string, error) {
	return randomHex(32)
}
