package contextmgr

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/A1X6/saaschat/pkg/models"
)

// SummaryCache stores summarization output keyed by the span it summarizes,
// so re-optimizing an unchanged conversation prefix skips the provider call.
type SummaryCache struct {
	db  *sql.DB
	ttl time.Duration
}

const createSummaryTable = `
CREATE TABLE IF NOT EXISTS summary_cache (
	span_hash TEXT PRIMARY KEY,
	summary TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER NOT NULL
);
`

// NewSummaryCache opens (or creates) a summary cache with the given TTL.
func NewSummaryCache(dbPath string, ttl time.Duration) (*SummaryCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open summary cache db: %w", err)
	}

	if _, err := db.Exec(createSummaryTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate summary cache db: %w", err)
	}

	return &SummaryCache{db: db, ttl: ttl}, nil
}

// HashSpan computes a stable key for a model and the message span it would
// summarize.
func HashSpan(modelID string, span []models.Message) string {
	h := sha256.New()
	h.Write([]byte(modelID))
	data, _ := json.Marshal(span)
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get retrieves a cached summary. Returns false if absent or expired.
func (c *SummaryCache) Get(spanHash string) (string, bool) {
	var summary string
	var createdAt time.Time
	var ttlSeconds int64

	err := c.db.QueryRow(
		`SELECT summary, created_at, ttl_seconds FROM summary_cache WHERE span_hash = ?`,
		spanHash,
	).Scan(&summary, &createdAt, &ttlSeconds)
	if err != nil {
		return "", false
	}

	if time.Since(createdAt) > time.Duration(ttlSeconds)*time.Second {
		return "", false
	}
	return summary, true
}

// Put stores a summary.
func (c *SummaryCache) Put(spanHash, summary string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO summary_cache (span_hash, summary, created_at, ttl_seconds)
		 VALUES (?, ?, ?, ?)`,
		spanHash, summary, time.Now().UTC(), int64(c.ttl.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("summary cache put: %w", err)
	}
	return nil
}

// Clear removes entries. If expiredOnly is true, only expired entries go.
func (c *SummaryCache) Clear(expiredOnly bool) error {
	query := `DELETE FROM summary_cache`
	if expiredOnly {
		query = `DELETE FROM summary_cache WHERE (julianday('now') - julianday(created_at)) * 86400 > ttl_seconds`
	}
	if _, err := c.db.Exec(query); err != nil {
		return fmt.Errorf("summary cache clear: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *SummaryCache) Close() error {
	return c.db.Close()
}
