// Package cache keeps the daily cost history of each provider in a local SQLite database,
// so history survives between runs and sources that only return recent data.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
)

// DefaultFileName is the database file created under the user cache dir.
const DefaultFileName = "history.db"

// HistoryCacheImpl implements HistoryCache on SQLite.
type HistoryCacheImpl struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.HistoryCache = (*HistoryCacheImpl)(nil)

// DefaultPath returns <user cache dir>/multicloud-finops/history.db.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache dir: %w", err)
	}
	return filepath.Join(dir, "multicloud-finops", DefaultFileName), nil
}

// Open opens or creates the cache database at dbPath.
func Open(dbPath string) (*HistoryCacheImpl, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &HistoryCacheImpl{db: db, now: time.Now}, nil
}

// Close closes the cache database.
func (c *HistoryCacheImpl) Close() error {
	return c.db.Close()
}

// Load returns the cached series of providerID in ascending date order.
func (c *HistoryCacheImpl) Load(ctx context.Context, providerID string) (entity.CostSeries, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT day, cost FROM daily_costs WHERE provider_id = ? ORDER BY day", providerID)
	if err != nil {
		return nil, fmt.Errorf("querying history of %s: %w", providerID, err)
	}
	defer func() { _ = rows.Close() }()

	series := entity.CostSeries{}
	for rows.Next() {
		var (
			day  string
			cost float64
		)
		if err := rows.Scan(&day, &cost); err != nil {
			return nil, fmt.Errorf("reading history of %s: %w", providerID, err)
		}
		date, err := time.Parse(entity.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("invalid cached day %q for %s: %w", day, providerID, err)
		}
		series = append(series, entity.CostDataPoint{Date: date, Cost: cost})
	}
	return series, rows.Err()
}

// Save upserts series by date. Dates already cached and absent from series are kept.
func (c *HistoryCacheImpl) Save(ctx context.Context, providerID string, series entity.CostSeries) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO daily_costs (provider_id, day, cost, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (provider_id, day) DO UPDATE SET cost = excluded.cost, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := c.now().UTC().Format(time.RFC3339)
	for _, p := range series {
		if _, err := stmt.ExecContext(ctx, providerID, p.Date.Format(entity.DateLayout), p.Cost, now); err != nil {
			return fmt.Errorf("saving %s of %s: %w", p.Date.Format(entity.DateLayout), providerID, err)
		}
	}

	return tx.Commit()
}
