package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// StatsRecord is one persisted row of raster_stats.
type StatsRecord struct {
	IndexName       string    `json:"index_name" csv:"index_name"`
	MinValue        float64   `json:"min_value" csv:"min_value"`
	MaxValue        float64   `json:"max_value" csv:"max_value"`
	MeanValue       float64   `json:"mean_value" csv:"mean_value"`
	StdDev          float64   `json:"std_dev" csv:"std_dev"`
	CloudCover      float64   `json:"cloud_cover" csv:"cloud_cover"`
	CalculationDate time.Time `json:"calculation_date" csv:"calculation_date"`
}

// StatsStore persists index statistics.
type StatsStore interface {
	SaveStats(ctx context.Context, rec StatsRecord) error
	History(ctx context.Context, limit int) ([]StatsRecord, error)
}

// PostgresStore writes to a raster_stats table. Each call opens its own
// connection and releases it when done; the save path is a single
// parameterized insert with no retry.
type PostgresStore struct {
	dsn string
}

func NewPostgresStore(dsn string) *PostgresStore {
	return &PostgresStore{dsn: dsn}
}

// Migrate creates the raster_stats table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS raster_stats (
			index_name       TEXT             NOT NULL,
			min_value        DOUBLE PRECISION NOT NULL,
			max_value        DOUBLE PRECISION NOT NULL,
			mean_value       DOUBLE PRECISION NOT NULL,
			std_dev          DOUBLE PRECISION NOT NULL,
			cloud_cover      DOUBLE PRECISION NOT NULL,
			calculation_date TIMESTAMPTZ      NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create raster_stats table: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveStats(ctx context.Context, rec StatsRecord) error {
	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
		INSERT INTO raster_stats (
			index_name,
			min_value,
			max_value,
			mean_value,
			std_dev,
			cloud_cover,
			calculation_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.IndexName,
		rec.MinValue,
		rec.MaxValue,
		rec.MeanValue,
		rec.StdDev,
		rec.CloudCover,
		rec.CalculationDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stats row: %w", err)
	}
	return nil
}

// History returns the most recent saved rows, newest first.
func (s *PostgresStore) History(ctx context.Context, limit int) ([]StatsRecord, error) {
	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT index_name, min_value, max_value, mean_value, std_dev, cloud_cover, calculation_date
		FROM raster_stats
		ORDER BY calculation_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats history: %w", err)
	}
	defer rows.Close()

	var records []StatsRecord
	for rows.Next() {
		var rec StatsRecord
		if err := rows.Scan(
			&rec.IndexName,
			&rec.MinValue,
			&rec.MaxValue,
			&rec.MeanValue,
			&rec.StdDev,
			&rec.CloudCover,
			&rec.CalculationDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
