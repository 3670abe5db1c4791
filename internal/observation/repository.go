package observation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Stored is an observation row as read back from the backing store. It is
// the persisted shape of Row plus the server-populated identifier and
// creation timestamp.
type Stored struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	SpeciesID       SpeciesID  `json:"species_id"`
	Activities      []string   `json:"activities,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	Geohash         string     `json:"geohash"`
	LocationName    *string    `json:"location_name,omitempty"`
	Count           int        `json:"count"`
	SeenAt          time.Time  `json:"seen_at"`
	ActionTaken     Action     `json:"action_taken"`
	ActionOther     *string    `json:"action_other,omitempty"`
	AdditionalNotes *string    `json:"additional_notes,omitempty"`
	PhotoURLs       []string   `json:"photo_urls"`
	CreatedAt       time.Time  `json:"created_at"`
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

const insertQuery = `
	INSERT INTO observations (
		user_id, species_id, activities, notes,
		latitude, longitude, geohash, location_name,
		count, seen_at, action_taken, action_other,
		additional_notes, photo_urls
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

// InsertBatch persists all rows inside one transaction. Either every row is
// committed or the transaction rolls back and nothing is stored.
func (r *PostgresRepository) InsertBatch(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Always attempt rollback on function exit (no-op after successful commit)
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			r.logger.Warn("failed to rollback transaction",
				slog.String("error", err.Error()))
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Warn("failed to close statement",
				slog.String("error", err.Error()))
		}
	}()

	for i, row := range rows {
		_, err := stmt.ExecContext(ctx,
			row.UserID,
			string(row.SpeciesID),
			pq.Array(row.Activities),
			row.Notes,
			row.Latitude,
			row.Longitude,
			row.Geohash,
			row.LocationName,
			row.Count,
			row.SeenAt,
			string(row.ActionTaken),
			row.ActionOther,
			row.AdditionalNotes,
			pq.Array(row.PhotoURLs),
		)
		if err != nil {
			return fmt.Errorf("failed to insert row %d of %d: %w", i+1, len(rows), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByUser returns the user's observations ordered by sighting time,
// most recent first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Stored, error) {
	const query = `
		SELECT id, user_id, species_id, activities, notes,
		       latitude, longitude, geohash, location_name,
		       count, seen_at, action_taken, action_other,
		       additional_notes, photo_urls, created_at
		FROM observations
		WHERE user_id = $1
		ORDER BY seen_at DESC
	`

	result, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() {
		if err := result.Close(); err != nil {
			r.logger.Warn("failed to close rows",
				slog.String("error", err.Error()))
		}
	}()

	var observations []Stored
	for result.Next() {
		var obs Stored
		err := result.Scan(
			&obs.ID,
			&obs.UserID,
			&obs.SpeciesID,
			pq.Array(&obs.Activities),
			&obs.Notes,
			&obs.Latitude,
			&obs.Longitude,
			&obs.Geohash,
			&obs.LocationName,
			&obs.Count,
			&obs.SeenAt,
			&obs.ActionTaken,
			&obs.ActionOther,
			&obs.AdditionalNotes,
			pq.Array(&obs.PhotoURLs),
			&obs.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		observations = append(observations, obs)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}
	return observations, nil
}
