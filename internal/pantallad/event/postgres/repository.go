// Package postgres implements the event repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/narabyte/pantalla-signage/internal/pantallad/database"
	"github.com/narabyte/pantalla-signage/internal/pantallad/event"
)

// Repository implements the event.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL event repository
func NewRepository(db *sql.DB, logger *slog.Logger) event.Repository {
	return &Repository{db: db, logger: logger}
}

// Save persists an event, creating it if new and enforcing optimistic
// concurrency on updates
func (r *Repository) Save(ctx context.Context, e *event.Event) error {
	const op = "EventRepository.Save"

	images, err := json.Marshal(imageList(e.Images))
	if err != nil {
		return fmt.Errorf("error marshaling images: %w", err)
	}

	err = database.RunInTx(ctx, r.db, nil, func(tx *database.Tx) error {
		var currentVersion int
		err := tx.QueryRowContext(ctx, `
			SELECT version FROM events WHERE id = $1
		`, e.ID).Scan(&currentVersion)

		if err == sql.ErrNoRows {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO events (
					id, area_id, title, client, message, ticker,
					starts_at, ends_at, show_from, show_until,
					recurring, images, layout, version, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
			`,
				e.ID, e.AreaID, e.Title, e.Client, e.Message, e.Ticker,
				e.StartsAt, e.EndsAt, e.ShowFrom, e.ShowUntil,
				e.Recurring, images, e.Layout, e.Version,
			)
			return err
		}
		if err != nil {
			return err
		}

		if currentVersion != e.Version {
			return event.ErrVersionMismatch{ID: e.ID.String()}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE events
			SET area_id = $1,
			    title = $2,
			    client = $3,
			    message = $4,
			    ticker = $5,
			    starts_at = $6,
			    ends_at = $7,
			    show_from = $8,
			    show_until = $9,
			    recurring = $10,
			    images = $11,
			    layout = $12,
			    version = $13,
			    updated_at = NOW()
			WHERE id = $14
			  AND version = $15
		`,
			e.AreaID, e.Title, e.Client, e.Message, e.Ticker,
			e.StartsAt, e.EndsAt, e.ShowFrom, e.ShowUntil,
			e.Recurring, images, e.Layout, e.Version+1,
			e.ID, e.Version,
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return event.ErrVersionMismatch{ID: e.ID.String()}
		}

		e.Version++
		return nil
	})

	if err != nil {
		if _, ok := err.(event.ErrVersionMismatch); ok {
			return err
		}
		r.logger.Error("failed to save event",
			"error", err,
			"eventID", e.ID,
			"operation", op,
		)
		return database.MapError(err, op)
	}

	return nil
}

// FindByID retrieves an event by ID
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	const op = "EventRepository.FindByID"

	row := r.db.QueryRowContext(ctx, `
		SELECT id, area_id, title, client, message, ticker,
		       starts_at, ends_at, show_from, show_until,
		       recurring, images, layout, version
		FROM events
		WHERE id = $1
	`, id)

	e, err := scanEvent(row)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return e, nil
}

// Delete removes an event
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "EventRepository.Delete"

	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, op)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return database.MapError(err, op)
	}
	if rows == 0 {
		return database.MapError(sql.ErrNoRows, op)
	}
	return nil
}

// ListForArea returns the events of one area whose effective window overlaps
// [from, until], ordered by effective start
func (r *Repository) ListForArea(ctx context.Context, areaID uuid.UUID, from, until time.Time) ([]event.AgendaEntry, error) {
	const op = "EventRepository.ListForArea"

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.area_id, e.title, e.client, e.message, e.ticker,
		       e.starts_at, e.ends_at, e.show_from, e.show_until,
		       e.recurring, e.images, e.layout, e.version,
		       a.name
		FROM events e
		JOIN areas a ON a.id = e.area_id
		WHERE e.area_id = $1
		  AND COALESCE(e.show_until, e.ends_at) >= $2
		  AND COALESCE(e.show_from, e.starts_at) <= $3
		ORDER BY COALESCE(e.show_from, e.starts_at)
	`, areaID, from, until)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	return collectEntries(rows, op)
}

// ListForBranch returns the events across all areas of a branch whose
// effective window overlaps [from, until], ordered by room then start
func (r *Repository) ListForBranch(ctx context.Context, branchID uuid.UUID, from, until time.Time) ([]event.AgendaEntry, error) {
	const op = "EventRepository.ListForBranch"

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.area_id, e.title, e.client, e.message, e.ticker,
		       e.starts_at, e.ends_at, e.show_from, e.show_until,
		       e.recurring, e.images, e.layout, e.version,
		       a.name
		FROM events e
		JOIN areas a ON a.id = e.area_id
		WHERE a.branch_id = $1
		  AND COALESCE(e.show_until, e.ends_at) >= $2
		  AND COALESCE(e.show_from, e.starts_at) <= $3
		ORDER BY a.name, COALESCE(e.show_from, e.starts_at)
	`, branchID, from, until)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	return collectEntries(rows, op)
}

// PurgeEndedBefore deletes events whose effective window ended before the cutoff
func (r *Repository) PurgeEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "EventRepository.PurgeEndedBefore"

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM events
		WHERE COALESCE(show_until, ends_at) < $1
	`, cutoff)
	if err != nil {
		return 0, database.MapError(err, op)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, database.MapError(err, op)
	}
	return purged, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var (
		e      event.Event
		images []byte
	)
	err := row.Scan(
		&e.ID, &e.AreaID, &e.Title, &e.Client, &e.Message, &e.Ticker,
		&e.StartsAt, &e.EndsAt, &e.ShowFrom, &e.ShowUntil,
		&e.Recurring, &images, &e.Layout, &e.Version,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(images, &e.Images); err != nil {
		return nil, fmt.Errorf("error unmarshaling images: %w", err)
	}
	return &e, nil
}

func collectEntries(rows *sql.Rows, op string) ([]event.AgendaEntry, error) {
	var entries []event.AgendaEntry
	for rows.Next() {
		var (
			e        event.Event
			images   []byte
			roomName string
		)
		err := rows.Scan(
			&e.ID, &e.AreaID, &e.Title, &e.Client, &e.Message, &e.Ticker,
			&e.StartsAt, &e.EndsAt, &e.ShowFrom, &e.ShowUntil,
			&e.Recurring, &images, &e.Layout, &e.Version,
			&roomName,
		)
		if err != nil {
			return nil, database.MapError(err, op)
		}
		if err := json.Unmarshal(images, &e.Images); err != nil {
			return nil, fmt.Errorf("error unmarshaling images: %w", err)
		}
		entries = append(entries, event.AgendaEntry{Event: e, RoomName: roomName})
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}
	return entries, nil
}

// imageList keeps JSONB columns as [] instead of null for empty rotations
func imageList(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
