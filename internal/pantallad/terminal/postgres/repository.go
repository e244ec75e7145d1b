// Package postgres implements the terminal repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/narabyte/pantalla-signage/internal/pantallad/database"
	"github.com/narabyte/pantalla-signage/internal/pantallad/terminal"
)

// Repository implements the terminal.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL terminal repository
func NewRepository(db *sql.DB, logger *slog.Logger) terminal.Repository {
	return &Repository{db: db, logger: logger}
}

const terminalColumns = `
	id, internal_name, screen_type, theme, branch_id, area_id,
	lat, lon, screensaver, last_seen, version
`

// Save persists a terminal, creating it if new and enforcing optimistic
// concurrency on updates
func (r *Repository) Save(ctx context.Context, t *terminal.Terminal) error {
	const op = "TerminalRepository.Save"

	screensaver, err := json.Marshal(imageList(t.Screensaver))
	if err != nil {
		return fmt.Errorf("error marshaling screensaver: %w", err)
	}

	var lat, lon *float64
	if t.Location != nil {
		lat, lon = &t.Location.Lat, &t.Location.Lon
	}

	err = database.RunInTx(ctx, r.db, nil, func(tx *database.Tx) error {
		var currentVersion int
		err := tx.QueryRowContext(ctx, `
			SELECT version FROM terminals WHERE id = $1
		`, t.ID).Scan(&currentVersion)

		if err == sql.ErrNoRows {
			r.logger.Info("creating new terminal",
				"terminalID", t.ID,
				"name", t.InternalName,
				"screenType", t.ScreenType,
				"operation", op,
			)
			_, err = tx.ExecContext(ctx, `
				INSERT INTO terminals (
					id, internal_name, screen_type, theme, branch_id, area_id,
					lat, lon, screensaver, last_seen, version, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
			`,
				t.ID, t.InternalName, t.ScreenType, t.Theme, t.BranchID, t.AreaID,
				lat, lon, screensaver, nullableTime(t), t.Version,
			)
			return err
		}
		if err != nil {
			return err
		}

		if currentVersion != t.Version {
			return terminal.ErrVersionMismatch{ID: t.ID.String()}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE terminals
			SET internal_name = $1,
			    screen_type = $2,
			    theme = $3,
			    branch_id = $4,
			    area_id = $5,
			    lat = $6,
			    lon = $7,
			    screensaver = $8,
			    version = $9,
			    updated_at = NOW()
			WHERE id = $10
			  AND version = $11
		`,
			t.InternalName, t.ScreenType, t.Theme, t.BranchID, t.AreaID,
			lat, lon, screensaver, t.Version+1,
			t.ID, t.Version,
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return terminal.ErrVersionMismatch{ID: t.ID.String()}
		}

		t.Version++
		return nil
	})

	if err != nil {
		if _, ok := err.(terminal.ErrVersionMismatch); ok {
			return err
		}
		r.logger.Error("failed to save terminal",
			"error", err,
			"terminalID", t.ID,
			"operation", op,
		)
		return database.MapError(err, op)
	}

	return nil
}

// FindByID retrieves a terminal by its unique ID
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*terminal.Terminal, error) {
	const op = "TerminalRepository.FindByID"

	row := r.db.QueryRowContext(ctx, `
		SELECT `+terminalColumns+`
		FROM terminals
		WHERE id = $1
	`, id)

	t, err := scanTerminal(row)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return t, nil
}

// FindByName retrieves a terminal by its internal name
func (r *Repository) FindByName(ctx context.Context, name string) (*terminal.Terminal, error) {
	const op = "TerminalRepository.FindByName"

	row := r.db.QueryRowContext(ctx, `
		SELECT `+terminalColumns+`
		FROM terminals
		WHERE internal_name = $1
	`, name)

	t, err := scanTerminal(row)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return t, nil
}

// List retrieves all terminals for a branch; a nil branch ID lists everything
func (r *Repository) List(ctx context.Context, branchID *uuid.UUID) ([]*terminal.Terminal, error) {
	const op = "TerminalRepository.List"

	query := `
		SELECT ` + terminalColumns + `
		FROM terminals
	`
	var args []interface{}
	if branchID != nil {
		query += ` WHERE branch_id = $1`
		args = append(args, *branchID)
	}
	query += ` ORDER BY internal_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	var terminals []*terminal.Terminal
	for rows.Next() {
		t, err := scanTerminal(rows)
		if err != nil {
			return nil, database.MapError(err, op)
		}
		terminals = append(terminals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}
	return terminals, nil
}

// FindBranch retrieves the branch a terminal belongs to
func (r *Repository) FindBranch(ctx context.Context, id uuid.UUID) (*terminal.Branch, error) {
	const op = "TerminalRepository.FindBranch"

	var b terminal.Branch
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, brand_name, logo, favicon
		FROM branches
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.BrandName, &b.Logo, &b.Favicon)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return &b, nil
}

// FindArea retrieves an area by ID
func (r *Repository) FindArea(ctx context.Context, id uuid.UUID) (*terminal.Area, error) {
	const op = "TerminalRepository.FindArea"

	var a terminal.Area
	err := r.db.QueryRowContext(ctx, `
		SELECT id, branch_id, name
		FROM areas
		WHERE id = $1
	`, id).Scan(&a.ID, &a.BranchID, &a.Name)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return &a, nil
}

// TouchLastSeen records a payload fetch. It bypasses the version check so
// fetch traffic never conflicts with management edits.
func (r *Repository) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	const op = "TerminalRepository.TouchLastSeen"

	result, err := r.db.ExecContext(ctx, `
		UPDATE terminals SET last_seen = NOW() WHERE id = $1
	`, id)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTerminal(row rowScanner) (*terminal.Terminal, error) {
	var (
		t           terminal.Terminal
		areaID      uuid.NullUUID
		lat, lon    sql.NullFloat64
		screensaver []byte
		lastSeen    sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.InternalName, &t.ScreenType, &t.Theme, &t.BranchID, &areaID,
		&lat, &lon, &screensaver, &lastSeen, &t.Version,
	)
	if err != nil {
		return nil, err
	}

	if areaID.Valid {
		id := areaID.UUID
		t.AreaID = &id
	}
	if lat.Valid && lon.Valid {
		t.Location = &terminal.Location{Lat: lat.Float64, Lon: lon.Float64}
	}
	if lastSeen.Valid {
		t.LastSeen = lastSeen.Time
	}
	if err := json.Unmarshal(screensaver, &t.Screensaver); err != nil {
		return nil, fmt.Errorf("error unmarshaling screensaver: %w", err)
	}
	return &t, nil
}

func nullableTime(t *terminal.Terminal) interface{} {
	if t.LastSeen.IsZero() {
		return nil
	}
	return t.LastSeen
}

func imageList(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
