// Package database provides utilities for database operations
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	perrors "github.com/narabyte/pantalla-signage/internal/pantallad/errors"
)

// Tx wraps a database transaction with additional functionality
type Tx struct {
	*sql.Tx
}

// TxOptions defines options for transaction execution
type TxOptions struct {
	// Isolation sets the transaction isolation level
	Isolation sql.IsolationLevel
	// ReadOnly indicates if the transaction is read-only
	ReadOnly bool
}

// Connect opens a database connection, retrying until the server is
// reachable. Signage deployments commonly start the daemon and the database
// together, so transient startup failures are expected.
func Connect(connStr string, maxRetries int, retryDelay time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	var pingErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if pingErr = db.Ping(); pingErr == nil {
			return db, nil
		}
		time.Sleep(retryDelay)
	}

	db.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries+1, pingErr)
}

// RunInTx executes a function within a transaction
func RunInTx(ctx context.Context, db *sql.DB, opts *TxOptions, fn func(*Tx) error) error {
	var txOpts *sql.TxOptions
	if opts != nil {
		txOpts = &sql.TxOptions{
			Isolation: opts.Isolation,
			ReadOnly:  opts.ReadOnly,
		}
	}

	tx, err := db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	wtx := &Tx{Tx: tx}

	if err := fn(wtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// MapError converts database-specific errors to domain errors
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return perrors.NewError(
				"CONFLICT",
				"resource already exists",
				op,
				perrors.ErrConflict,
			)
		case "23503": // foreign_key_violation
			return perrors.NewError(
				"NOT_FOUND",
				"referenced resource not found",
				op,
				perrors.ErrNotFound,
			)
		case "23514": // check_violation
			return perrors.NewError(
				"INVALID_INPUT",
				pqErr.Message,
				op,
				perrors.ErrInvalidInput,
			)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return perrors.NewError(
			"NOT_FOUND",
			"resource not found",
			op,
			perrors.ErrNotFound,
		)
	}

	return perrors.NewError(
		"INTERNAL",
		"internal database error",
		op,
		err,
	)
}
