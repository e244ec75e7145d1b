package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
	werrors "github.com/narabyte/pantalla-signage/internal/pantallad/errors"
	"github.com/narabyte/pantalla-signage/internal/pantallad/terminal"
)

var terminalColumnNames = []string{
	"id", "internal_name", "screen_type", "theme", "branch_id", "area_id",
	"lat", "lon", "screensaver", "last_seen", "version",
}

func newMockRepo(t *testing.T) (terminal.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRepository(db, logger), mock
}

func TestSave_InsertsNewTerminal(t *testing.T) {
	repo, mock := newMockRepo(t)

	term, err := terminal.NewTerminal("LOBBY-NORTE-1", v1alpha1.ScreenTypeSalon, uuid.New())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT version FROM terminals").
		WithArgs(term.ID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO terminals").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), term))
	assert.Equal(t, 1, term.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_VersionMismatch(t *testing.T) {
	repo, mock := newMockRepo(t)

	term, err := terminal.NewTerminal("LOBBY-NORTE-1", v1alpha1.ScreenTypeSalon, uuid.New())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT version FROM terminals").
		WithArgs(term.ID).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(7))
	mock.ExpectRollback()

	err = repo.Save(context.Background(), term)
	require.Error(t, err)
	assert.IsType(t, terminal.ErrVersionMismatch{}, err)
	assert.True(t, werrors.IsVersionMismatch(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_ScansOptionalColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	branchID := uuid.New()

	rows := sqlmock.NewRows(terminalColumnNames).AddRow(
		id, "LOBBY-NORTE-1", "SALON", "dark", branchID, nil,
		nil, nil, []byte(`[]`), nil, 1,
	)
	mock.ExpectQuery("FROM terminals").
		WithArgs(id).
		WillReturnRows(rows)

	term, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "LOBBY-NORTE-1", term.InternalName)
	assert.Nil(t, term.AreaID)
	assert.Nil(t, term.Location)
	assert.True(t, term.LastSeen.IsZero())
	assert.Empty(t, term.Screensaver)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectQuery("FROM terminals").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), id)
	assert.True(t, werrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchLastSeen(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE terminals SET last_seen").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.TouchLastSeen(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchLastSeen_UnknownTerminal(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE terminals SET last_seen").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.TouchLastSeen(context.Background(), id)
	assert.True(t, werrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
