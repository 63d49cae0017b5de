package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestResetCatalogTruncatesChildrenFirst(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, table := range []string{"Rating", "SongGenre", "Song", "Album", "UserAccount", "Genre", "Artist"} {
		mock.ExpectExec("TRUNCATE TABLE " + table).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, ResetCatalog(context.Background(), dbh))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetCatalogRestoresChecksOnFailure(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	truncateErr := errors.New("table is locked")

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("TRUNCATE TABLE Rating").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("TRUNCATE TABLE SongGenre").
		WillReturnError(truncateErr)
	// The deferred restore still runs even though the reset failed.
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ResetCatalog(context.Background(), dbh)
	require.Error(t, err)
	require.ErrorIs(t, err, truncateErr)
	require.Contains(t, err.Error(), "SongGenre")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetCatalogPropagatesRestoreFailure(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	restoreErr := errors.New("connection gone")

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, table := range []string{"Rating", "SongGenre", "Song", "Album", "UserAccount", "Genre", "Artist"} {
		mock.ExpectExec("TRUNCATE TABLE " + table).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").
		WillReturnError(restoreErr)

	err = ResetCatalog(context.Background(), dbh)
	require.Error(t, err)
	require.ErrorIs(t, err, restoreErr)
	require.NoError(t, mock.ExpectationsWereMet())
}
