package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEnsureArtistReturnsExistingID(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	repo := NewMySQLArtistRepository(dbh)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT artist_id FROM Artist WHERE name = ?")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(7))
	// No insert: resolution of a known name is a pure read.
	mock.ExpectCommit()

	tx, err := dbh.Begin()
	require.NoError(t, err)

	id, err := repo.EnsureArtistWithTx(tx, "A1")
	require.NoError(t, err)
	require.Equal(t, int64(7), id)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureArtistInsertsOnMiss(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	repo := NewMySQLArtistRepository(dbh)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT artist_id FROM Artist WHERE name = ?")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Artist (name) VALUES (?)")).
		WithArgs("A1").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT artist_id FROM Artist WHERE name = ?")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(9))
	mock.ExpectCommit()

	tx, err := dbh.Begin()
	require.NoError(t, err)

	id, err := repo.EnsureArtistWithTx(tx, "A1")
	require.NoError(t, err)
	require.Equal(t, int64(9), id)

	// Resolving the same name again inside the transaction sees the
	// inserted row and creates no duplicate.
	again, err := repo.EnsureArtistWithTx(tx, "A1")
	require.NoError(t, err)
	require.Equal(t, id, again)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
