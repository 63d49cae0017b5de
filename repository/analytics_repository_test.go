package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"melodex/model"
)

func TestTopSongGenresPreservesRankingOrder(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	repo := NewMySQLAnalyticsRepository(dbh)

	mock.ExpectQuery("SELECT G.name, COUNT").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name", "cnt"}).
			AddRow("Jazz", 12).
			AddRow("Pop", 12).
			AddRow("Rock", 5))

	results, err := repo.TopSongGenres(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []model.GenreSongCount{
		{Genre: "Jazz", Songs: 12},
		{Genre: "Pop", Songs: 12},
		{Genre: "Rock", Songs: 5},
	}, results)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMostRatedSongsPassesYearRangeAndCap(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	repo := NewMySQLAnalyticsRepository(dbh)

	mock.ExpectQuery("SELECT S.title, A.name, COUNT").
		WithArgs(2018, 2021, 2).
		WillReturnRows(sqlmock.NewRows([]string{"title", "name", "cnt"}).
			AddRow("song1", "a1", 9).
			AddRow("song2", "a2", 4))

	results, err := repo.MostRatedSongs(context.Background(), 2018, 2021, 2)
	require.NoError(t, err)
	require.Equal(t, []model.SongRatingCount{
		{Title: "song1", Artist: "a1", Ratings: 9},
		{Title: "song2", Artist: "a2", Ratings: 4},
	}, results)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMostProlificSingleArtistsEmptyResult(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	repo := NewMySQLAnalyticsRepository(dbh)

	mock.ExpectQuery("SELECT A.name, COUNT").
		WithArgs(2015, 2020, 10).
		WillReturnRows(sqlmock.NewRows([]string{"name", "cnt"}))

	results, err := repo.MostProlificSingleArtists(context.Background(), 10, 2015, 2020)
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArtistsWithLastSingleInScansNames(t *testing.T) {
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbh.Close()

	repo := NewMySQLAnalyticsRepository(dbh)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE T.last_year = ?")).
		WithArgs(2019).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("A1").
			AddRow("A2"))

	results, err := repo.ArtistsWithLastSingleIn(context.Background(), 2019)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2"}, results)
	require.NoError(t, mock.ExpectationsWereMet())
}
