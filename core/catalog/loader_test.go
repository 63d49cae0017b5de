package catalog

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

// errDuplicateKey mimics the driver error a unique key violation produces.
var errDuplicateKey = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

func newTestLoader(t *testing.T) (*Loader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLoader(db), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func TestLoadSinglesEmptyGenresRejectedWithoutStoreAccess(t *testing.T) {
	loader, mock := newTestLoader(t)

	rejects := loader.LoadSingles(context.Background(), []Single{
		{Title: "S1", Genres: nil, Artist: "A1", ReleaseDate: "2009-01-01"},
	})

	require.Len(t, rejects, 1)
	require.Contains(t, rejects, SongKey{Title: "S1", Artist: "A1"})
	// No transaction was opened and nothing touched the store.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSinglesCommitsEachItem(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT artist_id FROM Artist WHERE name = ?")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}))
	mock.ExpectExec(q("INSERT INTO Artist (name) VALUES (?)")).
		WithArgs("A1").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(q("INSERT INTO Song (title, artist_id, album_id, single_release_date) VALUES (?, ?, NULL, ?)")).
		WithArgs("S1", int64(7), "2008-10-01").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery(q("SELECT genre_id FROM Genre WHERE name = ?")).
		WithArgs("Pop").
		WillReturnRows(sqlmock.NewRows([]string{"genre_id"}).AddRow(3))
	mock.ExpectExec(q("INSERT INTO SongGenre (song_id, genre_id) VALUES (?, ?)")).
		WithArgs(int64(21), int64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rejects := loader.LoadSingles(context.Background(), []Single{
		{Title: "S1", Genres: []string{"Pop"}, Artist: "A1", ReleaseDate: "2008-10-01"},
	})

	require.Empty(t, rejects)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSinglesFailureIsolatedToItem(t *testing.T) {
	loader, mock := newTestLoader(t)

	// First item hits a duplicate (artist_id, title) key and rolls back.
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT artist_id FROM Artist WHERE name = ?")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(7))
	mock.ExpectExec(q("INSERT INTO Song")).
		WithArgs("S1", int64(7), "2009-01-01").
		WillReturnError(errDuplicateKey)
	mock.ExpectRollback()

	// Second item still goes through in its own transaction.
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT artist_id FROM Artist WHERE name = ?")).
		WithArgs("A2").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(8))
	mock.ExpectExec(q("INSERT INTO Song")).
		WithArgs("S2", int64(8), "2000-02-15").
		WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectQuery(q("SELECT genre_id FROM Genre WHERE name = ?")).
		WithArgs("Rock").
		WillReturnRows(sqlmock.NewRows([]string{"genre_id"}).AddRow(4))
	mock.ExpectExec(q("INSERT INTO SongGenre")).
		WithArgs(int64(22), int64(4)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	rejects := loader.LoadSingles(context.Background(), []Single{
		{Title: "S1", Genres: []string{"Pop"}, Artist: "A1", ReleaseDate: "2009-01-01"},
		{Title: "S2", Genres: []string{"Rock"}, Artist: "A2", ReleaseDate: "2000-02-15"},
	})

	require.Len(t, rejects, 1)
	require.Contains(t, rejects, SongKey{Title: "S1", Artist: "A1"})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAlbumsTitleCollisionCommitsResolvers(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT artist_id FROM Artist WHERE name = ?")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}))
	mock.ExpectExec(q("INSERT INTO Artist (name) VALUES (?)")).
		WithArgs("A1").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(q("SELECT genre_id FROM Genre WHERE name = ?")).
		WithArgs("Jazz").
		WillReturnRows(sqlmock.NewRows([]string{"genre_id"}))
	mock.ExpectExec(q("INSERT INTO Genre (name) VALUES (?)")).
		WithArgs("Jazz").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(q("SELECT album_id FROM Album WHERE name = ? AND artist_id = ?")).
		WithArgs("Album1", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"album_id"}).AddRow(5))
	// Collision: the resolver inserts survive via commit, the album does not
	// get inserted, and the item is rejected.
	mock.ExpectCommit()

	rejects := loader.LoadAlbums(context.Background(), []Album{
		{Title: "Album1", Genre: "Jazz", Artist: "A1", ReleaseDate: "2008-10-01", SongTitles: []string{"s1", "s2"}},
	})

	require.Len(t, rejects, 1)
	require.Contains(t, rejects, AlbumKey{Title: "Album1", Artist: "A1"})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAlbumsSongConflictRollsBackWholeItem(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT artist_id FROM Artist WHERE name = ?")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(7))
	mock.ExpectQuery(q("SELECT genre_id FROM Genre WHERE name = ?")).
		WithArgs("Jazz").
		WillReturnRows(sqlmock.NewRows([]string{"genre_id"}).AddRow(3))
	mock.ExpectQuery(q("SELECT album_id FROM Album WHERE name = ? AND artist_id = ?")).
		WithArgs("Album1", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"album_id"}))
	mock.ExpectExec(q("INSERT INTO Album (name, artist_id, release_date, genre_id) VALUES (?, ?, ?, ?)")).
		WithArgs("Album1", int64(7), "2008-10-01", int64(3)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(q("INSERT INTO Song")).
		WithArgs("s1", int64(7), int64(5)).
		WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectExec(q("INSERT INTO SongGenre")).
		WithArgs(int64(30), int64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO Song")).
		WithArgs("s2", int64(7), int64(5)).
		WillReturnError(errDuplicateKey)
	// All-or-nothing at album granularity: album row and s1 vanish with the
	// rollback.
	mock.ExpectRollback()

	rejects := loader.LoadAlbums(context.Background(), []Album{
		{Title: "Album1", Genre: "Jazz", Artist: "A1", ReleaseDate: "2008-10-01", SongTitles: []string{"s1", "s2"}},
	})

	require.Len(t, rejects, 1)
	require.Contains(t, rejects, AlbumKey{Title: "Album1", Artist: "A1"})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadUsersDuplicateRejected(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO UserAccount (username) VALUES (?)")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO UserAccount (username) VALUES (?)")).
		WithArgs("u1").
		WillReturnError(errDuplicateKey)
	mock.ExpectRollback()

	rejects := loader.LoadUsers(context.Background(), []string{"u1", "u1"})

	require.Len(t, rejects, 1)
	require.Contains(t, rejects, "u1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRatingsUnknownUserShortCircuits(t *testing.T) {
	loader, mock := newTestLoader(t)

	// The item also carries an out-of-range value; the user check fires
	// first and nothing else is looked up.
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT user_id FROM UserAccount WHERE username = ?")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	rejects := loader.LoadRatings(context.Background(), []Rating{
		{Username: "ghost", Artist: "a1", Title: "song1", Value: 11, Date: "2021-11-18"},
	})

	require.Len(t, rejects, 1)
	require.Contains(t, rejects, RatingKey{Username: "ghost", Artist: "a1", Title: "song1"})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRatingsUnknownSongRejected(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT user_id FROM UserAccount WHERE username = ?")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectQuery(q("SELECT S.song_id")).
		WithArgs("a1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"song_id"}))
	mock.ExpectRollback()

	rejects := loader.LoadRatings(context.Background(), []Rating{
		{Username: "u1", Artist: "a1", Title: "missing", Value: 4, Date: "2021-11-18"},
	})

	require.Len(t, rejects, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRatingsOutOfRangeRejectedAfterLookups(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT user_id FROM UserAccount WHERE username = ?")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectQuery(q("SELECT S.song_id")).
		WithArgs("a1", "song1").
		WillReturnRows(sqlmock.NewRows([]string{"song_id"}).AddRow(2))
	// Range check fires before the duplicate lookup; no Rating queries run.
	mock.ExpectRollback()

	rejects := loader.LoadRatings(context.Background(), []Rating{
		{Username: "u1", Artist: "a1", Title: "song1", Value: 0, Date: "2021-11-18"},
	})

	require.Len(t, rejects, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRatingsDuplicatePairRejected(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT user_id FROM UserAccount WHERE username = ?")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectQuery(q("SELECT S.song_id")).
		WithArgs("a1", "song1").
		WillReturnRows(sqlmock.NewRows([]string{"song_id"}).AddRow(2))
	mock.ExpectQuery(q("SELECT 1 FROM Rating WHERE user_id = ? AND song_id = ?")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	rejects := loader.LoadRatings(context.Background(), []Rating{
		{Username: "u1", Artist: "a1", Title: "song1", Value: 4, Date: "2021-11-18"},
	})

	require.Len(t, rejects, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRatingsSuccessCommits(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT user_id FROM UserAccount WHERE username = ?")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectQuery(q("SELECT S.song_id")).
		WithArgs("a1", "song1").
		WillReturnRows(sqlmock.NewRows([]string{"song_id"}).AddRow(2))
	mock.ExpectQuery(q("SELECT 1 FROM Rating WHERE user_id = ? AND song_id = ?")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(q("INSERT INTO Rating (user_id, song_id, rating_value, rating_date) VALUES (?, ?, ?, ?)")).
		WithArgs(int64(1), int64(2), 4, "2021-11-18").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rejects := loader.LoadRatings(context.Background(), []Rating{
		{Username: "u1", Artist: "a1", Title: "song1", Value: 4, Date: "2021-11-18"},
	})

	require.Empty(t, rejects)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSortedRejectViewsAreDeterministic(t *testing.T) {
	set := map[SongKey]struct{}{
		{Title: "b", Artist: "x"}: {},
		{Title: "a", Artist: "x"}: {},
		{Title: "c", Artist: "w"}: {},
	}
	keys := SortedSongKeys(set)
	require.Equal(t, []SongKey{
		{Title: "c", Artist: "w"},
		{Title: "a", Artist: "x"},
		{Title: "b", Artist: "x"},
	}, keys)
}
