package repository

import (
	"context"
	"database/sql"
	"fmt"

	"melodex/model"
)

// AnalyticsRepository defines the read-only aggregation queries over the
// catalog. All results are deterministic: counts rank descending, names
// break ties ascending, and capped queries return at most n rows.
type AnalyticsRepository interface {
	MostProlificSingleArtists(ctx context.Context, n, startYear, endYear int) ([]model.ArtistSingleCount, error)
	ArtistsWithLastSingleIn(ctx context.Context, year int) ([]string, error)
	TopSongGenres(ctx context.Context, n int) ([]model.GenreSongCount, error)
	AlbumAndSingleArtists(ctx context.Context) ([]string, error)
	MostRatedSongs(ctx context.Context, startYear, endYear, n int) ([]model.SongRatingCount, error)
	MostEngagedUsers(ctx context.Context, startYear, endYear, n int) ([]model.UserRatingCount, error)
}

// mysqlAnalyticsRepository implements AnalyticsRepository for MySQL.
type mysqlAnalyticsRepository struct {
	db *sql.DB
}

// NewMySQLAnalyticsRepository creates a new mysqlAnalyticsRepository.
func NewMySQLAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &mysqlAnalyticsRepository{db: db}
}

// MostProlificSingleArtists ranks artists by the number of singles they
// released within the year range (inclusive).
func (r *mysqlAnalyticsRepository) MostProlificSingleArtists(ctx context.Context, n, startYear, endYear int) ([]model.ArtistSingleCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT A.name, COUNT(*) AS cnt
		FROM Artist A
		JOIN Song S ON S.artist_id = A.artist_id
		WHERE S.album_id IS NULL
		  AND YEAR(S.single_release_date) BETWEEN ? AND ?
		GROUP BY A.name
		ORDER BY cnt DESC, A.name ASC
		LIMIT ?`, startYear, endYear, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query prolific single artists: %w", err)
	}
	defer rows.Close()

	results := make([]model.ArtistSingleCount, 0)
	for rows.Next() {
		var row model.ArtistSingleCount
		if err := rows.Scan(&row.Artist, &row.Singles); err != nil {
			return nil, fmt.Errorf("failed to scan prolific single artist row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prolific single artist rows: %w", err)
	}
	return results, nil
}

// ArtistsWithLastSingleIn returns the artists whose most recent single was
// released in the given year.
func (r *mysqlAnalyticsRepository) ArtistsWithLastSingleIn(ctx context.Context, year int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT A.name
		FROM Artist A
		JOIN (
			SELECT artist_id, MAX(YEAR(single_release_date)) AS last_year
			FROM Song
			WHERE album_id IS NULL
			GROUP BY artist_id
		) AS T ON T.artist_id = A.artist_id
		WHERE T.last_year = ?
		ORDER BY A.name ASC`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists by last single year: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

// TopSongGenres ranks genres by the number of songs linked to them, singles
// and album songs alike.
func (r *mysqlAnalyticsRepository) TopSongGenres(ctx context.Context, n int) ([]model.GenreSongCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT G.name, COUNT(SG.song_id) AS cnt
		FROM Genre G
		JOIN SongGenre SG ON SG.genre_id = G.genre_id
		GROUP BY G.name
		ORDER BY cnt DESC, G.name ASC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top song genres: %w", err)
	}
	defer rows.Close()

	results := make([]model.GenreSongCount, 0)
	for rows.Next() {
		var row model.GenreSongCount
		if err := rows.Scan(&row.Genre, &row.Songs); err != nil {
			return nil, fmt.Errorf("failed to scan top genre row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top genre rows: %w", err)
	}
	return results, nil
}

// AlbumAndSingleArtists returns the artists who have released at least one
// album and at least one single.
func (r *mysqlAnalyticsRepository) AlbumAndSingleArtists(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT A.name
		FROM Artist A
		WHERE EXISTS (SELECT 1 FROM Album AL WHERE AL.artist_id = A.artist_id)
		  AND EXISTS (SELECT 1 FROM Song S WHERE S.artist_id = A.artist_id AND S.album_id IS NULL)
		ORDER BY A.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query album-and-single artists: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

// MostRatedSongs ranks songs by the number of ratings received within the
// year range (computed from the rating date, inclusive).
func (r *mysqlAnalyticsRepository) MostRatedSongs(ctx context.Context, startYear, endYear, n int) ([]model.SongRatingCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT S.title, A.name, COUNT(R.rating_id) AS cnt
		FROM Rating R
		JOIN Song S ON R.song_id = S.song_id
		JOIN Artist A ON S.artist_id = A.artist_id
		WHERE YEAR(R.rating_date) BETWEEN ? AND ?
		GROUP BY S.title, A.name
		ORDER BY cnt DESC, S.title ASC
		LIMIT ?`, startYear, endYear, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query most rated songs: %w", err)
	}
	defer rows.Close()

	results := make([]model.SongRatingCount, 0)
	for rows.Next() {
		var row model.SongRatingCount
		if err := rows.Scan(&row.Title, &row.Artist, &row.Ratings); err != nil {
			return nil, fmt.Errorf("failed to scan most rated song row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating most rated song rows: %w", err)
	}
	return results, nil
}

// MostEngagedUsers ranks users by the number of ratings they gave within
// the year range (inclusive).
func (r *mysqlAnalyticsRepository) MostEngagedUsers(ctx context.Context, startYear, endYear, n int) ([]model.UserRatingCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT U.username, COUNT(R.rating_id) AS cnt
		FROM Rating R
		JOIN UserAccount U ON R.user_id = U.user_id
		WHERE YEAR(R.rating_date) BETWEEN ? AND ?
		GROUP BY U.username
		ORDER BY cnt DESC, U.username ASC
		LIMIT ?`, startYear, endYear, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query most engaged users: %w", err)
	}
	defer rows.Close()

	results := make([]model.UserRatingCount, 0)
	for rows.Next() {
		var row model.UserRatingCount
		if err := rows.Scan(&row.Username, &row.Ratings); err != nil {
			return nil, fmt.Errorf("failed to scan most engaged user row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating most engaged user rows: %w", err)
	}
	return results, nil
}

func scanNames(rows *sql.Rows) ([]string, error) {
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating name rows: %w", err)
	}
	return names, nil
}
