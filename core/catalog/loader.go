package catalog

import (
	"context"
	"database/sql"
	"sort"

	"melodex/logger"
	"melodex/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Loader ingests catalog batches. Every item runs in its own transaction:
// a failure rolls back that item alone, lands in the reject set, and the
// loop moves on. Batch calls never return an error — the reject set is the
// complete outcome for the batch.
type Loader struct {
	db      *sql.DB
	artists repository.ArtistRepository
	genres  repository.GenreRepository
	songs   repository.SongRepository
	albums  repository.AlbumRepository
	users   repository.UserRepository
	ratings repository.RatingRepository
}

// NewLoader creates a Loader over the raw database handle.
func NewLoader(db *sql.DB) *Loader {
	return &Loader{
		db:      db,
		artists: repository.NewMySQLArtistRepository(db),
		genres:  repository.NewMySQLGenreRepository(db),
		songs:   repository.NewMySQLSongRepository(db),
		albums:  repository.NewMySQLAlbumRepository(db),
		users:   repository.NewMySQLUserRepository(db),
		ratings: repository.NewMySQLRatingRepository(db),
	}
}

// LoadSingles ingests standalone songs. An item with no genres is rejected
// before the store is touched; anything else runs resolve-insert-link inside
// an item-scoped transaction. Returns the set of (title, artist) pairs that
// were not persisted.
func (l *Loader) LoadSingles(ctx context.Context, singles []Single) map[SongKey]struct{} {
	rejects := make(map[SongKey]struct{})
	for _, s := range singles {
		key := SongKey{Title: s.Title, Artist: s.Artist}
		if len(s.Genres) == 0 {
			rejects[key] = struct{}{}
			l.logReject("single", causeValidation, nil,
				logger.String("title", s.Title), logger.String("artist", s.Artist))
			continue
		}
		if err := l.ingestSingle(ctx, s); err != nil {
			rejects[key] = struct{}{}
			l.logReject("single", causeStoreFailure, err,
				logger.String("title", s.Title), logger.String("artist", s.Artist))
		}
	}
	return rejects
}

func (l *Loader) ingestSingle(ctx context.Context, s Single) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	artistID, err := l.artists.EnsureArtistWithTx(tx, s.Artist)
	if err != nil {
		tx.Rollback()
		return err
	}

	songID, err := l.songs.CreateSingleWithTx(tx, s.Title, artistID, s.ReleaseDate)
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, g := range s.Genres {
		genreID, err := l.genres.EnsureGenreWithTx(tx, g)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := l.songs.AddGenreWithTx(tx, songID, genreID); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// LoadAlbums ingests albums with their song lists. Artist and genre are
// resolved before the title-collision check, and on a collision the item's
// transaction is committed rather than rolled back: the resolved rows are an
// accepted side effect of the rejected item. A song-insert failure rolls the
// whole item back, album row included. Returns the set of rejected
// (title, artist) pairs.
func (l *Loader) LoadAlbums(ctx context.Context, albums []Album) map[AlbumKey]struct{} {
	rejects := make(map[AlbumKey]struct{})
	for _, a := range albums {
		key := AlbumKey{Title: a.Title, Artist: a.Artist}
		cause, err := l.ingestAlbum(ctx, a)
		if cause != nil {
			rejects[key] = struct{}{}
			l.logReject("album", *cause, err,
				logger.String("title", a.Title), logger.String("artist", a.Artist))
		}
	}
	return rejects
}

// ingestAlbum returns a non-nil cause when the item was rejected.
func (l *Loader) ingestAlbum(ctx context.Context, a Album) (*rejectCause, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return causePtr(causeStoreFailure), err
	}

	artistID, err := l.artists.EnsureArtistWithTx(tx, a.Artist)
	if err != nil {
		tx.Rollback()
		return causePtr(causeStoreFailure), err
	}
	genreID, err := l.genres.EnsureGenreWithTx(tx, a.Genre)
	if err != nil {
		tx.Rollback()
		return causePtr(causeStoreFailure), err
	}

	existingID, err := l.albums.FindIDByNameAndArtistWithTx(tx, a.Title, artistID)
	if err != nil {
		tx.Rollback()
		return causePtr(causeStoreFailure), err
	}
	if existingID != 0 {
		// The artist already has an album of this title. Keep the resolver
		// inserts: commit, then reject.
		if err := tx.Commit(); err != nil {
			return causePtr(causeStoreFailure), err
		}
		return causePtr(causeConflict), nil
	}

	albumID, err := l.albums.CreateAlbumWithTx(tx, a.Title, artistID, a.ReleaseDate, genreID)
	if err != nil {
		tx.Rollback()
		return causePtr(causeStoreFailure), err
	}

	for _, title := range a.SongTitles {
		songID, err := l.songs.CreateAlbumSongWithTx(tx, title, artistID, albumID)
		if err != nil {
			tx.Rollback()
			return causePtr(causeConflict), err
		}
		if err := l.songs.AddGenreWithTx(tx, songID, genreID); err != nil {
			tx.Rollback()
			return causePtr(causeStoreFailure), err
		}
	}

	if err := tx.Commit(); err != nil {
		return causePtr(causeStoreFailure), err
	}
	return nil, nil
}

// LoadUsers ingests usernames, one insert per item-scoped transaction.
// Returns the set of usernames rejected as duplicates.
func (l *Loader) LoadUsers(ctx context.Context, usernames []string) map[string]struct{} {
	rejects := make(map[string]struct{})
	for _, u := range usernames {
		if err := l.ingestUser(ctx, u); err != nil {
			rejects[u] = struct{}{}
			l.logReject("user", causeConflict, err, logger.String("username", u))
		}
	}
	return rejects
}

func (l *Loader) ingestUser(ctx context.Context, username string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := l.users.CreateUserWithTx(tx, username); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// LoadRatings ingests ratings. Rejection checks run in a fixed order and the
// first hit wins: unknown user, unknown (artist, title) song, value outside
// [1,5], duplicate (user, song) rating. Returns the set of rejected
// (username, artist, title) triples.
func (l *Loader) LoadRatings(ctx context.Context, ratings []Rating) map[RatingKey]struct{} {
	rejects := make(map[RatingKey]struct{})
	for _, rt := range ratings {
		key := RatingKey{Username: rt.Username, Artist: rt.Artist, Title: rt.Title}
		cause, err := l.ingestRating(ctx, rt)
		if cause != nil {
			rejects[key] = struct{}{}
			l.logReject("rating", *cause, err,
				logger.String("username", rt.Username),
				logger.String("artist", rt.Artist),
				logger.String("title", rt.Title))
		}
	}
	return rejects
}

// ingestRating returns a non-nil cause when the item was rejected. Check
// rejections roll the transaction back; it has only performed reads.
func (l *Loader) ingestRating(ctx context.Context, rt Rating) (*rejectCause, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return causePtr(causeStoreFailure), err
	}

	userID, err := l.users.FindIDByUsernameWithTx(tx, rt.Username)
	if err != nil {
		tx.Rollback()
		return causePtr(causeStoreFailure), err
	}
	if userID == 0 {
		tx.Rollback()
		return causePtr(causeMissingReference), nil
	}

	songID, err := l.songs.FindIDByArtistAndTitleWithTx(tx, rt.Artist, rt.Title)
	if err != nil {
		tx.Rollback()
		return causePtr(causeStoreFailure), err
	}
	if songID == 0 {
		tx.Rollback()
		return causePtr(causeMissingReference), nil
	}

	if rt.Value < 1 || rt.Value > 5 {
		tx.Rollback()
		return causePtr(causeValidation), nil
	}

	exists, err := l.ratings.ExistsWithTx(tx, userID, songID)
	if err != nil {
		tx.Rollback()
		return causePtr(causeStoreFailure), err
	}
	if exists {
		tx.Rollback()
		return causePtr(causeConflict), nil
	}

	if _, err := l.ratings.CreateRatingWithTx(tx, userID, songID, rt.Value, rt.Date); err != nil {
		tx.Rollback()
		return causePtr(causeStoreFailure), err
	}
	if err := tx.Commit(); err != nil {
		return causePtr(causeStoreFailure), err
	}
	return nil, nil
}

// ApplyBatchFile runs a whole batch document, sections in order, and builds
// the report shared by the CLI and HTTP surfaces.
func (l *Loader) ApplyBatchFile(ctx context.Context, bf BatchFile) *BatchReport {
	report := &BatchReport{BatchID: uuid.NewString()}

	logger.Info("applying batch",
		logger.String("batchId", report.BatchID),
		logger.Int("singles", len(bf.Singles)),
		logger.Int("albums", len(bf.Albums)),
		logger.Int("users", len(bf.Users)),
		logger.Int("ratings", len(bf.Ratings)))

	singleRejects := l.LoadSingles(ctx, bf.Singles)
	report.RejectedSingles = SortedSongKeys(singleRejects)
	report.Sections = append(report.Sections, sectionReport("singles", len(bf.Singles), len(singleRejects)))

	albumRejects := l.LoadAlbums(ctx, bf.Albums)
	report.RejectedAlbums = SortedAlbumKeys(albumRejects)
	report.Sections = append(report.Sections, sectionReport("albums", len(bf.Albums), len(albumRejects)))

	userRejects := l.LoadUsers(ctx, bf.Users)
	report.RejectedUsers = SortedUsernames(userRejects)
	report.Sections = append(report.Sections, sectionReport("users", len(bf.Users), len(userRejects)))

	ratingRejects := l.LoadRatings(ctx, bf.Ratings)
	report.RejectedRatings = SortedRatingKeys(ratingRejects)
	report.Sections = append(report.Sections, sectionReport("ratings", len(bf.Ratings), len(ratingRejects)))

	return report
}

func sectionReport(name string, received, rejected int) SectionReport {
	return SectionReport{Section: name, Received: received, Loaded: received - rejected, Rejected: rejected}
}

func (l *Loader) logReject(kind string, cause rejectCause, err error, fields ...zap.Field) {
	zapFields := []zap.Field{
		logger.String("kind", kind),
		logger.String("cause", cause.String()),
	}
	zapFields = append(zapFields, fields...)
	if err != nil {
		zapFields = append(zapFields, logger.ErrorField(err))
	}
	logger.Warn("item rejected", zapFields...)
}

func causePtr(c rejectCause) *rejectCause {
	return &c
}

// Sorted reject views keep reports deterministic.

func SortedSongKeys(set map[SongKey]struct{}) []SongKey {
	keys := make([]SongKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Artist != keys[j].Artist {
			return keys[i].Artist < keys[j].Artist
		}
		return keys[i].Title < keys[j].Title
	})
	return keys
}

func SortedAlbumKeys(set map[AlbumKey]struct{}) []AlbumKey {
	keys := make([]AlbumKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Artist != keys[j].Artist {
			return keys[i].Artist < keys[j].Artist
		}
		return keys[i].Title < keys[j].Title
	})
	return keys
}

func SortedRatingKeys(set map[RatingKey]struct{}) []RatingKey {
	keys := make([]RatingKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Username != keys[j].Username {
			return keys[i].Username < keys[j].Username
		}
		if keys[i].Artist != keys[j].Artist {
			return keys[i].Artist < keys[j].Artist
		}
		return keys[i].Title < keys[j].Title
	})
	return keys
}

func SortedUsernames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
