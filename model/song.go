package model

import (
	"database/sql"
	"time"
)

// Song is a track owned by an artist. A song either belongs to an album or
// is a single: a NULL album_id means the song stands alone and carries its
// own single_release_date. The (artist_id, title) pair is unique, which is
// what lets ratings address a song by artist name and title.
type Song struct {
	ID                int64         `json:"id" gorm:"column:song_id;primaryKey;autoIncrement"`
	Title             string        `json:"title" gorm:"column:title;type:varchar(255);not null;uniqueIndex:uq_song_artist_title,priority:2"`
	ArtistID          int64         `json:"artistId" gorm:"column:artist_id;not null;uniqueIndex:uq_song_artist_title,priority:1"`
	AlbumID           sql.NullInt64 `json:"albumId" gorm:"column:album_id"`
	SingleReleaseDate *time.Time    `json:"singleReleaseDate,omitempty" gorm:"column:single_release_date;type:date"`

	Artist Artist `json:"-" gorm:"foreignKey:ArtistID;references:ID"`
	Album  *Album `json:"-" gorm:"foreignKey:AlbumID;references:ID"`
}

// TableName maps Song to its table.
func (Song) TableName() string {
	return "Song"
}

// SongGenre links a song to one of its genres. Every song has at least one
// link; songs ingested as part of an album link to the album's genre.
type SongGenre struct {
	SongID  int64 `json:"songId" gorm:"column:song_id;primaryKey;autoIncrement:false"`
	GenreID int64 `json:"genreId" gorm:"column:genre_id;primaryKey;autoIncrement:false"`

	Song  Song  `json:"-" gorm:"foreignKey:SongID;references:ID"`
	Genre Genre `json:"-" gorm:"foreignKey:GenreID;references:ID"`
}

// TableName maps SongGenre to its table.
func (SongGenre) TableName() string {
	return "SongGenre"
}
