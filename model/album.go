package model

import "time"

// Album is a titled release owned by one artist with a single genre.
// An artist may not have two albums of the same title.
type Album struct {
	ID          int64     `json:"id" gorm:"column:album_id;primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"column:name;type:varchar(255);not null;uniqueIndex:uq_album_artist_name,priority:1"`
	ArtistID    int64     `json:"artistId" gorm:"column:artist_id;not null;uniqueIndex:uq_album_artist_name,priority:2"`
	ReleaseDate time.Time `json:"releaseDate" gorm:"column:release_date;type:date;not null"`
	GenreID     int64     `json:"genreId" gorm:"column:genre_id;not null"`

	Artist Artist `json:"-" gorm:"foreignKey:ArtistID;references:ID"`
	Genre  Genre  `json:"-" gorm:"foreignKey:GenreID;references:ID"`
}

// TableName maps Album to its table.
func (Album) TableName() string {
	return "Album"
}
