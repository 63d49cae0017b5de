package model

import "time"

// Rating is one user's score for one song. A (user, song) pair may carry at
// most one rating; there is no update path, a second attempt is rejected.
type Rating struct {
	ID     int64     `json:"id" gorm:"column:rating_id;primaryKey;autoIncrement"`
	UserID int64     `json:"userId" gorm:"column:user_id;not null;uniqueIndex:uq_rating_user_song,priority:1"`
	SongID int64     `json:"songId" gorm:"column:song_id;not null;uniqueIndex:uq_rating_user_song,priority:2"`
	Value  int       `json:"value" gorm:"column:rating_value;not null;check:rating_value BETWEEN 1 AND 5"`
	Date   time.Time `json:"date" gorm:"column:rating_date;type:date;not null"`

	User UserAccount `json:"-" gorm:"foreignKey:UserID;references:ID"`
	Song Song        `json:"-" gorm:"foreignKey:SongID;references:ID"`
}

// TableName maps Rating to its table.
func (Rating) TableName() string {
	return "Rating"
}
