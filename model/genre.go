package model

// Genre is a named song category. Like Artist, rows are created lazily on
// first reference.
type Genre struct {
	ID   int64  `json:"id" gorm:"column:genre_id;primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"column:name;type:varchar(255);not null;uniqueIndex:uq_genre_name"`
}

// TableName maps Genre to its table.
func (Genre) TableName() string {
	return "Genre"
}
