package model

// Artist is a performer referenced by albums and songs. Rows are created
// lazily the first time a name is seen during ingestion.
type Artist struct {
	ID   int64  `json:"id" gorm:"column:artist_id;primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"column:name;type:varchar(255);not null;uniqueIndex:uq_artist_name"`
}

// TableName maps Artist to its table.
func (Artist) TableName() string {
	return "Artist"
}
