package model

// UserAccount is a registered rater identified by a unique username.
type UserAccount struct {
	ID       int64  `json:"id" gorm:"column:user_id;primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"column:username;type:varchar(100);not null;uniqueIndex:uq_user_username"`
}

// TableName maps UserAccount to its table.
func (UserAccount) TableName() string {
	return "UserAccount"
}
