package model

// User represents the local profile that owns all courses and transcripts.
// The application creates exactly one at first launch; profile edits are not
// exposed yet.
type User struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt int64  `gorm:"not null" json:"createdAt"` // unix milliseconds
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
