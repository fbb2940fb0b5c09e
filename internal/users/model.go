package users

import "time"

// User captures one registered account. The password column stores a bcrypt
// hash, never the plaintext.
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:255;not null" json:"id"`
	Email        string    `gorm:"column:email;size:320;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:createdAt;autoCreateTime" json:"createdAt"`
}

// TableName exposes the table backing user accounts.
func (User) TableName() string {
	return "users"
}
