package models

import "time"

// Role is the access level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account. Password holds the bcrypt digest and is never serialized.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"type:varchar(50);not null"`
	Email     string    `json:"email" gorm:"type:varchar(50);uniqueIndex:idx_users_email;not null"`
	Password  string    `json:"-" gorm:"type:varchar(155);not null"`
	Role      Role      `json:"role" gorm:"type:varchar(8);not null;default:user"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;<-:create"`
}

func (User) TableName() string {
	return "users"
}
