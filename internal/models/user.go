package models

import "time"

// User is an operator account that can obtain API tokens.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	FullName  string    `json:"full_name" gorm:"type:varchar(150)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
