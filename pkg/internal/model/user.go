package model

import "time"

// User 注册用户，Password 为 bcrypt 哈希.
type User struct {
	ID        string    `gorm:"primaryKey;size:26"          json:"id"`
	Email     string    `gorm:"size:320;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:128;not null"           json:"-"`
	CreatedAt time.Time `json:"-"`
}
