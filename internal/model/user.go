package model

import (
	"time"
)

// 用户角色
const (
	RoleAdmin = "admin"
	RoleUser  = "USER"
)

// 用户状态
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

type User struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email           string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	FirstName       string     `gorm:"size:50" json:"first_name"`
	LastName        string     `gorm:"size:50" json:"last_name"`
	FullName        string     `gorm:"size:100" json:"full_name"`
	PhoneNumber     string     `gorm:"size:20" json:"phone_number"`
	Role            string     `gorm:"size:20;default:USER;index" json:"role"`
	Status          string     `gorm:"size:20;default:ACTIVE" json:"status"`
	AuthProvider    string     `gorm:"size:20;default:local" json:"auth_provider"`
	IsEmailVerified bool       `gorm:"default:false" json:"is_email_verified"`
	LastLogin       *time.Time `json:"last_login"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*User) TableName() string {
	return "users"
}
