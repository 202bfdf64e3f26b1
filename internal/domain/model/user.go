package model

import "time"

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

type AccountStatus string

const (
	AccountStatusPending AccountStatus = "pending"
	AccountStatusActive  AccountStatus = "active"
	AccountStatusBlocked AccountStatus = "blocked"
)

type User struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName   string        `gorm:"type:varchar(255)" json:"displayName"`
	Role          Role          `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	AccountStatus AccountStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"accountStatus"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"createdAt"`
}
