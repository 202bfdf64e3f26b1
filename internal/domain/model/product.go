package model

import "time"

type Product struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"type:varchar(100)" json:"category"`
	Price        string    `gorm:"type:varchar(32)" json:"price"`
	CreatorEmail string    `gorm:"type:varchar(255);index;not null" json:"creatorEmail"`
	ShowOnHome   bool      `gorm:"not null;default:false" json:"showOnHome"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}
