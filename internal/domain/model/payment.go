package model

import "time"

// 決済プロバイダ側のtransaction IDをユニークにして冪等性を担保する。
type Payment struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"transactionId"`
	OrderID       string        `gorm:"type:varchar(20);not null" json:"orderId"`
	ProductID     int64         `gorm:"not null" json:"productId"`
	TrackingID    string        `gorm:"type:varchar(64);not null;index" json:"trackingId"`
	Email         string        `gorm:"type:varchar(255);not null" json:"email"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Currency      string        `gorm:"type:varchar(10);not null" json:"currency"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	PaidAt        time.Time     `gorm:"not null" json:"paidAt"`
}
