package model

import "time"

type OrderStatus string

// 旧システムのステータス表記をそのまま保持する（pendingのみ小文字）
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "Approved"
	OrderStatusRejected  OrderStatus = "Rejected"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnset PaymentStatus = ""
	PaymentStatusPaid  PaymentStatus = "Paid"
)

type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string        `gorm:"type:varchar(20);uniqueIndex;not null" json:"orderId"`
	TrackingID    string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"trackingId"`
	Email         string        `gorm:"type:varchar(255);index;not null" json:"email"`
	ProductID     int64         `gorm:"not null;index" json:"productId"`
	ProductTitle  string        `gorm:"type:varchar(255)" json:"productTitle"`
	Price         string        `gorm:"type:varchar(32)" json:"price"`
	Note          string        `gorm:"type:text" json:"note"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:''" json:"paymentStatus"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"createdAt"`
	ApprovedAt    *time.Time    `json:"approvedAt,omitempty"`
	CancelledAt   *time.Time    `json:"cancelledAt,omitempty"`
}

// OrderSequence はオーダー番号用の単一行カウンタ。
// 最新注文を読んで+1する方式だと同時作成で番号が重複するため、
// UPDATE ... RETURNING の原子インクリメントで採番する。
type OrderSequence struct {
	ID    int64 `gorm:"primaryKey"`
	Value int64 `gorm:"not null;default:0"`
}
