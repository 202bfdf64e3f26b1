package model

import "time"

type TrackingStatus string

const (
	TrackingOrderCreated   TrackingStatus = "Order_Created"
	TrackingOrderApproved  TrackingStatus = "Order_Approved"
	TrackingOrderRejected  TrackingStatus = "Order_Rejected"
	TrackingOrderCancelled TrackingStatus = "Order_Cancelled"
	TrackingOrderPaid      TrackingStatus = "Order_Paid"

	// 手動追加用の配送進捗コード
	TrackingOrderPacked         TrackingStatus = "Order_Packed"
	TrackingOrderShipped        TrackingStatus = "Order_Shipped"
	TrackingOrderOutForDelivery TrackingStatus = "Order_Out_For_Delivery"
	TrackingOrderDelivered      TrackingStatus = "Order_Delivered"
)

// 追記専用ログ。(tracking_id, status) の複合ユニークで重複イベントを弾く。
type TrackingEvent struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TrackingID string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_tracking_status" json:"trackingId"`
	Status     TrackingStatus `gorm:"type:varchar(40);not null;uniqueIndex:idx_tracking_status" json:"status"`
	Detail     string         `gorm:"type:varchar(255)" json:"detail"`
	Location   string         `gorm:"type:varchar(255)" json:"location,omitempty"`
	Note       string         `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
}
