package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Am-duojie/amdo-s/internal/recycle"
)

// RecycleOrderStatus 回收订单落库状态。打款/确认价等子状态由独立字段承载，
// 展示层统一通过 recycle.ResolveStage 归一。
type RecycleOrderStatus string

const (
	RecycleStatusPending   RecycleOrderStatus = "pending"
	RecycleStatusShipped   RecycleOrderStatus = "shipped"
	RecycleStatusReceived  RecycleOrderStatus = "received"
	RecycleStatusInspected RecycleOrderStatus = "inspected"
	RecycleStatusCompleted RecycleOrderStatus = "completed"
	RecycleStatusCancelled RecycleOrderStatus = "cancelled"
)

const PaymentStatusPaid = "paid"

// RecycleOrder 回收订单
type RecycleOrder struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"index" json:"user_id"`

	DeviceType string `gorm:"not null" json:"device_type"`
	Brand      string `gorm:"not null" json:"brand"`
	Model      string `gorm:"not null" json:"model"`
	Storage    string `json:"storage"`
	Condition  string `gorm:"default:'good'" json:"condition"`

	// 问卷快照：提交时从草稿带过来的答案与模板绑定
	TemplateID *uint          `json:"template_id,omitempty"`
	Answers    datatypes.JSON `gorm:"type:jsonb" json:"answers" swaggertype:"object"`

	BasePrice      *float64 `json:"base_price"`
	EstimatedPrice *float64 `json:"estimated_price"`
	Bonus          float64  `gorm:"default:0" json:"bonus"`

	FinalPrice          *float64 `json:"final_price"`
	FinalPriceConfirmed bool     `gorm:"default:false" json:"final_price_confirmed"`
	PriceDispute        bool     `gorm:"default:false" json:"price_dispute"`
	DisputeReason       string   `json:"dispute_reason,omitempty"`

	PaymentStatus string     `json:"payment_status"`
	PaidAt        *time.Time `json:"paid_at"`

	Status RecycleOrderStatus `gorm:"index;default:'pending'" json:"status"`

	ContactName  string `gorm:"not null" json:"contact_name"`
	ContactPhone string `gorm:"not null" json:"contact_phone"`
	Address      string `json:"address"`
	TrackingNo   string `json:"tracking_no,omitempty"`
	Note         string `json:"note,omitempty"`

	InspectionNote string `json:"inspection_note,omitempty"`
}

// TableName overrides the table name
func (RecycleOrder) TableName() string {
	return "recycle_orders"
}

// Flow projects the order onto the read-only view the stage resolver takes.
func (o *RecycleOrder) Flow() *recycle.OrderView {
	if o == nil {
		return nil
	}
	return &recycle.OrderView{
		Status:              string(o.Status),
		FinalPrice:          o.FinalPrice,
		FinalPriceConfirmed: o.FinalPriceConfirmed,
		PriceDispute:        o.PriceDispute,
		PaymentStatus:       o.PaymentStatus,
		PaidAt:              o.PaidAt,
	}
}
