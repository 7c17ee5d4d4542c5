package recycle

import (
	"time"

	"github.com/Am-duojie/amdo-s/internal/recycle"
)

// EstimateRequest 估价请求
type EstimateRequest struct {
	DeviceType string `json:"device_type" binding:"required"`
	Brand      string `json:"brand" binding:"required"`
	Model      string `json:"model" binding:"required"`
	Storage    string `json:"storage"`
	Condition  string `json:"condition"`
}

// SelectionPatchRequest 草稿机型选择的增量更新
type SelectionPatchRequest struct {
	DeviceType *string `json:"device_type,omitempty"`
	Brand      *string `json:"brand,omitempty"`
	Series     *string `json:"series,omitempty"`
	Model      *string `json:"model,omitempty"`
	Q          *string `json:"q,omitempty"`
}

// AnswerRequest 写入一条问卷答案
type AnswerRequest struct {
	Key   string      `json:"key" binding:"required"`
	Value interface{} `json:"value"`
}

// StepRequest 移动向导游标
type StepRequest struct {
	Step int `json:"step" binding:"required,min=1"`
}

// StorageRequest / ConditionRequest 基础配置选择
type StorageRequest struct {
	Storage string `json:"storage" binding:"required"`
}

type ConditionRequest struct {
	Condition string `json:"condition" binding:"required,oneof=new like_new good fair poor"`
}

// ConfigRequest SKU 级子选项，缺省字段不覆盖
type ConfigRequest struct {
	Storage *string `json:"storage,omitempty"`
	Color   *string `json:"color,omitempty"`
	RAM     *string `json:"ram,omitempty"`
	Version *string `json:"version,omitempty"`
}

// CreateOrderRequest 从草稿提交回收订单
type CreateOrderRequest struct {
	ContactName  string `json:"contact_name" binding:"required"`
	ContactPhone string `json:"contact_phone" binding:"required"`
	Address      string `json:"address" binding:"required"`
	Note         string `json:"note"`
}

// ShipRequest 填写寄出运单号
type ShipRequest struct {
	TrackingNo string `json:"tracking_no"`
}

// DisputeRequest 价格异议
type DisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DraftResponse 草稿视图，附带成色影响统计
type DraftResponse struct {
	Draft        recycle.Draft        `json:"draft"`
	ImpactCounts recycle.ImpactCounts `json:"impact_counts"`
}

// StepView 进度条中的一步连同其状态
type StepView struct {
	Stage recycle.Stage     `json:"stage"`
	Label string            `json:"label"`
	State recycle.StepState `json:"state"`
}

// OrderListItem 订单列表项，携带派生的阶段与标签
type OrderListItem struct {
	ID             uint               `json:"id"`
	DeviceType     string             `json:"device_type"`
	Brand          string             `json:"brand"`
	Model          string             `json:"model"`
	Storage        string             `json:"storage,omitempty"`
	Condition      string             `json:"condition,omitempty"`
	EstimatedPrice *float64           `json:"estimated_price"`
	FinalPrice     *float64           `json:"final_price"`
	Status         string             `json:"status"`
	Stage          recycle.Stage      `json:"stage"`
	StatusTag      recycle.StatusTag  `json:"status_tag"`
	CreatedAt      time.Time          `json:"created_at"`
}

// OrderListResponse 订单列表响应
type OrderListResponse struct {
	Orders []OrderListItem `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// OrderDetailResponse 订单详情，附带进度条步骤
type OrderDetailResponse struct {
	OrderListItem
	BasePrice     *float64   `json:"base_price"`
	Bonus         float64    `json:"bonus"`
	PriceDispute  bool       `json:"price_dispute"`
	DisputeReason string     `json:"dispute_reason,omitempty"`
	PaymentStatus string     `json:"payment_status,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	ContactName   string     `json:"contact_name"`
	ContactPhone  string     `json:"contact_phone"`
	Address       string     `json:"address"`
	TrackingNo    string     `json:"tracking_no,omitempty"`
	Note          string     `json:"note,omitempty"`
	Steps         []StepView `json:"steps"`
}
