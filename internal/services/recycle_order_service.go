package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/models"
	"github.com/Am-duojie/amdo-s/internal/recycle"
)

// 错误定义
var (
	ErrRecycleOrderNotFound = errors.New("recycle order not found")
	ErrInvalidTransition    = errors.New("invalid status transition for this operation")
	ErrPriceNotSet          = errors.New("final price has not been set")
	ErrPriceNotConfirmed    = errors.New("final price has not been confirmed")
	ErrAlreadyPaid          = errors.New("order has already been paid out")
)

// RecycleOrderFilter 订单查询过滤条件
type RecycleOrderFilter struct {
	UserID     *uint
	Status     *string
	DeviceType *string
	Brand      *string
	StartTime  *time.Time
	EndTime    *time.Time
	Page       int
	Limit      int
}

// CreateRecycleOrderInput 提交回收订单（来自草稿 + 联系方式）
type CreateRecycleOrderInput struct {
	UserID       uint
	Draft        recycle.Draft
	ContactName  string
	ContactPhone string
	Address      string
	Note         string
}

// CreateRecycleOrder materializes a draft into a recycle order. The draft's
// answers and template binding are snapshotted onto the order.
func CreateRecycleOrder(in CreateRecycleOrderInput) (*models.RecycleOrder, error) {
	d := in.Draft

	answers, err := json.Marshal(d.Answers)
	if err != nil {
		return nil, err
	}

	order := &models.RecycleOrder{
		UserID:         in.UserID,
		DeviceType:     d.Selection.DeviceType,
		Brand:          d.Selection.Brand,
		Model:          d.Selection.Model,
		Storage:        firstNonEmpty(d.SelectedStorage, d.Storage),
		Condition:      d.Condition,
		TemplateID:     d.TemplateID,
		Answers:        datatypes.JSON(answers),
		BasePrice:      d.BasePrice,
		EstimatedPrice: d.EstimatedPrice,
		Status:         models.RecycleStatusPending,
		ContactName:    in.ContactName,
		ContactPhone:   in.ContactPhone,
		Address:        in.Address,
		Note:           in.Note,
	}
	if d.Bonus != nil {
		order.Bonus = *d.Bonus
	}

	if err := database.DB.Create(order).Error; err != nil {
		return nil, err
	}

	return order, nil
}

// FindRecycleOrders retrieves orders with pagination and filtering.
func FindRecycleOrders(filter RecycleOrderFilter) ([]models.RecycleOrder, int64, error) {
	var orders []models.RecycleOrder
	var total int64

	db := database.DB.Model(&models.RecycleOrder{})

	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.DeviceType != nil {
		db = db.Where("device_type = ?", *filter.DeviceType)
	}
	if filter.Brand != nil {
		db = db.Where("brand = ?", *filter.Brand)
	}
	if filter.StartTime != nil {
		db = db.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		db = db.Where("created_at <= ?", *filter.EndTime)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetRecycleOrder loads one order; userID 0 skips the ownership check
// (admin access).
func GetRecycleOrder(id uint, userID uint) (*models.RecycleOrder, error) {
	var order models.RecycleOrder
	db := database.DB
	if userID != 0 {
		db = db.Where("user_id = ?", userID)
	}
	if err := db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecycleOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// MarkShipped 用户寄出设备
func MarkShipped(id, userID uint, trackingNo string) (*models.RecycleOrder, error) {
	order, err := GetRecycleOrder(id, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.RecycleStatusPending {
		return nil, ErrInvalidTransition
	}

	order.Status = models.RecycleStatusShipped
	order.TrackingNo = trackingNo
	if err := database.DB.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// MarkReceived 仓库签收
func MarkReceived(id uint) (*models.RecycleOrder, error) {
	order, err := GetRecycleOrder(id, 0)
	if err != nil {
		return nil, err
	}
	if order.Status != models.RecycleStatusShipped {
		return nil, ErrInvalidTransition
	}

	order.Status = models.RecycleStatusReceived
	if err := database.DB.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// InspectOrder 质检完成，写入最终报价。最终价此时尚未确认，
// 展示层会因此把订单归到“待确认价格”。
func InspectOrder(id uint, finalPrice float64, note string) (*models.RecycleOrder, error) {
	order, err := GetRecycleOrder(id, 0)
	if err != nil {
		return nil, err
	}
	if order.Status != models.RecycleStatusReceived && order.Status != models.RecycleStatusInspected {
		return nil, ErrInvalidTransition
	}

	order.Status = models.RecycleStatusInspected
	order.FinalPrice = &finalPrice
	order.FinalPriceConfirmed = false
	order.PriceDispute = false
	order.DisputeReason = ""
	order.InspectionNote = note
	if err := database.DB.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmPrice 用户确认最终报价
func ConfirmPrice(id, userID uint) (*models.RecycleOrder, error) {
	order, err := GetRecycleOrder(id, userID)
	if err != nil {
		return nil, err
	}
	if order.FinalPrice == nil {
		return nil, ErrPriceNotSet
	}
	if recycle.ResolveStage(order.Flow()) != recycle.StageInspected {
		return nil, ErrInvalidTransition
	}

	order.FinalPriceConfirmed = true
	order.PriceDispute = false
	order.DisputeReason = ""
	order.Status = models.RecycleStatusCompleted
	if err := database.DB.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// RaiseDispute 用户对最终报价提出异议
func RaiseDispute(id, userID uint, reason string) (*models.RecycleOrder, error) {
	order, err := GetRecycleOrder(id, userID)
	if err != nil {
		return nil, err
	}
	if order.FinalPrice == nil {
		return nil, ErrPriceNotSet
	}
	if order.FinalPriceConfirmed || order.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrInvalidTransition
	}

	order.PriceDispute = true
	order.DisputeReason = reason
	if err := database.DB.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// PayoutOrder 打款。只把支付字段翻过去，网关对接在别处。
func PayoutOrder(id uint) (*models.RecycleOrder, error) {
	order, err := GetRecycleOrder(id, 0)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if !order.FinalPriceConfirmed {
		return nil, ErrPriceNotConfirmed
	}

	now := time.Now()
	order.PaymentStatus = models.PaymentStatusPaid
	order.PaidAt = &now
	order.Status = models.RecycleStatusCompleted
	if err := database.DB.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CancelRecycleOrder 取消订单；已打款的订单不可取消。
func CancelRecycleOrder(id, userID uint) (*models.RecycleOrder, error) {
	order, err := GetRecycleOrder(id, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid || order.PaidAt != nil {
		return nil, ErrAlreadyPaid
	}
	if order.Status == models.RecycleStatusCancelled {
		return order, nil
	}

	order.Status = models.RecycleStatusCancelled
	if err := database.DB.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
