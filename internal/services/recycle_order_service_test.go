package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/models"
	"github.com/Am-duojie/amdo-s/internal/recycle"
)

func setupRecycleOrderTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.RecycleOrder{})
	db.AutoMigrate(&models.User{}, &models.RecycleOrder{})

	database.DB = db
}

func seedRecycleDraft() recycle.Draft {
	d := recycle.DefaultDraft()
	d.Selection.Brand = "苹果"
	d.Selection.Model = "iPhone 13"
	d.SelectedStorage = "256GB"
	d.Condition = "good"
	base, estimated, bonus := 2600.0, 1950.0, 98.0
	d.BasePrice = &base
	d.EstimatedPrice = &estimated
	d.Bonus = &bonus
	d.Answers = map[string]any{"screen": "ok"}
	return d
}

func createTestOrder(t *testing.T, userID uint) *models.RecycleOrder {
	order, err := CreateRecycleOrder(CreateRecycleOrderInput{
		UserID:       userID,
		Draft:        seedRecycleDraft(),
		ContactName:  "张三",
		ContactPhone: "13800000000",
		Address:      "北京市海淀区",
	})
	assert.NoError(t, err)
	return order
}

func TestRecycleOrderLifecycle(t *testing.T) {
	setupRecycleOrderTestDB()

	order := createTestOrder(t, 1)
	assert.Equal(t, models.RecycleStatusPending, order.Status)
	assert.Equal(t, "手机", order.DeviceType)
	assert.Equal(t, "256GB", order.Storage)
	assert.Equal(t, 98.0, order.Bonus)
	assert.Equal(t, recycle.StagePending, recycle.ResolveStage(order.Flow()))

	// 寄出
	order, err := MarkShipped(order.ID, 1, "SF123456")
	assert.NoError(t, err)
	assert.Equal(t, models.RecycleStatusShipped, order.Status)
	assert.Equal(t, "SF123456", order.TrackingNo)

	// 重复寄出被拒绝
	_, err = MarkShipped(order.ID, 1, "SF999")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// 签收
	order, err = MarkReceived(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RecycleStatusReceived, order.Status)

	// 未质检前不能确认价格
	_, err = ConfirmPrice(order.ID, 1)
	assert.ErrorIs(t, err, ErrPriceNotSet)

	// 质检定价，进入待确认价格
	order, err = InspectOrder(order.ID, 1800, "屏幕轻微划痕")
	assert.NoError(t, err)
	assert.Equal(t, models.RecycleStatusInspected, order.Status)
	assert.Equal(t, 1800.0, *order.FinalPrice)
	assert.False(t, order.FinalPriceConfirmed)
	assert.Equal(t, "待确认价格", recycle.ResolveStatusTag(order.Flow()).Text)

	// 未确认前不能打款
	_, err = PayoutOrder(order.ID)
	assert.ErrorIs(t, err, ErrPriceNotConfirmed)

	// 用户确认价格
	order, err = ConfirmPrice(order.ID, 1)
	assert.NoError(t, err)
	assert.True(t, order.FinalPriceConfirmed)
	assert.Equal(t, "待打款", recycle.ResolveStatusTag(order.Flow()).Text)

	// 打款
	order, err = PayoutOrder(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.NotNil(t, order.PaidAt)
	assert.Equal(t, recycle.StagePaid, recycle.ResolveStage(order.Flow()))

	// 重复打款被拒绝
	_, err = PayoutOrder(order.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	// 已打款不可取消
	_, err = CancelRecycleOrder(order.ID, 1)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestRaiseDispute(t *testing.T) {
	setupRecycleOrderTestDB()

	order := createTestOrder(t, 1)
	order, err := MarkShipped(order.ID, 1, "")
	assert.NoError(t, err)
	order, err = MarkReceived(order.ID)
	assert.NoError(t, err)
	order, err = InspectOrder(order.ID, 1200, "")
	assert.NoError(t, err)

	order, err = RaiseDispute(order.ID, 1, "报价低于预期")
	assert.NoError(t, err)
	assert.True(t, order.PriceDispute)
	assert.Equal(t, "报价低于预期", order.DisputeReason)
	assert.Equal(t, "价格异议处理中", recycle.ResolveStatusTag(order.Flow()).Text)

	// 异议中仍归检测阶段
	assert.Equal(t, recycle.StageInspected, recycle.ResolveStage(order.Flow()))

	// 再次质检定价会清掉异议
	order, err = InspectOrder(order.ID, 1500, "复检")
	assert.NoError(t, err)
	assert.False(t, order.PriceDispute)
	assert.Empty(t, order.DisputeReason)
}

func TestCancelRecycleOrder(t *testing.T) {
	setupRecycleOrderTestDB()

	order := createTestOrder(t, 1)

	order, err := CancelRecycleOrder(order.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, models.RecycleStatusCancelled, order.Status)
	assert.Equal(t, recycle.StageCancelled, recycle.ResolveStage(order.Flow()))

	// 取消是幂等的
	order, err = CancelRecycleOrder(order.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, models.RecycleStatusCancelled, order.Status)
}

func TestRecycleOrderOwnership(t *testing.T) {
	setupRecycleOrderTestDB()

	order := createTestOrder(t, 1)

	// 其他用户看不到
	_, err := GetRecycleOrder(order.ID, 2)
	assert.ErrorIs(t, err, ErrRecycleOrderNotFound)

	// userID 0 是管理员通道
	got, err := GetRecycleOrder(order.ID, 0)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestFindRecycleOrdersFilter(t *testing.T) {
	setupRecycleOrderTestDB()

	createTestOrder(t, 1)
	createTestOrder(t, 1)
	createTestOrder(t, 2)

	uid := uint(1)
	orders, total, err := FindRecycleOrders(RecycleOrderFilter{UserID: &uid, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	status := string(models.RecycleStatusShipped)
	_, total, err = FindRecycleOrders(RecycleOrderFilter{Status: &status, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
