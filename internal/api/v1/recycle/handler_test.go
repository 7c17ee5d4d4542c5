package recycle_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	api "github.com/Am-duojie/amdo-s/internal/api/v1/recycle"
	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/models"
	"github.com/Am-duojie/amdo-s/internal/recycle"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.RecycleOrder{},
		&models.RecycleDeviceTemplate{}, &models.RecycleQuestion{}, &models.RecycleQuestionOption{})
	err = db.AutoMigrate(&models.User{}, &models.RecycleOrder{},
		&models.RecycleDeviceTemplate{}, &models.RecycleQuestion{}, &models.RecycleQuestionOption{})
	if err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
}

func setupTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

// 测试路由：用假中间件顶替登录校验
func setupRouter(user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := api.NewHandler()

	authed := r.Group("/", func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	})

	authed.GET("/recycle/catalog", h.Catalog)
	authed.POST("/recycle/estimate", h.Estimate)
	authed.GET("/recycle/draft", h.GetDraft)
	authed.PATCH("/recycle/draft/selection", h.PatchSelection)
	authed.PUT("/recycle/draft/answers", h.PutAnswer)
	authed.POST("/recycle/orders", h.CreateOrder)
	authed.GET("/recycle/orders", h.ListOrders)
	authed.GET("/recycle/orders/:id", h.GetOrder)
	authed.POST("/recycle/orders/:id/ship", h.Ship)

	return r
}

func doJSON(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDraftEndpoints(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	r := setupRouter(models.User{ID: 1, Username: "tester", Role: "user"})

	// 默认草稿
	w := doJSON(r, http.MethodGet, "/recycle/draft", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data api.DraftResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, recycle.DefaultDeviceType, resp.Data.Draft.Selection.DeviceType)
	assert.Equal(t, 1, resp.Data.Draft.CurrentStep)

	// 品牌和机型一起提交时，改品牌的级联会把同一请求里的机型清掉
	w = doJSON(r, http.MethodPatch, "/recycle/draft/selection", gin.H{"brand": "苹果", "model": "iPhone 13"})
	assert.Equal(t, http.StatusOK, w.Code)
	resp.Data = api.DraftResponse{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "苹果", resp.Data.Draft.Selection.Brand)
	assert.Empty(t, resp.Data.Draft.Selection.Model)

	// 分开提交才会保留机型
	w = doJSON(r, http.MethodPatch, "/recycle/draft/selection", gin.H{"model": "iPhone 13"})
	assert.Equal(t, http.StatusOK, w.Code)
	resp.Data = api.DraftResponse{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "iPhone 13", resp.Data.Draft.Selection.Model)

	// 换品牌应清掉机型
	w = doJSON(r, http.MethodPatch, "/recycle/draft/selection", gin.H{"brand": "华为"})
	assert.Equal(t, http.StatusOK, w.Code)
	resp.Data = api.DraftResponse{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "华为", resp.Data.Draft.Selection.Brand)
	assert.Empty(t, resp.Data.Draft.Selection.Model)

	// 写答案并返回成色影响统计
	w = doJSON(r, http.MethodPut, "/recycle/draft/answers", gin.H{
		"key":   "screen",
		"value": gin.H{"value": "scratched", "label": "有划痕", "impact": "minor"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	resp.Data = api.DraftResponse{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, 1, resp.Data.ImpactCounts.Minor)
}

func TestEstimateWritesQuote(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	r := setupRouter(models.User{ID: 5, Username: "tester", Role: "user"})

	w := doJSON(r, http.MethodPost, "/recycle/estimate", gin.H{
		"device_type": "手机",
		"brand":       "苹果",
		"model":       "iPhone 13",
		"storage":     "256GB",
		"condition":   "good",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 报价写入了草稿
	var resp struct {
		Data api.DraftResponse `json:"data"`
	}
	w = doJSON(r, http.MethodGet, "/recycle/draft", nil)
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotNil(t, resp.Data.Draft.EstimatedPrice)
	assert.Equal(t, 2925.0, *resp.Data.Draft.EstimatedPrice)
	assert.NotNil(t, resp.Data.Draft.BasePrice)
	assert.Equal(t, 3900.0, *resp.Data.Draft.BasePrice)
}

func TestEstimateUnknownDevice(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	r := setupRouter(models.User{ID: 5, Username: "tester", Role: "user"})

	w := doJSON(r, http.MethodPost, "/recycle/estimate", gin.H{
		"device_type": "手机",
		"brand":       "苹果",
		"model":       "iPhone 3GS",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderEndpoints(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	r := setupRouter(models.User{ID: 7, Username: "tester", Role: "user"})

	// 没有机型选择时不能下单
	w := doJSON(r, http.MethodPost, "/recycle/orders", gin.H{
		"contact_name":  "张三",
		"contact_phone": "13800000000",
		"address":       "北京市海淀区",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 完成选择后下单。品牌和机型要分两次提交：改品牌的级联会清掉同一请求里的机型
	doJSON(r, http.MethodPatch, "/recycle/draft/selection", gin.H{"brand": "苹果"})
	doJSON(r, http.MethodPatch, "/recycle/draft/selection", gin.H{"model": "iPhone 13"})
	w = doJSON(r, http.MethodPost, "/recycle/orders", gin.H{
		"contact_name":  "张三",
		"contact_phone": "13800000000",
		"address":       "北京市海淀区",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var createResp struct {
		Data models.RecycleOrder `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &createResp)
	orderID := createResp.Data.ID
	assert.NotZero(t, orderID)

	// 下单后草稿被清空
	var draftResp struct {
		Data api.DraftResponse `json:"data"`
	}
	w = doJSON(r, http.MethodGet, "/recycle/draft", nil)
	json.Unmarshal(w.Body.Bytes(), &draftResp)
	assert.Empty(t, draftResp.Data.Draft.Selection.Model)

	// 列表
	w = doJSON(r, http.MethodGet, "/recycle/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Data api.OrderListResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &listResp)
	assert.Equal(t, int64(1), listResp.Data.Total)
	if assert.NotEmpty(t, listResp.Data.Orders) {
		assert.Equal(t, recycle.StagePending, listResp.Data.Orders[0].Stage)
		assert.Equal(t, "待寄出", listResp.Data.Orders[0].StatusTag.Text)
	}

	// 详情带流程步骤
	w = doJSON(r, http.MethodGet, fmt.Sprintf("/recycle/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var detailResp struct {
		Data api.OrderDetailResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &detailResp)
	assert.Len(t, detailResp.Data.Steps, 6)
	assert.Equal(t, recycle.StepCompleted, detailResp.Data.Steps[0].State)
	assert.Equal(t, recycle.StepPending, detailResp.Data.Steps[1].State)

	// 寄出
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/recycle/orders/%d/ship", orderID), gin.H{"tracking_no": "SF123"})
	assert.Equal(t, http.StatusOK, w.Code)
	json.Unmarshal(w.Body.Bytes(), &detailResp)
	assert.Equal(t, "shipped", detailResp.Data.Status)
	assert.Equal(t, "SF123", detailResp.Data.TrackingNo)
	assert.Equal(t, recycle.StepActive, detailResp.Data.Steps[1].State)

	// 重复寄出冲突
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/recycle/orders/%d/ship", orderID), gin.H{"tracking_no": "SF456"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
