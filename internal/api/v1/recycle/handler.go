package recycle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Am-duojie/amdo-s/internal/models"
	"github.com/Am-duojie/amdo-s/internal/recycle"
	"github.com/Am-duojie/amdo-s/internal/services"
	"github.com/Am-duojie/amdo-s/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return models.User{}, false
	}
	return userVal.(models.User), true
}

// Catalog godoc
// @Summary 回收机型目录
// @Description 设备类型 → 品牌 → 机型 的目录树
// @Tags recycle
// @Produce json
// @Success 200 {object} utils.Response{data=services.Catalog}
// @Router /recycle/catalog [get]
func (h *Handler) Catalog(c *gin.Context) {
	catalog, err := services.GetCatalog()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Catalog retrieved successfully", catalog))
}

// Estimate godoc
// @Summary 估价
// @Description 对给定机型与成色估价；登录用户的报价会写入草稿
// @Tags recycle
// @Accept json
// @Produce json
// @Param request body EstimateRequest true "Estimate Request"
// @Success 200 {object} utils.Response{data=services.Quote}
// @Failure 400 {object} utils.Response
// @Router /recycle/estimate [post]
func (h *Handler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	quote, err := services.EstimatePrice(req.DeviceType, req.Brand, req.Model, req.Storage, req.Condition)
	if err != nil {
		if errors.Is(err, services.ErrNoPriceData) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "无法估算价格，请检查设备信息是否正确"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	// 登录态下报价三元组整体写进草稿
	if userVal, exists := c.Get("user"); exists {
		u := userVal.(models.User)
		draft := services.OpenDraft(u.ID)
		estimated, bonus, base := quote.EstimatedPrice, quote.Bonus, quote.BasePrice
		draft.SetQuote(&estimated, &bonus, &base)
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Estimate calculated successfully", quote))
}

// ReferencePrice godoc
// @Summary 参考回收价
// @Description 读取后台定时预热的参考报价，未预热时现算一份
// @Tags recycle
// @Produce json
// @Param device_type query string true "设备类型"
// @Param brand query string true "品牌"
// @Param model query string true "型号"
// @Success 200 {object} utils.Response{data=services.Quote}
// @Failure 400 {object} utils.Response
// @Router /recycle/reference-price [get]
func (h *Handler) ReferencePrice(c *gin.Context) {
	deviceType := c.Query("device_type")
	brand := c.Query("brand")
	model := c.Query("model")
	if deviceType == "" || brand == "" || model == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "device_type, brand and model are required"))
		return
	}

	if quote, ok := services.CachedReferenceQuote(deviceType, brand, model); ok {
		c.JSON(http.StatusOK, utils.NewSuccessResponse("Reference price retrieved successfully", quote))
		return
	}

	quote, err := services.EstimatePrice(deviceType, brand, model, "", "good")
	if err != nil {
		if errors.Is(err, services.ErrNoPriceData) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "暂无该机型的参考价"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Reference price retrieved successfully", quote))
}

// Questionnaire godoc
// @Summary 机型问卷
// @Description 返回机型对应的问卷步骤，并把模板绑定写入草稿
// @Tags recycle
// @Produce json
// @Security ApiKeyAuth
// @Param device_type query string true "设备类型"
// @Param brand query string true "品牌"
// @Param model query string true "型号"
// @Success 200 {object} utils.Response{data=models.RecycleDeviceTemplate}
// @Failure 404 {object} utils.Response
// @Router /recycle/questionnaire [get]
func (h *Handler) Questionnaire(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	deviceType := c.Query("device_type")
	brand := c.Query("brand")
	model := c.Query("model")
	if deviceType == "" || brand == "" || model == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "device_type, brand and model are required"))
		return
	}

	template, err := services.GetQuestionTemplate(deviceType, brand, model)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "暂无该机型的问卷"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	services.OpenDraft(u.ID).SetTemplate(template.ID)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Questionnaire retrieved successfully", template))
}

// CreateOrder godoc
// @Summary 提交回收订单
// @Description 以当前草稿为内容创建回收订单，成功后清空草稿
// @Tags recycle
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateOrderRequest true "Create Order Request"
// @Success 200 {object} utils.Response{data=models.RecycleOrder}
// @Failure 400 {object} utils.Response
// @Router /recycle/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	draftStore := services.OpenDraft(u.ID)
	draft := draftStore.Draft()
	if draft.Selection.Model == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "请先完成机型选择"))
		return
	}

	order, err := services.CreateRecycleOrder(services.CreateRecycleOrderInput{
		UserID:       u.ID,
		Draft:        draft,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		Note:         req.Note,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	// 提交即开启新会话
	draftStore.Reset()

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Recycle order created successfully", order))
}

// ListOrders godoc
// @Summary 我的回收订单
// @Tags recycle
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param status query string false "状态过滤"
// @Success 200 {object} utils.Response{data=OrderListResponse}
// @Router /recycle/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filter := services.RecycleOrderFilter{UserID: &u.ID, Page: page, Limit: limit}
	if status, exists := c.GetQuery("status"); exists {
		filter.Status = &status
	}

	orders, total, err := services.FindRecycleOrders(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	items := make([]OrderListItem, 0, len(orders))
	for i := range orders {
		items = append(items, toListItem(&orders[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Orders retrieved successfully", OrderListResponse{
		Orders: items,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}))
}

// GetOrder godoc
// @Summary 回收订单详情
// @Tags recycle
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "订单 ID"
// @Success 200 {object} utils.Response{data=OrderDetailResponse}
// @Failure 404 {object} utils.Response
// @Router /recycle/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid order ID"))
		return
	}

	order, err := services.GetRecycleOrder(uint(id), u.ID)
	if err != nil {
		if errors.Is(err, services.ErrRecycleOrderNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Order retrieved successfully", toDetail(order)))
}

// Ship godoc
// @Summary 设备寄出
// @Tags recycle
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "订单 ID"
// @Param request body ShipRequest true "Ship Request"
// @Success 200 {object} utils.Response{data=OrderDetailResponse}
// @Router /recycle/orders/{id}/ship [post]
func (h *Handler) Ship(c *gin.Context) {
	h.orderAction(c, func(id, userID uint) (*models.RecycleOrder, error) {
		var req ShipRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			return nil, err
		}
		return services.MarkShipped(id, userID, req.TrackingNo)
	})
}

// ConfirmPrice godoc
// @Summary 确认最终报价
// @Tags recycle
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "订单 ID"
// @Success 200 {object} utils.Response{data=OrderDetailResponse}
// @Router /recycle/orders/{id}/confirm-price [post]
func (h *Handler) ConfirmPrice(c *gin.Context) {
	h.orderAction(c, func(id, userID uint) (*models.RecycleOrder, error) {
		return services.ConfirmPrice(id, userID)
	})
}

// Dispute godoc
// @Summary 对最终报价提出异议
// @Tags recycle
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "订单 ID"
// @Param request body DisputeRequest true "Dispute Request"
// @Success 200 {object} utils.Response{data=OrderDetailResponse}
// @Router /recycle/orders/{id}/dispute [post]
func (h *Handler) Dispute(c *gin.Context) {
	var req DisputeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	h.orderAction(c, func(id, userID uint) (*models.RecycleOrder, error) {
		return services.RaiseDispute(id, userID, req.Reason)
	})
}

// Cancel godoc
// @Summary 取消回收订单
// @Tags recycle
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "订单 ID"
// @Success 200 {object} utils.Response{data=OrderDetailResponse}
// @Router /recycle/orders/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	h.orderAction(c, func(id, userID uint) (*models.RecycleOrder, error) {
		return services.CancelRecycleOrder(id, userID)
	})
}

// orderAction 统一的订单操作包装：鉴权、取 ID、翻译服务层错误
func (h *Handler) orderAction(c *gin.Context, action func(id, userID uint) (*models.RecycleOrder, error)) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid order ID"))
		return
	}

	order, err := action(uint(id), u.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRecycleOrderNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Order not found"))
		case errors.Is(err, services.ErrInvalidTransition),
			errors.Is(err, services.ErrPriceNotSet),
			errors.Is(err, services.ErrPriceNotConfirmed),
			errors.Is(err, services.ErrAlreadyPaid):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Order updated successfully", toDetail(order)))
}

func toListItem(o *models.RecycleOrder) OrderListItem {
	view := o.Flow()
	return OrderListItem{
		ID:             o.ID,
		DeviceType:     o.DeviceType,
		Brand:          o.Brand,
		Model:          o.Model,
		Storage:        o.Storage,
		Condition:      o.Condition,
		EstimatedPrice: o.EstimatedPrice,
		FinalPrice:     o.FinalPrice,
		Status:         string(o.Status),
		Stage:          recycle.ResolveStage(view),
		StatusTag:      recycle.ResolveStatusTag(view),
		CreatedAt:      o.CreatedAt,
	}
}

func toDetail(o *models.RecycleOrder) OrderDetailResponse {
	view := o.Flow()

	steps := make([]StepView, 0, len(recycle.StepStages))
	for _, step := range recycle.ProcessSteps(view) {
		steps = append(steps, StepView{
			Stage: step.Stage,
			Label: step.Label,
			State: recycle.ResolveStepState(view, step.Stage),
		})
	}

	return OrderDetailResponse{
		OrderListItem: toListItem(o),
		BasePrice:     o.BasePrice,
		Bonus:         o.Bonus,
		PriceDispute:  o.PriceDispute,
		DisputeReason: o.DisputeReason,
		PaymentStatus: o.PaymentStatus,
		PaidAt:        o.PaidAt,
		ContactName:   o.ContactName,
		ContactPhone:  o.ContactPhone,
		Address:       o.Address,
		TrackingNo:    o.TrackingNo,
		Note:          o.Note,
		Steps:         steps,
	}
}
