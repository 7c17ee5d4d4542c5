package recycle

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Am-duojie/amdo-s/internal/models"
	"github.com/Am-duojie/amdo-s/internal/services"
	"github.com/Am-duojie/amdo-s/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ListTemplates 获取机型模板列表
func (h *Handler) ListTemplates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	templates, total, err := services.FindDeviceTemplates(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", gin.H{
		"templates": templates,
		"total":     total,
		"page":      page,
		"limit":     limit,
	}))
}

// CreateTemplate 新建机型模板及其问卷
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	template, err := services.CreateDeviceTemplate(req.DeviceType, req.Brand, req.Series, req.Model, req.Storages, req.Questions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	// 新机型进入参考价轮询
	services.PriceRefresh.Track(template.ID)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Template created successfully", template))
}

// UpdateTemplate 更新模板，问卷步骤整体替换
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid template ID"))
		return
	}

	var req UpdateTemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	template, err := services.UpdateDeviceTemplate(uint(id), req.Storages, req.IsActive, req.Questions)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Template not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Template updated successfully", template))
}

// DeleteTemplate 删除模板
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid template ID"))
		return
	}

	if err := services.DeleteDeviceTemplate(uint(id)); err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Template not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Template deleted successfully", nil))
}

// ListOrders 获取全量回收订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filter := services.RecycleOrderFilter{
		Page:  page,
		Limit: limit,
	}

	// 解析筛选参数
	if userIDStr, exists := c.GetQuery("user_id"); exists {
		userID, _ := strconv.Atoi(userIDStr)
		uid := uint(userID)
		filter.UserID = &uid
	}
	if status, exists := c.GetQuery("status"); exists {
		filter.Status = &status
	}
	if deviceType, exists := c.GetQuery("device_type"); exists {
		filter.DeviceType = &deviceType
	}
	if brand, exists := c.GetQuery("brand"); exists {
		filter.Brand = &brand
	}
	if startTimeStr, exists := c.GetQuery("start_time"); exists {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			filter.StartTime = &startTime
		}
	}
	if endTimeStr, exists := c.GetQuery("end_time"); exists {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			filter.EndTime = &endTime
		}
	}

	orders, total, err := services.FindRecycleOrders(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	}))
}

// GetOrder 获取回收订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	h.orderAction(c, func(id uint) (*models.RecycleOrder, error) {
		return services.GetRecycleOrder(id, 0)
	})
}

// ReceiveOrder 标记设备已收货
func (h *Handler) ReceiveOrder(c *gin.Context) {
	h.orderAction(c, services.MarkReceived)
}

// InspectOrder 质检并给出最终报价
func (h *Handler) InspectOrder(c *gin.Context) {
	var req InspectRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	h.orderAction(c, func(id uint) (*models.RecycleOrder, error) {
		return services.InspectOrder(id, req.FinalPrice, req.Note)
	})
}

// PayoutOrder 打款
func (h *Handler) PayoutOrder(c *gin.Context) {
	h.orderAction(c, services.PayoutOrder)
}

// CancelOrder 管理员取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	h.orderAction(c, func(id uint) (*models.RecycleOrder, error) {
		return services.CancelRecycleOrder(id, 0)
	})
}

func (h *Handler) orderAction(c *gin.Context, action func(id uint) (*models.RecycleOrder, error)) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid order ID"))
		return
	}

	order, err := action(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRecycleOrderNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Order not found"))
		case errors.Is(err, services.ErrInvalidTransition),
			errors.Is(err, services.ErrPriceNotConfirmed),
			errors.Is(err, services.ErrAlreadyPaid):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", order))
}
