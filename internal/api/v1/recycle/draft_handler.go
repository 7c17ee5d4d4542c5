package recycle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Am-duojie/amdo-s/internal/recycle"
	"github.com/Am-duojie/amdo-s/internal/services"
	"github.com/Am-duojie/amdo-s/internal/utils"
)

// 草稿接口统一返回 DraftResponse，前端拿到最新草稿即可整体刷新页面状态。
func draftView(store *recycle.DraftStore) DraftResponse {
	return DraftResponse{
		Draft:        store.Draft(),
		ImpactCounts: store.GetImpactCounts(),
	}
}

// GetDraft godoc
// @Summary 读取回收草稿
// @Tags recycle-draft
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft [get]
func (h *Handler) GetDraft(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Draft retrieved successfully", draftView(services.OpenDraft(u.ID))))
}

// PatchSelection godoc
// @Summary 更新机型选择
// @Description 增量更新；改动设备类型/品牌/系列会按级联规则清掉下游字段并重置报价
// @Tags recycle-draft
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body SelectionPatchRequest true "Selection Patch"
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft/selection [patch]
func (h *Handler) PatchSelection(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req SelectionPatchRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	store := services.OpenDraft(u.ID)
	store.SetSelection(recycle.SelectionPatch{
		DeviceType: req.DeviceType,
		Brand:      req.Brand,
		Series:     req.Series,
		Model:      req.Model,
		Q:          req.Q,
	})

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Selection updated successfully", draftView(store)))
}

// ResetSelection godoc
// @Summary 重置机型选择
// @Tags recycle-draft
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft/selection [delete]
func (h *Handler) ResetSelection(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	store := services.OpenDraft(u.ID)
	store.ResetSelection()

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Selection reset successfully", draftView(store)))
}

// PutAnswer godoc
// @Summary 写入问卷答案
// @Tags recycle-draft
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body AnswerRequest true "Answer"
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft/answers [put]
func (h *Handler) PutAnswer(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	store := services.OpenDraft(u.ID)
	store.SetAnswer(req.Key, req.Value)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Answer saved successfully", draftView(store)))
}

// SetStep godoc
// @Summary 移动向导步骤
// @Tags recycle-draft
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body StepRequest true "Step"
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft/step [put]
func (h *Handler) SetStep(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req StepRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	store := services.OpenDraft(u.ID)
	store.SetCurrentStep(req.Step)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Step updated successfully", draftView(store)))
}

// SetStorage godoc
// @Summary 选择存储容量
// @Tags recycle-draft
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body StorageRequest true "Storage"
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft/storage [put]
func (h *Handler) SetStorage(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req StorageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	store := services.OpenDraft(u.ID)
	store.SetStorage(req.Storage)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Storage updated successfully", draftView(store)))
}

// SetCondition godoc
// @Summary 选择成色
// @Tags recycle-draft
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ConditionRequest true "Condition"
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft/condition [put]
func (h *Handler) SetCondition(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req ConditionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	store := services.OpenDraft(u.ID)
	store.SetCondition(req.Condition)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Condition updated successfully", draftView(store)))
}

// SetConfig godoc
// @Summary 更新 SKU 子选项
// @Description 只覆盖请求里出现的字段，和报价三元组不同，允许部分写入
// @Tags recycle-draft
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ConfigRequest true "Config"
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft/config [put]
func (h *Handler) SetConfig(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req ConfigRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	store := services.OpenDraft(u.ID)
	store.SetSelectedConfig(recycle.ConfigPatch{
		Storage: req.Storage,
		Color:   req.Color,
		RAM:     req.RAM,
		Version: req.Version,
	})

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Config updated successfully", draftView(store)))
}

// ClearDraft godoc
// @Summary 清空回收草稿
// @Tags recycle-draft
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=DraftResponse}
// @Router /recycle/draft [delete]
func (h *Handler) ClearDraft(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	store := services.OpenDraft(u.ID)
	store.Reset()

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Draft cleared successfully", draftView(store)))
}
