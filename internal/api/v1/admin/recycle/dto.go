package recycle

import (
	"github.com/Am-duojie/amdo-s/internal/services"
)

// CreateTemplateRequest 新建机型问卷模板
type CreateTemplateRequest struct {
	DeviceType string                   `json:"device_type" binding:"required"`
	Brand      string                   `json:"brand" binding:"required"`
	Series     string                   `json:"series"`
	Model      string                   `json:"model" binding:"required"`
	Storages   string                   `json:"storages"`
	Questions  []services.QuestionInput `json:"questions"`
}

// UpdateTemplateRequest 更新模板；问卷步骤整体替换
type UpdateTemplateRequest struct {
	Storages  string                   `json:"storages"`
	IsActive  bool                     `json:"is_active"`
	Questions []services.QuestionInput `json:"questions"`
}

// InspectRequest 质检定价
type InspectRequest struct {
	FinalPrice float64 `json:"final_price" binding:"required,gt=0"`
	Note       string  `json:"note"`
}
