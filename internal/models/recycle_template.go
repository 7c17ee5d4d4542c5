package models

import "time"

// RecycleDeviceTemplate 机型模板，问卷步骤挂在其下
type RecycleDeviceTemplate struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DeviceType string `gorm:"index;not null" json:"device_type"`
	Brand      string `gorm:"index;not null" json:"brand"`
	Series     string `json:"series,omitempty"`
	Model      string `gorm:"index;not null" json:"model"`
	Storages   string `json:"storages,omitempty"` // 逗号分隔，如 "128GB,256GB,512GB"
	IsActive   bool   `gorm:"default:true" json:"is_active"`

	Questions []RecycleQuestion `gorm:"foreignKey:TemplateID" json:"questions,omitempty"`
}

func (RecycleDeviceTemplate) TableName() string {
	return "recycle_device_templates"
}

type QuestionType string

const (
	QuestionTypeSingle QuestionType = "single"
	QuestionTypeMulti  QuestionType = "multi"
)

// RecycleQuestion 问卷步骤，step_order 从 1 开始
type RecycleQuestion struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TemplateID   uint         `gorm:"index;not null" json:"template_id"`
	StepOrder    int          `gorm:"not null" json:"step_order"`
	Key          string       `gorm:"not null" json:"key"` // 如 channel, color, storage
	Title        string       `gorm:"not null" json:"title"`
	Helper       string       `json:"helper,omitempty"`
	QuestionType QuestionType `gorm:"default:'single'" json:"question_type"`
	IsRequired   bool         `gorm:"default:true" json:"is_required"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`

	Options []RecycleQuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (RecycleQuestion) TableName() string {
	return "recycle_questions"
}

// RecycleQuestionOption 问卷选项，impact 标注对估价的影响
type RecycleQuestionOption struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	QuestionID  uint   `gorm:"index;not null" json:"question_id"`
	Value       string `gorm:"not null" json:"value"` // 如 official, black, 256GB
	Label       string `gorm:"not null" json:"label"`
	Desc        string `json:"desc,omitempty"`
	Impact      string `json:"impact,omitempty"` // positive/minor/major/critical，空表示无影响
	OptionOrder int    `gorm:"default:0" json:"option_order"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

func (RecycleQuestionOption) TableName() string {
	return "recycle_question_options"
}
