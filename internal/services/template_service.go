package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/models"
)

var ErrTemplateNotFound = errors.New("question template not found")

// QuestionInput 创建/更新模板时的一条问卷步骤
type QuestionInput struct {
	StepOrder    int                 `json:"step_order"`
	Key          string              `json:"key"`
	Title        string              `json:"title"`
	Helper       string              `json:"helper"`
	QuestionType models.QuestionType `json:"question_type"`
	IsRequired   bool                `json:"is_required"`
	Options      []OptionInput       `json:"options"`
}

type OptionInput struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Desc        string `json:"desc"`
	Impact      string `json:"impact"`
	OptionOrder int    `json:"option_order"`
}

// CreateDeviceTemplate creates a device template together with its ordered
// question steps and options in one transaction.
func CreateDeviceTemplate(deviceType, brand, series, model, storages string, questions []QuestionInput) (*models.RecycleDeviceTemplate, error) {
	template := &models.RecycleDeviceTemplate{
		DeviceType: deviceType,
		Brand:      brand,
		Series:     series,
		Model:      model,
		Storages:   storages,
		IsActive:   true,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return err
		}
		return createQuestions(tx, template.ID, questions)
	})
	if err != nil {
		return nil, err
	}

	InvalidateCatalogCache()
	return template, nil
}

func createQuestions(tx *gorm.DB, templateID uint, questions []QuestionInput) error {
	for _, q := range questions {
		question := models.RecycleQuestion{
			TemplateID:   templateID,
			StepOrder:    q.StepOrder,
			Key:          q.Key,
			Title:        q.Title,
			Helper:       q.Helper,
			QuestionType: q.QuestionType,
			IsRequired:   q.IsRequired,
			IsActive:     true,
		}
		if question.QuestionType == "" {
			question.QuestionType = models.QuestionTypeSingle
		}
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, o := range q.Options {
			option := models.RecycleQuestionOption{
				QuestionID:  question.ID,
				Value:       o.Value,
				Label:       o.Label,
				Desc:        o.Desc,
				Impact:      o.Impact,
				OptionOrder: o.OptionOrder,
				IsActive:    true,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateDeviceTemplate replaces the question set of a template. Questions
// are rewritten wholesale; partial question edits go through re-import, the
// same way the admin console works.
func UpdateDeviceTemplate(id uint, storages string, isActive bool, questions []QuestionInput) (*models.RecycleDeviceTemplate, error) {
	var template models.RecycleDeviceTemplate
	if err := database.DB.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		template.Storages = storages
		template.IsActive = isActive
		if err := tx.Save(&template).Error; err != nil {
			return err
		}
		if questions == nil {
			return nil
		}
		var questionIDs []uint
		if err := tx.Model(&models.RecycleQuestion{}).
			Where("template_id = ?", template.ID).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).
				Delete(&models.RecycleQuestionOption{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("template_id = ?", template.ID).
			Delete(&models.RecycleQuestion{}).Error; err != nil {
			return err
		}
		return createQuestions(tx, template.ID, questions)
	})
	if err != nil {
		return nil, err
	}

	InvalidateCatalogCache()
	return &template, nil
}

// DeleteDeviceTemplate removes a template with its questions and options.
func DeleteDeviceTemplate(id uint) error {
	var template models.RecycleDeviceTemplate
	if err := database.DB.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&models.RecycleQuestion{}).
			Where("template_id = ?", template.ID).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).
				Delete(&models.RecycleQuestionOption{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("template_id = ?", template.ID).
			Delete(&models.RecycleQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&template).Error
	})
	if err != nil {
		return err
	}

	InvalidateCatalogCache()
	return nil
}

// FindDeviceTemplates lists templates with questions preloaded.
func FindDeviceTemplates(page, limit int) ([]models.RecycleDeviceTemplate, int64, error) {
	var templates []models.RecycleDeviceTemplate
	var total int64

	if err := database.DB.Model(&models.RecycleDeviceTemplate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := database.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("step_order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("option_order, id")
		}).
		Limit(limit).Offset(offset).
		Order("device_type, brand, model").
		Find(&templates).Error
	if err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

// GetQuestionTemplate resolves the questionnaire for a concrete model. The
// draft binds to the returned template's ID so a later submission can be
// validated against the same definition.
func GetQuestionTemplate(deviceType, brand, model string) (*models.RecycleDeviceTemplate, error) {
	var template models.RecycleDeviceTemplate
	err := database.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("step_order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("option_order, id")
		}).
		Where("device_type = ? AND brand = ? AND model = ? AND is_active = ?", deviceType, brand, model, true).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	return &template, nil
}
