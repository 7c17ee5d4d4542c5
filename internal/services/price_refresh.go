package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/models"
	"github.com/Am-duojie/amdo-s/pkg/logger"
)

const (
	priceCachePrefix   = "recycle:price:"
	priceCacheDuration = 6 * time.Hour
)

// PriceRefresher keeps a warm redis cache of reference quotes for the
// models that appear in the catalog, so list views can show a price without
// hitting the remote price API per request.
type PriceRefresher struct {
	mu       sync.RWMutex
	models   map[uint]models.RecycleDeviceTemplate
	addChan  chan uint
	stopChan chan struct{}
	interval time.Duration
}

var PriceRefresh *PriceRefresher

func init() {
	PriceRefresh = &PriceRefresher{
		models:   make(map[uint]models.RecycleDeviceTemplate),
		addChan:  make(chan uint, 100),
		stopChan: make(chan struct{}),
		interval: 30 * time.Minute,
	}
}

// Track adds a device template to the refresh set.
func (pr *PriceRefresher) Track(templateID uint) {
	pr.addChan <- templateID
}

// Start runs the refresh loop until Stop is called. Meant to run in its own
// goroutine.
func (pr *PriceRefresher) Start() {
	logger.Log.Info("price refresher started")

	pr.loadActiveTemplates()
	pr.refreshAll()

	ticker := time.NewTicker(pr.interval)
	defer ticker.Stop()

	for {
		select {
		case id := <-pr.addChan:
			pr.mu.Lock()
			if _, exists := pr.models[id]; !exists {
				var tpl models.RecycleDeviceTemplate
				if err := database.DB.First(&tpl, id).Error; err == nil {
					pr.models[id] = tpl
				}
			}
			pr.mu.Unlock()

		case <-ticker.C:
			pr.loadActiveTemplates()
			pr.refreshAll()

		case <-pr.stopChan:
			return
		}
	}
}

// Stop terminates the refresh loop.
func (pr *PriceRefresher) Stop() {
	close(pr.stopChan)
}

func (pr *PriceRefresher) loadActiveTemplates() {
	var templates []models.RecycleDeviceTemplate
	if err := database.DB.Where("is_active = ?", true).Find(&templates).Error; err != nil {
		logger.Log.Warn("price refresher failed to load templates", zap.Error(err))
		return
	}

	pr.mu.Lock()
	for _, t := range templates {
		pr.models[t.ID] = t
	}
	pr.mu.Unlock()
}

func (pr *PriceRefresher) refreshAll() {
	pr.mu.RLock()
	templates := make([]models.RecycleDeviceTemplate, 0, len(pr.models))
	for _, t := range pr.models {
		templates = append(templates, t)
	}
	pr.mu.RUnlock()

	for _, t := range templates {
		quote, err := EstimatePrice(t.DeviceType, t.Brand, t.Model, "", "good")
		if err != nil {
			// 没有价格数据的机型跳过，等模板或价格表更新
			continue
		}
		if database.RedisClient == nil {
			continue
		}
		key := fmt.Sprintf("%s%s/%s/%s", priceCachePrefix, t.DeviceType, t.Brand, t.Model)
		if data, err := json.Marshal(quote); err == nil {
			database.RedisClient.Set(database.Ctx, key, data, priceCacheDuration)
		}
	}
}

// CachedReferenceQuote returns the warmed reference quote for a model, if
// one exists.
func CachedReferenceQuote(deviceType, brand, model string) (*Quote, bool) {
	if database.RedisClient == nil {
		return nil, false
	}
	key := fmt.Sprintf("%s%s/%s/%s", priceCachePrefix, deviceType, brand, model)
	val, err := database.RedisClient.Get(database.Ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var quote Quote
	if err := json.Unmarshal([]byte(val), &quote); err != nil {
		return nil, false
	}
	return &quote, true
}
