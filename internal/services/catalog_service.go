package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/models"
)

const (
	CatalogCacheKey      = "recycle:catalog"
	CatalogCacheDuration = 1 * time.Hour
)

// CatalogModel 目录中的一个可回收机型
type CatalogModel struct {
	Name     string   `json:"name"`
	Series   string   `json:"series,omitempty"`
	Storages []string `json:"storages,omitempty"`
}

// Catalog 设备类型 → 品牌 → 机型 的目录树
type Catalog struct {
	DeviceTypes []string                            `json:"device_types"`
	Brands      map[string][]string                 `json:"brands"`
	Models      map[string]map[string][]CatalogModel `json:"models"`
}

// GetCatalog returns the recyclable device catalog built from the active
// device templates, cached in redis.
func GetCatalog() (*Catalog, error) {
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, CatalogCacheKey).Result()
		if err == nil {
			var cached Catalog
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var templates []models.RecycleDeviceTemplate
	if err := database.DB.Where("is_active = ?", true).
		Order("device_type, brand, model").Find(&templates).Error; err != nil {
		return nil, err
	}

	catalog := buildCatalog(templates)

	if database.RedisClient != nil {
		if data, err := json.Marshal(catalog); err == nil {
			database.RedisClient.Set(database.Ctx, CatalogCacheKey, data, CatalogCacheDuration)
		}
	}

	return catalog, nil
}

func buildCatalog(templates []models.RecycleDeviceTemplate) *Catalog {
	catalog := &Catalog{
		Brands: map[string][]string{},
		Models: map[string]map[string][]CatalogModel{},
	}

	seenType := map[string]bool{}
	seenBrand := map[string]bool{}

	for _, t := range templates {
		if !seenType[t.DeviceType] {
			seenType[t.DeviceType] = true
			catalog.DeviceTypes = append(catalog.DeviceTypes, t.DeviceType)
		}

		brandKey := t.DeviceType + "/" + t.Brand
		if !seenBrand[brandKey] {
			seenBrand[brandKey] = true
			catalog.Brands[t.DeviceType] = append(catalog.Brands[t.DeviceType], t.Brand)
		}

		if catalog.Models[t.DeviceType] == nil {
			catalog.Models[t.DeviceType] = map[string][]CatalogModel{}
		}

		var storages []string
		if t.Storages != "" {
			for _, s := range strings.Split(t.Storages, ",") {
				if s = strings.TrimSpace(s); s != "" {
					storages = append(storages, s)
				}
			}
		}

		catalog.Models[t.DeviceType][t.Brand] = append(catalog.Models[t.DeviceType][t.Brand], CatalogModel{
			Name:     t.Model,
			Series:   t.Series,
			Storages: storages,
		})
	}

	return catalog
}

// InvalidateCatalogCache drops the cached catalog; called whenever device
// templates change.
func InvalidateCatalogCache() {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, CatalogCacheKey)
	}
}
