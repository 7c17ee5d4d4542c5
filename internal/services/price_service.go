package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Am-duojie/amdo-s/config"
	"github.com/Am-duojie/amdo-s/internal/utils"
	"github.com/Am-duojie/amdo-s/pkg/logger"
)

var ErrNoPriceData = errors.New("no price data for this device")

// Quote 估价结果，字段整体返回
type Quote struct {
	BasePrice      float64 `json:"base_price"`
	EstimatedPrice float64 `json:"estimated_price"`
	Bonus          float64 `json:"bonus"`
	TotalPrice     float64 `json:"total_price"`
	Currency       string  `json:"currency"`
	Unit           string  `json:"unit"`
	Source         string  `json:"source"` // api 或 local
}

// 成色折价系数
var conditionFactors = map[string]float64{
	"new":      1.0,
	"like_new": 0.9,
	"good":     0.75,
	"fair":     0.55,
	"poor":     0.35,
}

// 本地底价表（兜底数据，远端价格接口不可用时使用）
var basePrices = map[string]map[string]map[string]map[string]float64{
	"手机": {
		"苹果": {
			"iPhone 15 Pro Max": {"128GB": 6500, "256GB": 7200, "512GB": 8500, "1TB": 10000},
			"iPhone 15 Pro":     {"128GB": 5500, "256GB": 6200, "512GB": 7500},
			"iPhone 15":         {"128GB": 4500, "256GB": 5200, "512GB": 6500},
			"iPhone 14 Pro Max": {"128GB": 5500, "256GB": 6200, "512GB": 7500, "1TB": 9000},
			"iPhone 14 Pro":     {"128GB": 4800, "256GB": 5500, "512GB": 6800},
			"iPhone 14":         {"128GB": 3800, "256GB": 4500, "512GB": 5800},
			"iPhone 13":         {"128GB": 3200, "256GB": 3900, "512GB": 5200},
		},
		"华为": {
			"Mate 60 Pro": {"256GB": 4500, "512GB": 5500, "1TB": 6500},
			"Mate 60":     {"256GB": 3800, "512GB": 4800},
			"P60 Pro":     {"256GB": 3500, "512GB": 4500},
		},
		"小米": {
			"小米14 Pro": {"256GB": 2800, "512GB": 3400},
			"小米14":     {"256GB": 2300, "512GB": 2900},
		},
	},
	"平板": {
		"苹果": {
			"iPad Pro 12.9": {"128GB": 4500, "256GB": 5200, "512GB": 6500},
			"iPad Air 5":    {"64GB": 2500, "256GB": 3200},
		},
	},
}

// EstimatePrice 估价：远端价格接口优先，失败或未配置时回落到本地底价表。
// 返回的报价各字段一次算齐。
func EstimatePrice(deviceType, brand, model, storage, condition string) (*Quote, error) {
	cfg, _ := config.LoadConfig()

	if condition == "" {
		condition = "good"
	}

	if cfg != nil && cfg.PriceAPIBase != "" {
		if quote, err := fetchRemoteQuote(cfg, deviceType, brand, model, storage, condition); err == nil {
			return quote, nil
		} else {
			logger.Log.Warn("remote price api failed, falling back to local table",
				zap.String("model", model), zap.Error(err))
		}
	}

	base, ok := lookupBasePrice(deviceType, brand, model, storage)
	if !ok {
		return nil, ErrNoPriceData
	}

	factor, ok := conditionFactors[condition]
	if !ok {
		factor = conditionFactors["good"]
	}

	estimated := roundYuan(base * factor)
	bonus := calculateBonus(estimated)

	return &Quote{
		BasePrice:      base,
		EstimatedPrice: estimated,
		Bonus:          bonus,
		TotalPrice:     estimated + bonus,
		Currency:       "CNY",
		Unit:           "元",
		Source:         "local",
	}, nil
}

func lookupBasePrice(deviceType, brand, model, storage string) (float64, bool) {
	byBrand, ok := basePrices[deviceType]
	if !ok {
		return 0, false
	}
	byModel, ok := byBrand[brand]
	if !ok {
		return 0, false
	}
	byStorage, ok := byModel[model]
	if !ok || len(byStorage) == 0 {
		return 0, false
	}
	if storage != "" {
		price, ok := byStorage[storage]
		return price, ok
	}
	// 未选容量时取最低档
	keys := make([]string, 0, len(byStorage))
	for k := range byStorage {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return byStorage[keys[i]] < byStorage[keys[j]] })
	return byStorage[keys[0]], true
}

// calculateBonus 活动加价：5% 封顶 200
func calculateBonus(estimated float64) float64 {
	bonus := roundYuan(estimated * 0.05)
	if bonus > 200 {
		bonus = 200
	}
	return bonus
}

func roundYuan(v float64) float64 {
	return float64(int64(v + 0.5))
}

type remoteQuoteRequest struct {
	DeviceType string `json:"device_type"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Storage    string `json:"storage,omitempty"`
	Condition  string `json:"condition,omitempty"`
}

type remoteQuoteResponse struct {
	BasePrice      float64 `json:"base_price"`
	EstimatedPrice float64 `json:"estimated_price"`
	Bonus          float64 `json:"bonus"`
}

func fetchRemoteQuote(cfg *config.Config, deviceType, brand, model, storage, condition string) (*Quote, error) {
	payload, err := json.Marshal(remoteQuoteRequest{
		DeviceType: deviceType,
		Brand:      brand,
		Model:      model,
		Storage:    storage,
		Condition:  condition,
	})
	if err != nil {
		return nil, err
	}

	client := utils.NewHTTPClient(time.Duration(cfg.PriceAPITimeout) * time.Second)
	resp, err := client.Post(cfg.PriceAPIBase+"/estimate", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price api returned status %d", resp.StatusCode)
	}

	var remote remoteQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, err
	}
	if remote.EstimatedPrice <= 0 {
		return nil, ErrNoPriceData
	}

	return &Quote{
		BasePrice:      remote.BasePrice,
		EstimatedPrice: remote.EstimatedPrice,
		Bonus:          remote.Bonus,
		TotalPrice:     remote.EstimatedPrice + remote.Bonus,
		Currency:       "CNY",
		Unit:           "元",
		Source:         "api",
	}, nil
}
