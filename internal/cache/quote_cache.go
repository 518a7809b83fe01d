package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DeliveryQuoteEntry 配送报价缓存条目
type DeliveryQuoteEntry struct {
	DistanceKm       float64 `json:"distance_km"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	Fee              string  `json:"fee"`
	CachedAt         int64   `json:"cached_at"`
}

func deliveryQuoteKey(addressKey string) string {
	// 归一化地址可能较长，哈希后作为缓存键
	sum := sha256.Sum256([]byte(addressKey))
	return fmt.Sprintf("delivery:quote:%s", hex.EncodeToString(sum[:16]))
}

// GetDeliveryQuote 获取配送报价缓存
func GetDeliveryQuote(ctx context.Context, addressKey string) (*DeliveryQuoteEntry, bool, error) {
	if addressKey == "" {
		return nil, false, nil
	}
	var entry DeliveryQuoteEntry
	hit, err := GetJSON(ctx, deliveryQuoteKey(addressKey), &entry)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &entry, true, nil
}

// SetDeliveryQuote 写入配送报价缓存
func SetDeliveryQuote(ctx context.Context, addressKey string, entry *DeliveryQuoteEntry, ttl time.Duration) error {
	if addressKey == "" || entry == nil {
		return nil
	}
	if entry.CachedAt == 0 {
		entry.CachedAt = time.Now().Unix()
	}
	return SetJSON(ctx, deliveryQuoteKey(addressKey), entry, ttl)
}
