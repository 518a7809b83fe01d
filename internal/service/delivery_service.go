package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/freshcart-next/internal/cache"
	"github.com/freshcart-next/internal/config"
	"github.com/freshcart-next/internal/logger"
	"github.com/freshcart-next/internal/models"
	"github.com/freshcart-next/internal/routing"
)

// 路线服务失联时用大圆距离回退估算时长的参考车速
const fallbackSpeedKmh = 30.0

// DeliveryQuote 配送报价
type DeliveryQuote struct {
	DistanceKm       float64      `json:"distance_km"`
	EstimatedMinutes int          `json:"estimated_minutes"`
	Fee              models.Money `json:"fee"`
}

// RouteProvider 路线查询抽象（按地址文本返回驾车摘要）
type RouteProvider interface {
	Route(ctx context.Context, originQuery, destQuery string) (*routing.RouteSummary, error)
}

type routingProvider struct {
	cfg *routing.Config
}

// NewRouteProvider 基于 Nominatim + OpenRouteService 的路线查询实现
func NewRouteProvider(cfg config.RoutingConfig) RouteProvider {
	return &routingProvider{
		cfg: &routing.Config{
			NominatimBaseURL:  cfg.NominatimBaseURL,
			DirectionsBaseURL: cfg.DirectionsBaseURL,
			APIKey:            cfg.APIKey,
			UserAgent:         cfg.UserAgent,
			TimeoutMS:         cfg.TimeoutMS,
		},
	}
}

// Route 地理编码两端地址后查询驾车路线，路线服务失败时回退大圆估算
func (p *routingProvider) Route(ctx context.Context, originQuery, destQuery string) (*routing.RouteSummary, error) {
	origin, err := routing.Geocode(ctx, p.cfg, originQuery)
	if err != nil {
		return nil, err
	}
	dest, err := routing.Geocode(ctx, p.cfg, destQuery)
	if err != nil {
		return nil, err
	}

	summary, err := routing.DrivingRoute(ctx, p.cfg, origin, dest)
	if err == nil {
		return summary, nil
	}
	logger.Warnw("routing_directions_fallback_haversine", "error", err)

	distanceKm := routing.Haversine(origin, dest)
	minutes := int(distanceKm / fallbackSpeedKmh * 60)
	if minutes < 1 {
		minutes = 1
	}
	return &routing.RouteSummary{
		DistanceKm:      distanceKm,
		DurationMinutes: minutes,
	}, nil
}

type feeTier struct {
	maxKm float64
	fee   models.Money
}

// DeliveryService 配送报价服务
type DeliveryService struct {
	store    config.StoreConfig
	cfg      config.DeliveryConfig
	provider RouteProvider
	tiers    []feeTier

	scheduler *QuoteScheduler
}

// NewDeliveryService 创建配送报价服务
func NewDeliveryService(store config.StoreConfig, cfg config.DeliveryConfig, provider RouteProvider) *DeliveryService {
	s := &DeliveryService{
		store:    store,
		cfg:      cfg,
		provider: provider,
		tiers:    parseFeeTiers(cfg.FeeTiers),
	}

	debounce := time.Duration(cfg.DebounceMS) * time.Millisecond
	if debounce <= 0 {
		debounce = time.Second
	}
	s.scheduler = NewQuoteScheduler(debounce, s.computeAndCacheQuote)
	return s
}

func parseFeeTiers(raw []config.DeliveryFeeTier) []feeTier {
	tiers := make([]feeTier, 0, len(raw))
	for _, entry := range raw {
		if entry.MaxKm <= 0 {
			continue
		}
		fee, err := models.NewMoneyFromString(entry.Fee)
		if err != nil {
			logger.Warnw("delivery_fee_tier_invalid", "max_km", entry.MaxKm, "fee", entry.Fee, "error", err)
			continue
		}
		tiers = append(tiers, feeTier{maxKm: entry.MaxKm, fee: fee})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].maxKm < tiers[j].maxKm })
	return tiers
}

func (s *DeliveryService) feeForDistance(distanceKm float64) (models.Money, bool) {
	for _, tier := range s.tiers {
		if distanceKm <= tier.maxKm {
			return tier.fee, true
		}
	}
	return models.Money{}, false
}

// Quote 计算配送报价（地址不完整直接拒绝，不触发任何路由调用）
func (s *DeliveryService) Quote(ctx context.Context, addr models.ShippingAddress) (*DeliveryQuote, error) {
	if !addr.Complete() {
		return nil, ErrAddressIncomplete
	}

	addressKey := addr.NormalizedKey()
	if entry, hit, err := cache.GetDeliveryQuote(ctx, addressKey); err == nil && hit {
		fee, feeErr := models.NewMoneyFromString(entry.Fee)
		if feeErr == nil {
			return &DeliveryQuote{
				DistanceKm:       entry.DistanceKm,
				EstimatedMinutes: entry.EstimatedMinutes,
				Fee:              fee,
			}, nil
		}
	} else if err != nil {
		logger.Warnw("delivery_quote_cache_read_failed", "error", err)
	}

	quote, err := s.computeQuote(ctx, addr)
	if err != nil {
		return nil, err
	}

	if err := cache.SetDeliveryQuote(ctx, addressKey, &cache.DeliveryQuoteEntry{
		DistanceKm:       quote.DistanceKm,
		EstimatedMinutes: quote.EstimatedMinutes,
		Fee:              quote.Fee.String(),
	}, s.quoteCacheTTL()); err != nil {
		logger.Warnw("delivery_quote_cache_write_failed", "error", err)
	}
	return quote, nil
}

func (s *DeliveryService) computeQuote(ctx context.Context, addr models.ShippingAddress) (*DeliveryQuote, error) {
	summary, err := s.provider.Route(ctx, s.store.OriginAddress, addr.RouteQuery())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	if s.cfg.MaxDistanceKm > 0 && summary.DistanceKm > s.cfg.MaxDistanceKm {
		return nil, ErrOutOfDeliveryRange
	}
	fee, ok := s.feeForDistance(summary.DistanceKm)
	if !ok {
		return nil, ErrOutOfDeliveryRange
	}
	return &DeliveryQuote{
		DistanceKm:       summary.DistanceKm,
		EstimatedMinutes: summary.DurationMinutes,
		Fee:              fee,
	}, nil
}

func (s *DeliveryService) quoteCacheTTL() time.Duration {
	if s.cfg.QuoteCacheTTLSeconds > 0 {
		return time.Duration(s.cfg.QuoteCacheTTLSeconds) * time.Second
	}
	return 10 * time.Minute
}

// ScheduleQuoteRefresh 地址编辑防抖：取消同键挂起任务，延迟后仅最新任务落缓存
func (s *DeliveryService) ScheduleQuoteRefresh(key string, addr models.ShippingAddress) {
	if !addr.Complete() {
		s.scheduler.Cancel(key)
		return
	}
	s.scheduler.Schedule(key, addr)
}

// StopScheduler 停止防抖调度（服务关闭时调用）
func (s *DeliveryService) StopScheduler() {
	s.scheduler.Stop()
}

func (s *DeliveryService) computeAndCacheQuote(ctx context.Context, addr models.ShippingAddress) {
	quote, err := s.computeQuote(ctx, addr)
	if err != nil {
		logger.Debugw("delivery_quote_refresh_skip", "error", err)
		return
	}
	if err := cache.SetDeliveryQuote(ctx, addr.NormalizedKey(), &cache.DeliveryQuoteEntry{
		DistanceKm:       quote.DistanceKm,
		EstimatedMinutes: quote.EstimatedMinutes,
		Fee:              quote.Fee.String(),
	}, s.quoteCacheTTL()); err != nil {
		logger.Warnw("delivery_quote_refresh_cache_failed", "error", err)
	}
}
