package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("routing config invalid")
	ErrRequestFailed   = errors.New("routing request failed")
	ErrResponseInvalid = errors.New("routing response invalid")
	ErrNoResult        = errors.New("routing no result")
)

const (
	defaultNominatimBaseURL  = "https://nominatim.openstreetmap.org"
	defaultDirectionsBaseURL = "https://api.openrouteservice.org"
	defaultTimeoutMS         = 8000

	earthRadiusKm = 6371.0
)

// Config 路由服务配置（地理编码 + 驾车路线）。
type Config struct {
	NominatimBaseURL  string `json:"nominatim_base_url"`
	DirectionsBaseURL string `json:"directions_base_url"`
	APIKey            string `json:"api_key"`
	UserAgent         string `json:"user_agent"`
	TimeoutMS         int    `json:"timeout_ms"`
}

// Coordinate 经纬度坐标。
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteSummary 驾车路线摘要。
type RouteSummary struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	// Nominatim 使用策略要求请求携带可识别的 User-Agent
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return fmt.Errorf("%w: user_agent is required", ErrConfigInvalid)
	}
	return nil
}

// Geocode 将地址文本解析为坐标（取首个匹配）。
func Geocode(ctx context.Context, cfg *Config, query string) (Coordinate, error) {
	if err := ValidateConfig(cfg); err != nil {
		return Coordinate{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Coordinate{}, fmt.Errorf("%w: query is required", ErrConfigInvalid)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	endpoint := nominatimBaseURL(cfg) + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := doRequest(cfg, req)
	if err != nil {
		return Coordinate{}, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return Coordinate{}, fmt.Errorf("%w: geocode status %d", ErrResponseInvalid, statusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return Coordinate{}, fmt.Errorf("%w: decode geocode response failed", ErrResponseInvalid)
	}
	if len(results) == 0 {
		return Coordinate{}, fmt.Errorf("%w: address not found", ErrNoResult)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(results[0].Lat), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: invalid latitude", ErrResponseInvalid)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(results[0].Lon), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: invalid longitude", ErrResponseInvalid)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

// DrivingRoute 查询两点间驾车距离与时长。
func DrivingRoute(ctx context.Context, cfg *Config, origin, dest Coordinate) (*RouteSummary, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: api_key is required", ErrConfigInvalid)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// OpenRouteService 坐标顺序为 [lng, lat]
	payload := map[string]interface{}{
		"coordinates": [][]float64{
			{origin.Lng, origin.Lat},
			{dest.Lng, dest.Lat},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request failed", ErrRequestFailed)
	}

	endpoint := directionsBaseURL(cfg) + "/v2/directions/driving-car"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := doRequest(cfg, req)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: directions status %d", ErrResponseInvalid, statusCode)
	}

	var decoded struct {
		Routes []struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode directions response failed", ErrResponseInvalid)
	}
	if len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("%w: no route", ErrNoResult)
	}

	summary := decoded.Routes[0].Summary
	return &RouteSummary{
		DistanceKm:      RoundKm(summary.Distance / 1000),
		DurationMinutes: int(math.Ceil(summary.Duration / 60)),
	}, nil
}

// Haversine 大圆距离（公里），路线服务不可用时的回退估算。
func Haversine(a, b Coordinate) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return RoundKm(earthRadiusKm * c)
}

// RoundKm 公里数保留 2 位小数。
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func nominatimBaseURL(cfg *Config) string {
	base := strings.TrimRight(strings.TrimSpace(cfg.NominatimBaseURL), "/")
	if base == "" {
		base = defaultNominatimBaseURL
	}
	return base
}

func directionsBaseURL(cfg *Config) string {
	base := strings.TrimRight(strings.TrimSpace(cfg.DirectionsBaseURL), "/")
	if base == "" {
		base = defaultDirectionsBaseURL
	}
	return base
}

func requestTimeout(cfg *Config) time.Duration {
	if cfg != nil && cfg.TimeoutMS > 0 {
		return time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return defaultTimeoutMS * time.Millisecond
}

func doRequest(cfg *Config, req *http.Request) ([]byte, int, error) {
	resp, err := (&http.Client{Timeout: requestTimeout(cfg)}).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}
