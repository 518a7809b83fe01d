package routing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "freshcart-test/1.0" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		query := r.URL.Query()
		if query.Get("q") == "" || query.Get("format") != "json" || query.Get("limit") != "1" {
			t.Errorf("unexpected query: %v", query)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"48.7903","lon":"2.4555"}]`))
	}))
	defer server.Close()

	cfg := &Config{NominatimBaseURL: server.URL, UserAgent: "freshcart-test/1.0"}
	coord, err := Geocode(context.Background(), cfg, "4 allée Carpentier, 94000 Créteil, France")
	if err != nil {
		t.Fatalf("geocode failed: %v", err)
	}
	if coord.Lat != 48.7903 || coord.Lng != 2.4555 {
		t.Fatalf("coord = %+v", coord)
	}
}

func TestGeocodeNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := &Config{NominatimBaseURL: server.URL, UserAgent: "freshcart-test/1.0"}
	if _, err := Geocode(context.Background(), cfg, "nowhere"); !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestGeocodeRequiresUserAgent(t *testing.T) {
	cfg := &Config{NominatimBaseURL: "http://localhost:9"}
	if _, err := Geocode(context.Background(), cfg, "anywhere"); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("err = %v, want ErrConfigInvalid", err)
	}
}

func TestDrivingRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/directions/driving-car" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("authorization = %q, want test-key", r.Header.Get("Authorization"))
		}
		var payload struct {
			Coordinates [][]float64 `json:"coordinates"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body failed: %v", err)
		}
		// 坐标顺序必须是 [lng, lat]
		if len(payload.Coordinates) != 2 || payload.Coordinates[0][0] != 2.4555 || payload.Coordinates[0][1] != 48.7903 {
			t.Errorf("coordinates = %v", payload.Coordinates)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes":[{"summary":{"distance":8120,"duration":1500}}]}`))
	}))
	defer server.Close()

	cfg := &Config{DirectionsBaseURL: server.URL, APIKey: "test-key", UserAgent: "freshcart-test/1.0"}
	origin := Coordinate{Lat: 48.7903, Lng: 2.4555}
	dest := Coordinate{Lat: 48.8566, Lng: 2.3522}
	summary, err := DrivingRoute(context.Background(), cfg, origin, dest)
	if err != nil {
		t.Fatalf("driving route failed: %v", err)
	}
	if summary.DistanceKm != 8.12 {
		t.Fatalf("distance = %.2f, want 8.12", summary.DistanceKm)
	}
	if summary.DurationMinutes != 25 {
		t.Fatalf("duration = %d, want 25", summary.DurationMinutes)
	}
}

func TestDrivingRouteRequiresAPIKey(t *testing.T) {
	cfg := &Config{UserAgent: "freshcart-test/1.0"}
	_, err := DrivingRoute(context.Background(), cfg, Coordinate{}, Coordinate{})
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("err = %v, want ErrConfigInvalid", err)
	}
}

func TestDrivingRouteNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[]}`))
	}))
	defer server.Close()

	cfg := &Config{DirectionsBaseURL: server.URL, APIKey: "test-key", UserAgent: "freshcart-test/1.0"}
	if _, err := DrivingRoute(context.Background(), cfg, Coordinate{}, Coordinate{}); !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestHaversine(t *testing.T) {
	// 赤道上经度相差 1 度约 111.19 公里
	a := Coordinate{Lat: 0, Lng: 0}
	b := Coordinate{Lat: 0, Lng: 1}
	if got := Haversine(a, b); got != 111.19 {
		t.Fatalf("equator degree = %.2f km, want 111.19", got)
	}
	if got := Haversine(a, a); got != 0 {
		t.Fatalf("identical points = %.2f km, want 0", got)
	}
}

func TestRoundKm(t *testing.T) {
	if got := RoundKm(8.119); got != 8.12 {
		t.Fatalf("RoundKm(8.119) = %v", got)
	}
	if got := RoundKm(8.114); got != 8.11 {
		t.Fatalf("RoundKm(8.114) = %v", got)
	}
}
