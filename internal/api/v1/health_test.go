package v1_test

import (
	"database/sql"
	"testing"

	"tasktracker/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
)

func TestHealthWithoutBackends(t *testing.T) {
	app := CreateTestApp()

	status, result := doRequest(t, app, "GET", path("/health"), "", nil)
	expectStatus(t, status, fiber.StatusOK, "health")
	if data, ok := result["data"].(map[string]interface{}); !ok || len(data) != 0 {
		t.Errorf("Expected no backend checks, got %v", result["data"])
	}
}

func TestHealthReportsRedis(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("Error starting miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	app := createTestAppWith(func(d *config.Dependencies) { d.RedisClient = client })

	status, result := doRequest(t, app, "GET", path("/health"), "", nil)
	expectStatus(t, status, fiber.StatusOK, "redis up")
	if data := result["data"].(map[string]interface{}); data["redis"] != "up" {
		t.Errorf("Expected redis up, got %v", data["redis"])
	}

	mr.Close()
	status, result = doRequest(t, app, "GET", path("/health"), "", nil)
	expectStatus(t, status, fiber.StatusServiceUnavailable, "redis down")
	if data := result["data"].(map[string]interface{}); data["redis"] != "down" {
		t.Errorf("Expected redis down, got %v", data["redis"])
	}
}

func TestHealthReportsDatabase(t *testing.T) {
	// Nothing listens on port 1, so the ping fails.
	db, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1")
	if err != nil {
		t.Fatalf("Error opening DB: %v", err)
	}
	defer db.Close()

	app := createTestAppWith(func(d *config.Dependencies) { d.DB = db })

	status, result := doRequest(t, app, "GET", path("/health"), "", nil)
	expectStatus(t, status, fiber.StatusServiceUnavailable, "database down")
	if data := result["data"].(map[string]interface{}); data["database"] != "down" {
		t.Errorf("Expected database down, got %v", data["database"])
	}
	if result["success"] != false {
		t.Errorf("Expected success=false")
	}
}
