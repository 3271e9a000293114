package v1_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	v1 "tasktracker/internal/api/v1"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/repository/memory"
	"tasktracker/internal/service"
	"tasktracker/pkg/token"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// CreateTestApp builds the API on an in-memory store.
func CreateTestApp() *fiber.App {
	return createTestAppWith(nil)
}

// createTestAppWith lets a test set extra dependencies before routing.
func createTestAppWith(configure func(*config.Dependencies)) *fiber.App {
	tokens := token.NewManager("test-secret", time.Hour)
	svc := service.New(memory.New(), tokens, service.WithBcryptCost(bcrypt.MinCost))
	deps := config.NewDependencies(svc, tokens, nil)
	if configure != nil {
		configure(deps)
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.FiberErrorHandler})
	app.Use(middleware.ErrorHandler())
	v1.RegisterRoutes(app, deps)
	return app
}

// doRequest sends a JSON request and decodes the envelope.
func doRequest(t *testing.T, app *fiber.App, method, url, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Error encoding body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Error decoding %s %s response: %v", method, url, err)
	}
	return resp.StatusCode, result
}

// registerAndLogin creates a user and returns its token and id.
func registerAndLogin(t *testing.T, app *fiber.App, name string) (string, int64) {
	t.Helper()
	status, _ := doRequest(t, app, "POST", "/api/v1/register", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "secret123",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status %d on register but got %d", fiber.StatusCreated, status)
	}

	status, result := doRequest(t, app, "POST", "/api/v1/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "secret123",
	})
	if status != fiber.StatusOK {
		t.Fatalf("Expected status %d on login but got %d", fiber.StatusOK, status)
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data field in login response")
	}
	tok, ok := data["token"].(string)
	if !ok || tok == "" {
		t.Fatalf("Expected valid token")
	}
	return tok, int64(data["user_id"].(float64))
}

// createID posts body to url and returns the id of the created resource.
func createID(t *testing.T, app *fiber.App, url, token string, body interface{}) int64 {
	t.Helper()
	status, result := doRequest(t, app, "POST", url, token, body)
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status %d on POST %s but got %d (%v)", fiber.StatusCreated, url, status, result["message"])
	}
	data := result["data"].(map[string]interface{})
	return int64(data["id"].(float64))
}

func expectStatus(t *testing.T, got, want int, what string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected status %d but got %d", what, want, got)
	}
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf("/api/v1"+format, args...)
}
