package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func testApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{MaxMessageLength: 50}))
	app.Post("/api/v1/chat/message", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	return app
}

func post(t *testing.T, app *fiber.App, contentType, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/chat/message", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestMiddlewareAcceptsValidMessage(t *testing.T) {
	app := testApp()
	code := post(t, app, "application/json", `{"session_id":"s1","message":"show po status"}`)
	if code != fiber.StatusOK {
		t.Fatalf("want 200, got %d", code)
	}
}

func TestMiddlewareRejectsUnsupportedContentType(t *testing.T) {
	app := testApp()
	code := post(t, app, "text/plain", `{"message":"hi"}`)
	if code != fiber.StatusUnsupportedMediaType {
		t.Fatalf("want 415, got %d", code)
	}
}

func TestMiddlewareRejectsMissingMessage(t *testing.T) {
	app := testApp()

	code := post(t, app, "application/json", `{"session_id":"s1"}`)
	if code != fiber.StatusBadRequest {
		t.Fatalf("want 400 for missing message, got %d", code)
	}

	code = post(t, app, "application/json", `{"message":"   "}`)
	if code != fiber.StatusBadRequest {
		t.Fatalf("want 400 for blank message, got %d", code)
	}

	code = post(t, app, "application/json", `not json`)
	if code != fiber.StatusBadRequest {
		t.Fatalf("want 400 for invalid JSON, got %d", code)
	}
}

func TestMiddlewareRejectsOversizedMessage(t *testing.T) {
	app := testApp()
	long := strings.Repeat("a", 51)
	code := post(t, app, "application/json", `{"message":"`+long+`"}`)
	if code != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", code)
	}
}

func TestMiddlewareScreensScriptTags(t *testing.T) {
	app := testApp()
	code := post(t, app, "application/json", `{"message":"<script>alert(1)</script>"}`)
	if code != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", code)
	}
}
