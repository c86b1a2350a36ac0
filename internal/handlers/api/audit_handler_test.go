package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/exchora/auditchain/internal/audit"
	"github.com/exchora/auditchain/internal/middlewares"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testHashSecret = "test-hash-secret"
	testJWTSecret  = "test-jwt-secret"
)

func newTestApp(production bool) (*fiber.App, *audit.Log) {
	auditLog := audit.NewLog(testHashSecret, production)
	auditHandler := NewAuditHandler(auditLog)

	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
	})
	group := app.Group("/api/audit")
	group.Use(middlewares.NewActorExtractor(testJWTSecret))
	group.Post("/entries", auditHandler.PostEntry)
	group.Get("/entries", auditHandler.GetEntries)
	group.Get("/entries/:id", auditHandler.GetEntry)
	group.Delete("/entries", auditHandler.DeleteEntries)
	group.Get("/chain/verify", auditHandler.GetChainVerify)
	group.Get("/statistics", auditHandler.GetStatistics)
	return app, auditLog
}

func signTestToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": "u1@example.com",
		"roles": []string{"admin", "compliance"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, APIResponse) {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	var envelope APIResponse
	if resp.StatusCode != fiber.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode response body: %v", err)
		}
	}
	resp.Body.Close()
	return resp, envelope
}

func recordRequest(action string) RecordEntryRequest {
	return RecordEntryRequest{
		Action:   action,
		Resource: audit.Resource{Type: "order", ID: "ord-1"},
		Details:  map[string]any{"venue": "spot"},
	}
}

func TestPostEntryAndGet(t *testing.T) {
	app, auditLog := newTestApp(false)
	token := signTestToken(t)

	resp, envelope := doRequest(t, app, fiber.MethodPost, "/api/audit/entries", token, recordRequest("order.cancel"))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%+v)", resp.StatusCode, envelope)
	}
	data := envelope.Data.(map[string]any)
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("response missing entry id: %+v", envelope)
	}

	entry, err := auditLog.GetEntry(id)
	if err != nil {
		t.Fatalf("appended entry not found in log: %v", err)
	}
	if entry.Actor.UserID != "u1" || entry.Actor.Email != "u1@example.com" {
		t.Fatalf("actor not taken from token claims: %+v", entry.Actor)
	}
	if len(entry.Actor.Roles) != 2 || entry.Actor.Roles[0] != "admin" {
		t.Fatalf("roles not canonicalized from token claims: %v", entry.Actor.Roles)
	}

	resp, envelope = doRequest(t, app, fiber.MethodGet, "/api/audit/entries/"+id, token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%+v)", resp.StatusCode, envelope)
	}
}

func TestPostEntryValidation(t *testing.T) {
	app, _ := newTestApp(false)
	token := signTestToken(t)

	resp, envelope := doRequest(t, app, fiber.MethodPost, "/api/audit/entries", token, recordRequest(""))
	if resp.StatusCode != fiber.StatusBadRequest || envelope.Error == nil {
		t.Fatalf("expected 400 with error info, got %d (%+v)", resp.StatusCode, envelope)
	}
}

func TestUnauthorizedRequests(t *testing.T) {
	app, _ := newTestApp(false)

	resp, _ := doRequest(t, app, fiber.MethodGet, "/api/audit/statistics", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", resp.StatusCode)
	}
	resp, _ = doRequest(t, app, fiber.MethodGet, "/api/audit/statistics", "not-a-jwt", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", resp.StatusCode)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	app, _ := newTestApp(false)
	resp, _ := doRequest(t, app, fiber.MethodGet, "/api/audit/entries/unknown-id", signTestToken(t), nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSearchAndVerifyEndpoints(t *testing.T) {
	app, _ := newTestApp(false)
	token := signTestToken(t)
	for _, action := range []string{"a1", "a2", "a3"} {
		resp, envelope := doRequest(t, app, fiber.MethodPost, "/api/audit/entries", token, recordRequest(action))
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("append %q failed: %d (%+v)", action, resp.StatusCode, envelope)
		}
	}

	resp, envelope := doRequest(t, app, fiber.MethodGet, "/api/audit/entries?action=a2", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("search failed: %d", resp.StatusCode)
	}
	data := envelope.Data.(map[string]any)
	entries := data["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one match for a2, got %d", len(entries))
	}
	if fmt.Sprint(data["offset"]) != "0" || fmt.Sprint(data["limit"]) != "100" {
		t.Fatalf("echoed pagination must match the applied page: %+v", data)
	}

	resp, envelope = doRequest(t, app, fiber.MethodGet, "/api/audit/chain/verify", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("verify failed: %d", resp.StatusCode)
	}
	report := envelope.Data.(map[string]any)
	if valid, _ := report["isValid"].(bool); !valid {
		t.Fatalf("expected a valid chain: %+v", report)
	}
	if fmt.Sprint(report["validatedEntries"]) != "3" {
		t.Fatalf("expected 3 validated entries: %+v", report)
	}
}

func TestDeleteEntries(t *testing.T) {
	app, auditLog := newTestApp(false)
	token := signTestToken(t)
	doRequest(t, app, fiber.MethodPost, "/api/audit/entries", token, recordRequest("wipe.me"))

	resp, _ := doRequest(t, app, fiber.MethodDelete, "/api/audit/entries", token, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if auditLog.GetStatistics().TotalEntries != 0 {
		t.Fatalf("log not cleared")
	}

	prodApp, prodLog := newTestApp(true)
	doRequest(t, prodApp, fiber.MethodPost, "/api/audit/entries", token, recordRequest("keep.me"))
	resp, _ = doRequest(t, prodApp, fiber.MethodDelete, "/api/audit/entries", token, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 in production, got %d", resp.StatusCode)
	}
	if prodLog.GetStatistics().TotalEntries != 1 {
		t.Fatalf("production log must be untouched")
	}
}
