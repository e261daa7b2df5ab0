package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	swipesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/swipes"
)

func swipeRequest(t *testing.T, body map[string]any, authenticated bool) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewReader(raw))
	if authenticated {
		req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
			UserID: 101,
			SID:    "sid-101",
		}))
	}
	return req
}

func TestSwipeRejectsUnsupportedDecision(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{}))

	rr := httptest.NewRecorder()
	h.Handle(rr, swipeRequest(t, map[string]any{
		"target_id": 202,
		"decision":  "maybe",
	}, true))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "VALIDATION_ERROR")
	}
}

func TestSwipeRequiresAuthentication(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{}))

	rr := httptest.NewRecorder()
	h.Handle(rr, swipeRequest(t, map[string]any{
		"target_id": 202,
		"decision":  "like",
	}, false))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSwipeRequiresTargetAndDecision(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{}))

	rr := httptest.NewRecorder()
	h.Handle(rr, swipeRequest(t, map[string]any{"target_id": 202}, true))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}
