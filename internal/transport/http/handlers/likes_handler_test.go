package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	likessvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/likes"
)

type tierStoreStub struct {
	tier string
}

func (s tierStoreStub) GetQuota(context.Context, int64) (pgrepo.QuotaRecord, error) {
	return pgrepo.QuotaRecord{SubscriptionTier: s.tier}, nil
}

type incomingStoreStub struct {
	count int
}

func (s incomingStoreStub) CountIncomingLikes(context.Context, int64) (int, error) {
	return s.count, nil
}

func (incomingStoreStub) ListIncomingLikes(context.Context, int64, int) ([]pgrepo.IncomingLikeRecord, error) {
	return nil, nil
}

func TestIncomingLikesFreeTierShape(t *testing.T) {
	svc := likessvc.NewService(likessvc.Dependencies{
		Tiers:    tierStoreStub{tier: "free"},
		Incoming: incomingStoreStub{count: 3},
	}, likessvc.Config{})
	h := NewLikesHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/likes/incoming", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 101,
		SID:    "sid-101",
	}))

	rr := httptest.NewRecorder()
	h.Incoming(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		Likes  []json.RawMessage `json:"likes"`
		CanSee bool              `json:"can_see"`
		Count  int               `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.CanSee {
		t.Fatal("free tier must not see likers")
	}
	if payload.Count != 3 {
		t.Fatalf("unexpected count: got %d want 3", payload.Count)
	}
	if len(payload.Likes) != 0 {
		t.Fatalf("unexpected likes payload: got %d entries want none", len(payload.Likes))
	}
}
