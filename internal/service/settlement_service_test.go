package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pokercount/backend/internal/auth"
	"github.com/pokercount/backend/internal/events"
	"github.com/pokercount/backend/internal/middleware"
	"github.com/pokercount/backend/internal/settle"
	"github.com/pokercount/backend/internal/storage/memory"
)

// newTestServer wires the API the way the server binary does, on an
// in-memory store.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	engine := settle.NewEngine(store, events.Noop{})
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager)
	groupSvc := NewGroupService(store)
	sessionSvc := NewSessionService(store)
	settlementSvc := NewSettlementService(store, engine)

	requireAuth := middleware.RequireAuth(jwtManager)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", authSvc.Register)
	mux.HandleFunc("POST /auth/login", authSvc.Login)
	mux.Handle("POST /groups", protected(groupSvc.CreateGroup))
	mux.Handle("GET /groups/{groupID}", protected(groupSvc.GetGroup))
	mux.Handle("POST /groups/{groupID}/players", protected(groupSvc.AddPlayer))
	mux.Handle("POST /groups/{groupID}/sessions", protected(sessionSvc.CreateSession))
	mux.Handle("GET /groups/{groupID}/settlements", protected(settlementSvc.GetSettlements))
	mux.Handle("POST /groups/{groupID}/settlements/{settlementID}/settle", protected(settlementSvc.MarkSettled))
	return mux
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func registerUser(t *testing.T, handler http.Handler, username string) string {
	t.Helper()

	rec := doRequest(t, handler, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"password": "Str0ng-pass!",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp authResponse
	decodeBody(t, rec, &resp)
	return resp.Token
}

func createGroup(t *testing.T, handler http.Handler, token, name string) string {
	t.Helper()

	rec := doRequest(t, handler, http.MethodPost, "/groups", token, map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp groupJSON
	decodeBody(t, rec, &resp)
	return resp.ID
}

func addPlayer(t *testing.T, handler http.Handler, token, groupID, name string) string {
	t.Helper()

	rec := doRequest(t, handler, http.MethodPost, "/groups/"+groupID+"/players", token,
		map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add player returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp playerJSON
	decodeBody(t, rec, &resp)
	return resp.ID
}

func TestSettlementFlow(t *testing.T) {
	handler := newTestServer(t)

	token := registerUser(t, handler, "organizer")
	groupID := createGroup(t, handler, token, "friday-game")
	aliceID := addPlayer(t, handler, token, groupID, "alice")
	bobID := addPlayer(t, handler, token, groupID, "bob")

	// Buy-in 20.00; alice cashes out 35.00 (+15.00), bob 5.00 (-15.00).
	rec := doRequest(t, handler, http.MethodPost, "/groups/"+groupID+"/sessions", token, map[string]any{
		"name":   "week 1",
		"date":   "2024-01-05",
		"buy_in": "20.00",
		"cashouts": map[string]string{
			aliceID: "35.00",
			bobID:   "5.00",
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/groups/"+groupID+"/settlements", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get settlements returned %d: %s", rec.Code, rec.Body.String())
	}
	var view settlementsResponse
	decodeBody(t, rec, &view)

	if len(view.Settlements) != 1 {
		t.Fatalf("got %d settlements, want 1: %+v", len(view.Settlements), view.Settlements)
	}
	pending := view.Settlements[0]
	if pending.FromID != bobID || pending.ToID != aliceID {
		t.Errorf("settlement pair = %s->%s, want %s->%s", pending.FromID, pending.ToID, bobID, aliceID)
	}
	if pending.FromName != "bob" || pending.ToName != "alice" {
		t.Errorf("settlement names = %s->%s, want bob->alice", pending.FromName, pending.ToName)
	}
	if want := decimal.RequireFromString("15"); !pending.Amount.Equal(want) {
		t.Errorf("settlement amount = %s, want %s", pending.Amount, want)
	}
	if pending.Settled {
		t.Error("fresh settlement should be pending")
	}
	if len(view.Positions) != 2 {
		t.Errorf("got %d positions, want 2: %+v", len(view.Positions), view.Positions)
	}

	rec = doRequest(t, handler, http.MethodPost,
		"/groups/"+groupID+"/settlements/"+pending.ID+"/settle", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark settled returned %d: %s", rec.Code, rec.Body.String())
	}
	var marked settlementJSON
	decodeBody(t, rec, &marked)
	if !marked.Settled {
		t.Error("settlement not marked settled")
	}

	// The flag survives a fresh recomputation.
	rec = doRequest(t, handler, http.MethodGet, "/groups/"+groupID+"/settlements", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get settlements returned %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &view)
	if len(view.Settlements) != 1 || !view.Settlements[0].Settled {
		t.Errorf("settled flag lost on recompute: %+v", view.Settlements)
	}
}

func TestSettlementEndpointsRequireAuth(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/groups/any/settlements", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without token got %d, want 401", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/groups/any/settlements", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("with bad token got %d, want 401", rec.Code)
	}
}

func TestSettlementsUnknownGroup(t *testing.T) {
	handler := newTestServer(t)
	token := registerUser(t, handler, "organizer")

	rec := doRequest(t, handler, http.MethodGet, "/groups/missing/settlements", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestMarkSettledUnknownSettlement(t *testing.T) {
	handler := newTestServer(t)

	token := registerUser(t, handler, "organizer")
	groupID := createGroup(t, handler, token, "friday-game")

	rec := doRequest(t, handler, http.MethodPost,
		"/groups/"+groupID+"/settlements/missing/settle", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateSessionValidation(t *testing.T) {
	handler := newTestServer(t)

	token := registerUser(t, handler, "organizer")
	groupID := createGroup(t, handler, token, "friday-game")
	aliceID := addPlayer(t, handler, token, groupID, "alice")

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing name",
			body: map[string]any{"date": "2024-01-05", "buy_in": "20"},
		},
		{
			name: "bad date",
			body: map[string]any{"name": "w1", "date": "05/01/2024", "buy_in": "20"},
		},
		{
			name: "negative buy-in",
			body: map[string]any{"name": "w1", "date": "2024-01-05", "buy_in": "-1"},
		},
		{
			name: "unknown player",
			body: map[string]any{
				"name": "w1", "date": "2024-01-05", "buy_in": "20",
				"cashouts": map[string]string{"ghost": "10", aliceID: "30"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/groups/"+groupID+"/sessions", token, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
