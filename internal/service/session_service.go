package service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/money"
	"github.com/pokercount/backend/internal/storage"
)

// SessionService handles game session recording.
type SessionService struct {
	store storage.Store
}

// NewSessionService creates a new SessionService with the given storage backend.
func NewSessionService(store storage.Store) *SessionService {
	return &SessionService{store: store}
}

type createSessionRequest struct {
	Name  string          `json:"name"`
	Date  string          `json:"date"`
	BuyIn decimal.Decimal `json:"buy_in"`

	// Cashouts maps player ID to the amount the player left the table with.
	// Net balances are derived server-side as cash-out minus buy-in.
	Cashouts map[string]decimal.Decimal `json:"cashouts"`
}

type sessionJSON struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	Name      string          `json:"name"`
	Date      string          `json:"date"`
	BuyIn     decimal.Decimal `json:"buy_in"`
	CreatedAt int64           `json:"created_at"`
	Balances  []balanceJSON   `json:"balances"`
}

type balanceJSON struct {
	PlayerID string          `json:"player_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// CreateSession records a game night with per-player cash-outs.
func (s *SessionService) CreateSession(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	var req createSessionRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "session name required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	buyIn := money.FromDecimal(req.BuyIn)
	if buyIn < 0 {
		respondError(w, http.StatusBadRequest, "buy_in must be non-negative")
		return
	}

	if _, err := s.store.GetGroup(r.Context(), groupID); err != nil {
		respondStoreError(w, err)
		return
	}
	players, err := s.store.ListPlayers(r.Context(), groupID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	known := make(map[string]bool, len(players))
	for _, player := range players {
		known[player.ID] = true
	}

	session := &models.Session{
		GroupID: groupID,
		Name:    req.Name,
		Date:    req.Date,
		BuyIn:   buyIn,
	}
	for playerID, cashout := range req.Cashouts {
		if !known[playerID] {
			respondError(w, http.StatusBadRequest, "unknown player id "+playerID)
			return
		}
		session.Balances = append(session.Balances, models.Balance{
			PlayerID: playerID,
			Amount:   money.FromDecimal(cashout) - buyIn,
		})
	}

	if err := s.store.CreateSession(r.Context(), session); err != nil {
		slog.Error("CreateSession failed", "group_id", groupID, "error", err)
		respondStoreError(w, err)
		return
	}

	slog.Info("Session recorded",
		"group_id", groupID,
		"session_id", session.ID,
		"players", len(session.Balances),
	)
	respond(w, http.StatusCreated, toSessionJSON(session))
}

// GetSession retrieves one session with its balances.
func (s *SessionService) GetSession(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	sessionID := r.PathValue("sessionID")

	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if session.GroupID != groupID {
		respondError(w, http.StatusNotFound, "session not in this group")
		return
	}
	respond(w, http.StatusOK, toSessionJSON(session))
}

// DeleteSession removes a session and its balances.
func (s *SessionService) DeleteSession(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	sessionID := r.PathValue("sessionID")

	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if session.GroupID != groupID {
		respondError(w, http.StatusNotFound, "session not in this group")
		return
	}

	if err := s.store.DeleteSession(r.Context(), sessionID); err != nil {
		respondStoreError(w, err)
		return
	}
	slog.Info("Session deleted", "group_id", groupID, "session_id", sessionID)
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

func toSessionJSON(session *models.Session) sessionJSON {
	balances := make([]balanceJSON, len(session.Balances))
	for i, balance := range session.Balances {
		balances[i] = balanceJSON{
			PlayerID: balance.PlayerID,
			Amount:   balance.Amount.Decimal(),
		}
	}
	return sessionJSON{
		ID:        session.ID,
		GroupID:   session.GroupID,
		Name:      session.Name,
		Date:      session.Date,
		BuyIn:     session.BuyIn.Decimal(),
		CreatedAt: session.CreatedAt,
		Balances:  balances,
	}
}
