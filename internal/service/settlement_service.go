package service

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pokercount/backend/internal/middleware"
	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/settle"
	"github.com/pokercount/backend/internal/storage"
)

// SettlementService exposes the settle engine: the reconciled settlement
// view of a group and the mark-as-settled command.
type SettlementService struct {
	store  storage.Store
	engine *settle.Engine
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store, engine *settle.Engine) *SettlementService {
	return &SettlementService{store: store, engine: engine}
}

type positionJSON struct {
	PlayerID string          `json:"player_id"`
	Name     string          `json:"name"`
	Net      decimal.Decimal `json:"net"`
}

type settlementJSON struct {
	ID       string          `json:"id"`
	FromID   string          `json:"from_player_id"`
	FromName string          `json:"from_name"`
	ToID     string          `json:"to_player_id"`
	ToName   string          `json:"to_name"`
	Amount   decimal.Decimal `json:"amount"`
	Settled  bool            `json:"settled"`
}

type settlementsResponse struct {
	Positions   []positionJSON   `json:"positions"`
	Settlements []settlementJSON `json:"settlements"`
	History     []settlementJSON `json:"history"`
	Anomalies   []string         `json:"anomalies,omitempty"`
}

// GetSettlements returns the group's reconciled settlement view.
func (s *SettlementService) GetSettlements(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	if _, err := s.store.GetGroup(r.Context(), groupID); err != nil {
		respondStoreError(w, err)
		return
	}

	view, err := s.engine.Settlements(r.Context(), groupID)
	if err != nil {
		slog.Error("GetSettlements failed", "group_id", groupID, "error", err)
		respondStoreError(w, err)
		return
	}

	names, err := s.playerNames(r, groupID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	positions := make([]positionJSON, 0, len(view.Positions))
	for playerID, net := range view.Positions {
		positions = append(positions, positionJSON{
			PlayerID: playerID,
			Name:     names[playerID],
			Net:      net.Decimal(),
		})
	}
	sort.Slice(positions, func(a, b int) bool {
		return positions[a].PlayerID < positions[b].PlayerID
	})

	slog.Info("Settlements computed",
		"group_id", groupID,
		"pending", len(view.Pending),
		"history", len(view.History),
		"anomalies", len(view.Anomalies),
	)
	respond(w, http.StatusOK, settlementsResponse{
		Positions:   positions,
		Settlements: toSettlementJSON(view.Pending, names),
		History:     toSettlementJSON(view.History, names),
		Anomalies:   view.Anomalies,
	})
}

// MarkSettled confirms one pending settlement as paid.
func (s *SettlementService) MarkSettled(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	settlementID := r.PathValue("settlementID")
	userID := middleware.GetUserID(r.Context())

	if _, err := s.store.GetGroup(r.Context(), groupID); err != nil {
		respondStoreError(w, err)
		return
	}

	settlement, err := s.engine.MarkSettled(r.Context(), groupID, settlementID, userID)
	if err != nil {
		slog.Warn("MarkSettled failed",
			"group_id", groupID, "settlement_id", settlementID, "error", err)
		respondStoreError(w, err)
		return
	}

	names, err := s.playerNames(r, groupID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("Settlement marked",
		"group_id", groupID, "settlement_id", settlementID, "user_id", userID)
	respond(w, http.StatusOK, toSettlementJSON([]*models.Settlement{settlement}, names)[0])
}

func (s *SettlementService) playerNames(r *http.Request, groupID string) (map[string]string, error) {
	players, err := s.store.ListPlayers(r.Context(), groupID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(players))
	for _, player := range players {
		names[player.ID] = player.Name
	}
	return names, nil
}

func toSettlementJSON(settlements []*models.Settlement, names map[string]string) []settlementJSON {
	result := make([]settlementJSON, len(settlements))
	for i, settlement := range settlements {
		result[i] = settlementJSON{
			ID:       settlement.ID,
			FromID:   settlement.FromPlayerID,
			FromName: names[settlement.FromPlayerID],
			ToID:     settlement.ToPlayerID,
			ToName:   names[settlement.ToPlayerID],
			Amount:   settlement.Amount.Decimal(),
			Settled:  settlement.Settled,
		}
	}
	return result
}
