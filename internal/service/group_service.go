package service

import (
	"log/slog"
	"net/http"

	"github.com/pokercount/backend/internal/middleware"
	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/storage"
)

// GroupService handles group and player management.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

type groupJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatorID   string `json:"creator_id"`
	CreatedAt   int64  `json:"created_at"`
	PlayerCount int    `json:"player_count,omitempty"`
}

type playerJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"user_id,omitempty"`
	Joined bool   `json:"joined"`
}

// CreateGroup creates a new group with a unique name.
func (s *GroupService) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "group name required")
		return
	}

	existing, err := s.store.GetGroupByName(r.Context(), req.Name)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "group name already exists")
		return
	}

	group := &models.Group{
		Name:      req.Name,
		CreatorID: middleware.GetUserID(r.Context()),
	}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		respondStoreError(w, err)
		return
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name)
	respond(w, http.StatusCreated, groupJSON{
		ID:        group.ID,
		Name:      group.Name,
		CreatorID: group.CreatorID,
		CreatedAt: group.CreatedAt,
	})
}

// ListGroups retrieves all groups with their player counts.
func (s *GroupService) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		respondStoreError(w, err)
		return
	}

	result := make([]groupJSON, 0, len(groups))
	for _, group := range groups {
		players, err := s.store.ListPlayers(r.Context(), group.ID)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		result = append(result, groupJSON{
			ID:          group.ID,
			Name:        group.Name,
			CreatorID:   group.CreatorID,
			CreatedAt:   group.CreatedAt,
			PlayerCount: len(players),
		})
	}
	respond(w, http.StatusOK, map[string]any{"groups": result})
}

// GetGroup retrieves one group with its players.
func (s *GroupService) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	players, err := s.store.ListPlayers(r.Context(), groupID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	playerList := make([]playerJSON, len(players))
	for i, player := range players {
		playerList[i] = playerJSON{
			ID:     player.ID,
			Name:   player.Name,
			UserID: player.UserID,
			Joined: player.Joined,
		}
	}
	respond(w, http.StatusOK, map[string]any{
		"group": groupJSON{
			ID:        group.ID,
			Name:      group.Name,
			CreatorID: group.CreatorID,
			CreatedAt: group.CreatedAt,
		},
		"players": playerList,
	})
}

// DeleteGroup removes a group and everything it owns.
func (s *GroupService) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	if err := s.store.DeleteGroup(r.Context(), groupID); err != nil {
		respondStoreError(w, err)
		return
	}
	slog.Info("Group deleted", "group_id", groupID)
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

// AddPlayer adds a named player to a group.
func (s *GroupService) AddPlayer(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "player name required")
		return
	}

	if _, err := s.store.GetGroup(r.Context(), groupID); err != nil {
		respondStoreError(w, err)
		return
	}

	player := &models.Player{GroupID: groupID, Name: req.Name}
	if err := s.store.CreatePlayer(r.Context(), player); err != nil {
		slog.Error("AddPlayer failed", "group_id", groupID, "error", err)
		respondStoreError(w, err)
		return
	}

	slog.Info("Player added", "group_id", groupID, "player_id", player.ID)
	respond(w, http.StatusCreated, playerJSON{ID: player.ID, Name: player.Name})
}

// RemovePlayer removes a player from a group.
func (s *GroupService) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	playerID := r.PathValue("playerID")

	player, err := s.store.GetPlayer(r.Context(), playerID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if player.GroupID != groupID {
		respondError(w, http.StatusNotFound, "player not in this group")
		return
	}

	if err := s.store.DeletePlayer(r.Context(), playerID); err != nil {
		respondStoreError(w, err)
		return
	}
	slog.Info("Player removed", "group_id", groupID, "player_id", playerID)
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

// JoinGroup lets the authenticated user claim an unclaimed player seat.
func (s *GroupService) JoinGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	userID := middleware.GetUserID(r.Context())

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := decode(r, &req); err != nil || req.PlayerID == "" {
		respondError(w, http.StatusBadRequest, "player_id required")
		return
	}

	player, err := s.store.GetPlayer(r.Context(), req.PlayerID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if player.GroupID != groupID {
		respondError(w, http.StatusNotFound, "player not in this group")
		return
	}
	if player.Joined && player.UserID != userID {
		respondError(w, http.StatusConflict, "player already claimed")
		return
	}

	player.UserID = userID
	player.Joined = true
	if err := s.store.UpdatePlayer(r.Context(), player); err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("Player claimed", "group_id", groupID, "player_id", player.ID, "user_id", userID)
	respond(w, http.StatusOK, playerJSON{
		ID:     player.ID,
		Name:   player.Name,
		UserID: player.UserID,
		Joined: player.Joined,
	})
}
