// Package memory provides an in-memory implementation of storage.Store,
// used in tests and for throwaway local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/storage"
)

// Compile-time check: ensure Store implements storage.Store.
var _ storage.Store = (*Store)(nil)

// Store keeps everything in mutex-guarded maps. Reads return copies so
// callers cannot mutate internal state.
type Store struct {
	mu          sync.Mutex
	users       map[string]*models.User
	groups      map[string]*models.Group
	players     map[string]*models.Player
	sessions    map[string]*models.Session
	settlements map[string][]*models.Settlement // keyed by group ID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		groups:      make(map[string]*models.Group),
		players:     make(map[string]*models.Player),
		sessions:    make(map[string]*models.Session),
		settlements: make(map[string][]*models.Settlement),
	}
}

// CreateUser stores a new user account.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("username %s already exists", user.Username)
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

// GetUserByUsername retrieves a user by login name, or (nil, nil).
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	clone := *user
	return &clone, nil
}

// CreateGroup stores a new group, generating ID and timestamp if unset.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	for _, existing := range s.groups {
		if existing.Name == group.Name {
			return fmt.Errorf("group name %s already exists", group.Name)
		}
	}
	clone := *group
	s.groups[group.ID] = &clone
	return nil
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	clone := *group
	return &clone, nil
}

// GetGroupByName retrieves a group by name, or (nil, nil).
func (s *Store) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, group := range s.groups {
		if group.Name == name {
			clone := *group
			return &clone, nil
		}
	}
	return nil, nil
}

// ListGroups retrieves all groups ordered by name.
func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make([]*models.Group, 0, len(s.groups))
	for _, group := range s.groups {
		clone := *group
		groups = append(groups, &clone)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Name < groups[b].Name })
	return groups, nil
}

// DeleteGroup removes a group and everything it owns.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	delete(s.groups, id)
	for playerID, player := range s.players {
		if player.GroupID == id {
			delete(s.players, playerID)
		}
	}
	for sessionID, session := range s.sessions {
		if session.GroupID == id {
			delete(s.sessions, sessionID)
		}
	}
	delete(s.settlements, id)
	return nil
}

// CreatePlayer adds a player to a group.
func (s *Store) CreatePlayer(ctx context.Context, player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player.ID == "" {
		player.ID = uuid.New().String()
	}
	clone := *player
	s.players[player.ID] = &clone
	return nil
}

// GetPlayer retrieves a player by ID.
func (s *Store) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	clone := *player
	return &clone, nil
}

// ListPlayers retrieves a group's players ordered by name.
func (s *Store) ListPlayers(ctx context.Context, groupID string) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var players []*models.Player
	for _, player := range s.players {
		if player.GroupID == groupID {
			clone := *player
			players = append(players, &clone)
		}
	}
	sort.Slice(players, func(a, b int) bool { return players[a].Name < players[b].Name })
	return players, nil
}

// UpdatePlayer updates a player record.
func (s *Store) UpdatePlayer(ctx context.Context, player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[player.ID]; !ok {
		return fmt.Errorf("player %s: %w", player.ID, storage.ErrNotFound)
	}
	clone := *player
	s.players[player.ID] = &clone
	return nil
}

// DeletePlayer removes a player.
func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	delete(s.players, id)
	return nil
}

// CreateSession stores a session with its balances.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().Unix()
	}
	for i := range session.Balances {
		session.Balances[i].SessionID = session.ID
	}
	clone := *session
	clone.Balances = append([]models.Balance(nil), session.Balances...)
	s.sessions[session.ID] = &clone
	return nil
}

// GetSession retrieves one session with balances.
func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	clone := *session
	clone.Balances = append([]models.Balance(nil), session.Balances...)
	return &clone, nil
}

// ListSessionsWithBalances retrieves a group's sessions ordered by date then
// creation time.
func (s *Store) ListSessionsWithBalances(ctx context.Context, groupID string) ([]*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []*models.Session
	for _, session := range s.sessions {
		if session.GroupID != groupID {
			continue
		}
		clone := *session
		clone.Balances = append([]models.Balance(nil), session.Balances...)
		sessions = append(sessions, &clone)
	}
	sort.Slice(sessions, func(a, b int) bool {
		if sessions[a].Date != sessions[b].Date {
			return sessions[a].Date < sessions[b].Date
		}
		return sessions[a].CreatedAt < sessions[b].CreatedAt
	})
	return sessions, nil
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// GetSettlements retrieves a group's settlement records.
func (s *Store) GetSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.settlements[groupID]
	copied := make([]*models.Settlement, len(records))
	for i, record := range records {
		clone := *record
		copied[i] = &clone
	}
	return copied, nil
}

// PutSettlements replaces a group's settlement records.
func (s *Store) PutSettlements(ctx context.Context, groupID string, settlements []*models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]*models.Settlement, len(settlements))
	for i, record := range settlements {
		clone := *record
		copied[i] = &clone
	}
	s.settlements[groupID] = copied
	return nil
}

// MarkSettled sets settled=true on one record.
func (s *Store) MarkSettled(ctx context.Context, groupID, settlementID string) (*models.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.settlements[groupID] {
		if record.ID == settlementID {
			record.Settled = true
			record.UpdatedAt = time.Now().Unix()
			clone := *record
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
