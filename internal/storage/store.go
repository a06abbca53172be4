// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/pokercount/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for the tracker's persistence operations.
// This abstraction allows swapping storage backends (SQLite, in-memory)
// without changing the service or engine layers.
type Store interface {
	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves a user by login name.
	// Returns (nil, nil) when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves a user by ID, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateGroup persists a new group. The group's ID and CreatedAt are
	// populated by the store when unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID, or ErrNotFound.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// GetGroupByName retrieves a group by its unique name.
	// Returns (nil, nil) when no such group exists.
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)

	// ListGroups retrieves all groups.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// DeleteGroup removes a group and everything it owns.
	DeleteGroup(ctx context.Context, id string) error

	// CreatePlayer adds a player to a group.
	CreatePlayer(ctx context.Context, player *models.Player) error

	// GetPlayer retrieves a player by ID, or ErrNotFound.
	GetPlayer(ctx context.Context, id string) (*models.Player, error)

	// ListPlayers retrieves all players of a group, ordered by name.
	ListPlayers(ctx context.Context, groupID string) ([]*models.Player, error)

	// UpdatePlayer updates a player's name, user link, and joined flag.
	UpdatePlayer(ctx context.Context, player *models.Player) error

	// DeletePlayer removes a player and its balances.
	DeletePlayer(ctx context.Context, id string) error

	// CreateSession persists a session together with its balances.
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves one session with balances, or ErrNotFound.
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// ListSessionsWithBalances retrieves all sessions of a group, each with
	// its balances populated, ordered by date then creation time.
	ListSessionsWithBalances(ctx context.Context, groupID string) ([]*models.Session, error)

	// DeleteSession removes a session and its balances.
	DeleteSession(ctx context.Context, id string) error

	// GetSettlements retrieves all persisted settlement records for a group.
	GetSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// PutSettlements replaces the group's settlement records with the given
	// set atomically.
	PutSettlements(ctx context.Context, groupID string, settlements []*models.Settlement) error

	// MarkSettled sets settled=true on one settlement record and returns the
	// updated record, or ErrNotFound.
	MarkSettled(ctx context.Context, groupID, settlementID string) (*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
