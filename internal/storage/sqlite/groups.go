package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/storage"
)

// CreateGroup persists a new group, generating its ID and timestamp if unset.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO groups (id, name, creator_id, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CreatorID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, creator_id, created_at FROM groups WHERE id = ?",
		id,
	).Scan(&group.ID, &group.Name, &group.CreatorID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// GetGroupByName retrieves a group by its unique name.
func (s *SQLiteStore) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, creator_id, created_at FROM groups WHERE name = ?",
		name,
	).Scan(&group.ID, &group.Name, &group.CreatorID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // Group not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by name: %w", err)
	}
	return group, nil
}

// ListGroups retrieves all groups ordered by name.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, creator_id, created_at FROM groups ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatorID, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// DeleteGroup removes a group; players, sessions, balances, and settlements
// follow via foreign key cascades.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted group: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// CreatePlayer adds a player to a group, generating its ID if unset.
func (s *SQLiteStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	if player.ID == "" {
		player.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO players (id, group_id, name, user_id, joined) VALUES (?, ?, ?, ?, ?)",
		player.ID, player.GroupID, player.Name, nullable(player.UserID), player.Joined,
	)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// GetPlayer retrieves a player by ID.
func (s *SQLiteStore) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	player := &models.Player{}
	var userID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, name, user_id, joined FROM players WHERE id = ?",
		id,
	).Scan(&player.ID, &player.GroupID, &player.Name, &userID, &player.Joined)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if userID.Valid {
		player.UserID = userID.String
	}
	return player, nil
}

// ListPlayers retrieves all players of a group ordered by name.
func (s *SQLiteStore) ListPlayers(ctx context.Context, groupID string) ([]*models.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, name, user_id, joined FROM players WHERE group_id = ? ORDER BY name",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		var userID sql.NullString
		if err := rows.Scan(&player.ID, &player.GroupID, &player.Name, &userID, &player.Joined); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		if userID.Valid {
			player.UserID = userID.String
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	return players, nil
}

// UpdatePlayer updates a player's name, user link, and joined flag.
func (s *SQLiteStore) UpdatePlayer(ctx context.Context, player *models.Player) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE players SET name = ?, user_id = ?, joined = ? WHERE id = ?",
		player.Name, nullable(player.UserID), player.Joined, player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated player: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("player %s: %w", player.ID, storage.ErrNotFound)
	}
	return nil
}

// DeletePlayer removes a player; its balances follow via cascade.
func (s *SQLiteStore) DeletePlayer(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM players WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted player: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// nullable maps an empty string to NULL for optional text columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
