package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/money"
	"github.com/pokercount/backend/internal/storage"
)

// CreateSession persists a session and its balances in one transaction.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, group_id, name, date, buy_in, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		session.ID, session.GroupID, session.Name, session.Date, int64(session.BuyIn), session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for i := range session.Balances {
		balance := &session.Balances[i]
		balance.SessionID = session.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO balances (session_id, player_id, amount) VALUES (?, ?, ?)",
			balance.SessionID, balance.PlayerID, int64(balance.Amount),
		)
		if err != nil {
			return fmt.Errorf("failed to insert balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSession retrieves one session with its balances.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session := &models.Session{}
	var buyIn int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, name, date, buy_in, created_at FROM sessions WHERE id = ?",
		id,
	).Scan(&session.ID, &session.GroupID, &session.Name, &session.Date, &buyIn, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.BuyIn = money.Cents(buyIn)

	if err := s.loadBalances(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessionsWithBalances retrieves all sessions of a group with their
// balances populated, ordered by date then creation time.
func (s *SQLiteStore) ListSessionsWithBalances(ctx context.Context, groupID string) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, name, date, buy_in, created_at FROM sessions WHERE group_id = ? ORDER BY date, created_at",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session := &models.Session{}
		var buyIn int64
		if err := rows.Scan(&session.ID, &session.GroupID, &session.Name, &session.Date, &buyIn, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		session.BuyIn = money.Cents(buyIn)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	for _, session := range sessions {
		if err := s.loadBalances(ctx, session); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// loadBalances populates a session's balances ordered by player id.
func (s *SQLiteStore) loadBalances(ctx context.Context, session *models.Session) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id, player_id, amount FROM balances WHERE session_id = ? ORDER BY player_id",
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var balance models.Balance
		var amount int64
		if err := rows.Scan(&balance.SessionID, &balance.PlayerID, &amount); err != nil {
			return fmt.Errorf("failed to scan balance: %w", err)
		}
		balance.Amount = money.Cents(amount)
		session.Balances = append(session.Balances, balance)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate balances: %w", err)
	}
	return nil
}

// DeleteSession removes a session; its balances follow via cascade.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
