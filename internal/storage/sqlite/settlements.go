package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/money"
	"github.com/pokercount/backend/internal/storage"
)

// GetSettlements retrieves all settlement records for a group.
func (s *SQLiteStore) GetSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, from_player_id, to_player_id, amount, settled, updated_at
		 FROM settlements WHERE group_id = ?`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// PutSettlements replaces the group's settlement records atomically.
func (s *SQLiteStore) PutSettlements(ctx context.Context, groupID string, settlements []*models.Settlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to clear settlements: %w", err)
	}

	for _, settlement := range settlements {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, group_id, from_player_id, to_player_id, amount, settled, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, settlement.GroupID, settlement.FromPlayerID, settlement.ToPlayerID,
			int64(settlement.Amount), settlement.Settled, settlement.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MarkSettled sets settled=true on one record and returns the updated row.
func (s *SQLiteStore) MarkSettled(ctx context.Context, groupID, settlementID string) (*models.Settlement, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET settled = 1, updated_at = ? WHERE id = ? AND group_id = ?",
		time.Now().Unix(), settlementID, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark settled: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check marked settlement: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, from_player_id, to_player_id, amount, settled, updated_at
		 FROM settlements WHERE id = ?`,
		settlementID,
	)
	settlement := &models.Settlement{}
	var amount int64
	if err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromPlayerID,
		&settlement.ToPlayerID, &amount, &settlement.Settled, &settlement.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to reload settlement: %w", err)
	}
	settlement.Amount = money.Cents(amount)
	return settlement, nil
}

func scanSettlement(rows *sql.Rows) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var amount int64
	if err := rows.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromPlayerID,
		&settlement.ToPlayerID, &amount, &settlement.Settled, &settlement.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan settlement: %w", err)
	}
	settlement.Amount = money.Cents(amount)
	return settlement, nil
}
