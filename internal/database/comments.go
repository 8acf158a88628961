package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, comment.Text, comment.ItemID, comment.AuthorID, comment.Created)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

// GetLatestCommentByItem returns the most recent comment left on the item,
// or ErrNotFound when the item has none.
func (db *DB) GetLatestCommentByItem(ctx context.Context, itemID int64) (*models.Comment, error) {
	var c models.Comment
	query := `SELECT id, text, item_id, author_id, created
              FROM comments WHERE item_id = ?
              ORDER BY created DESC, id DESC LIMIT 1`
	err := db.QueryRowContext(ctx, query, itemID).Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}
