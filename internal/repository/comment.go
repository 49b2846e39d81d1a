package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"activityhub/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentDtoQuery = `
	SELECT c.id, c.activity_id, c.created_at, c.body, u.username, u.display_name,
	       (SELECT p.url FROM photos p WHERE p.user_id = u.id AND p.is_main) AS image
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, c *model.Comment) (bool, error) {
	query := `
		INSERT INTO comments (id, activity_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, c.ID, c.ActivityID, c.AuthorID, c.Body, c.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to create comment: %w", err)
	}
	return affected(result)
}

func (r *commentRepository) GetDto(ctx context.Context, id uuid.UUID) (*model.CommentDto, error) {
	var c model.CommentDto
	err := r.db.GetContext(ctx, &c, commentDtoQuery+` WHERE c.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

// ListByActivity returns the activity's comments, newest first.
func (r *commentRepository) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]model.CommentDto, error) {
	comments := []model.CommentDto{}
	err := r.db.SelectContext(ctx, &comments,
		commentDtoQuery+` WHERE c.activity_id = $1 ORDER BY c.created_at DESC, c.id`, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
