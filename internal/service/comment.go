package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"activityhub/internal/core"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
	"activityhub/internal/repository"
)

type CommentService struct {
	db           *sqlx.DB
	commentRepo  repository.CommentRepository
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
}

func NewCommentService(
	db *sqlx.DB,
	commentRepo repository.CommentRepository,
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		db:           db,
		commentRepo:  commentRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
	}
}

func (s *CommentService) Register(reg *mediator.Registry) {
	mediator.Register(reg, s.Create)
	mediator.Register(reg, s.List)
}

// Create adds the actor's comment to an activity and returns it as broadcast to listeners.
func (s *CommentService) Create(ctx context.Context, req CreateComment) (core.Result[model.CommentDto], error) {
	if _, err := s.activityRepo.GetByID(ctx, req.ActivityID); err != nil {
		if errors.Is(err, model.ErrActivityNotFound) {
			return core.NotFound[model.CommentDto](), nil
		}
		return core.Result[model.CommentDto]{}, err
	}

	author, err := s.userRepo.GetByUsername(ctx, req.Actor.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[model.CommentDto](), nil
	}
	if err != nil {
		return core.Result[model.CommentDto]{}, err
	}

	comment := &model.Comment{
		ID:         uuid.New(),
		ActivityID: req.ActivityID,
		AuthorID:   author.ID,
		Body:       strings.TrimSpace(req.Body),
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Result[model.CommentDto]{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := s.commentRepo.Create(ctx, tx, comment)
	if err != nil {
		return core.Result[model.CommentDto]{}, err
	}
	if !created {
		return core.Failure[model.CommentDto]("Failed to add comment"), nil
	}

	if err := tx.Commit(); err != nil {
		return core.Result[model.CommentDto]{}, fmt.Errorf("commit transaction: %w", err)
	}

	dto, err := s.commentRepo.GetDto(ctx, comment.ID)
	if err != nil {
		return core.Result[model.CommentDto]{}, err
	}
	return core.Success(*dto), nil
}

// List returns an activity's comments, newest first.
func (s *CommentService) List(ctx context.Context, req ListComments) (core.Result[[]model.CommentDto], error) {
	if _, err := s.activityRepo.GetByID(ctx, req.ActivityID); err != nil {
		if errors.Is(err, model.ErrActivityNotFound) {
			return core.NotFound[[]model.CommentDto](), nil
		}
		return core.Result[[]model.CommentDto]{}, err
	}

	comments, err := s.commentRepo.ListByActivity(ctx, req.ActivityID)
	if err != nil {
		return core.Result[[]model.CommentDto]{}, err
	}
	return core.Success(comments), nil
}
