package service

import (
	"context"

	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/policy"
	"blogicum/internal/repository"
	"blogicum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// ListForPost returns every comment of a post, oldest first.
func (s *CommentService) ListForPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

// EnsurePost reports not found when the post does not exist.
func (s *CommentService) EnsurePost(ctx context.Context, postID uint) error {
	_, err := s.postRepo.GetByID(ctx, postID)
	return err
}

// CreateComment attaches a comment by viewer to an existing post. The post
// does not have to be publicly visible.
func (s *CommentService) CreateComment(ctx context.Context, viewer *models.User, postID uint, in validation.CommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService", "CreateComment", attribute.Int("post.id", int(postID)))
	defer func() { observability.EndSpan(span, err) }()

	if viewer == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err = s.EnsurePost(ctx, postID); err != nil {
		return nil, err
	}

	comment = &models.Comment{
		Text:     in.Text,
		PostID:   postID,
		AuthorID: viewer.ID,
	}
	if err = s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordMutation("comment", "create")
	return comment, nil
}

// GetForEdit loads a comment of postID owned by viewer. A comment that belongs
// to another post is not found; one written by someone else is forbidden.
func (s *CommentService) GetForEdit(ctx context.Context, viewer *models.User, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if !policy.IsOwner(comment, viewer) {
		return nil, models.NewForbiddenError("You can only change your own comments")
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, viewer *models.User, postID, commentID uint, in validation.CommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService", "UpdateComment", attribute.Int("comment.id", int(commentID)))
	defer func() { observability.EndSpan(span, err) }()

	if comment, err = s.GetForEdit(ctx, viewer, postID, commentID); err != nil {
		return nil, err
	}
	comment.Text = in.Text
	if err = s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordMutation("comment", "update")
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, viewer *models.User, postID, commentID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService", "DeleteComment", attribute.Int("comment.id", int(commentID)))
	defer func() { observability.EndSpan(span, err) }()

	if _, err = s.GetForEdit(ctx, viewer, postID, commentID); err != nil {
		return err
	}
	if err = s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	observability.RecordMutation("comment", "delete")
	return nil
}
