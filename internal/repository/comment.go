package repository

import (
	"context"

	"blogicum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository stores the flat comment threads under posts.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByID loads the comment with its author.
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByPost returns every comment of the post, oldest first.
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	// Update rewrites the text only; author, post and creation time are fixed.
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return dbError(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return first[models.Comment](r.db.WithContext(ctx).Preload("Author"), "Comment", id, id)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var thread []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&thread).Error
	if err != nil {
		return nil, dbError(err)
	}
	return thread, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("text", comment.Text)
	return mustAffect(res, "Comment", comment.ID)
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return mustAffect(r.db.WithContext(ctx).Delete(&models.Comment{}, id), "Comment", id)
}
