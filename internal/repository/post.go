// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	SetPublished(ctx context.Context, id uint, published bool) error
	// ListPublished returns publicly visible posts at instant now.
	ListPublished(ctx context.Context, now time.Time, req PageRequest) (*Page, error)
	// ListByCategory is ListPublished restricted to one category slug.
	ListByCategory(ctx context.Context, slug string, now time.Time, req PageRequest) (*Page, error)
	// ListByAuthor returns the author's published posts, plus unpublished
	// ones when the viewer is the author. viewerID 0 means anonymous.
	ListByAuthor(ctx context.Context, authorID, viewerID uint, req PageRequest) (*Page, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// postDetailsSelect annotates each post with its live comment count.
const postDetailsSelect = "posts.*, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

func withPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select(postDetailsSelect).
		Preload("Author").
		Preload("Location").
		Preload("Category")
}

// publishedScope keeps posts that are published, in a published category and
// dated no later than now.
func publishedScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ? AND categories.is_published = ? AND posts.pub_date <= ?", true, true, now.UTC())
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.PubDate = post.PubDate.UTC()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return first[models.Post](withPostDetails(r.db.WithContext(ctx)), "Post", id, "posts.id = ?", id)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	post.PubDate = post.PubDate.UTC()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return mustAffect(r.db.WithContext(ctx).Delete(&models.Post{}, id), "Post", id)
}

func (r *postRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("is_published", published)
	return mustAffect(res, "Post", id)
}

func (r *postRepository) ListPublished(ctx context.Context, now time.Time, req PageRequest) (*Page, error) {
	return paginate(ctx, r.db, publishedScope(now), req)
}

func (r *postRepository) ListByCategory(ctx context.Context, slug string, now time.Time, req PageRequest) (*Page, error) {
	published := publishedScope(now)
	return paginate(ctx, r.db, func(db *gorm.DB) *gorm.DB {
		return published(db).Where("categories.slug = ?", slug)
	}, req)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID, viewerID uint, req PageRequest) (*Page, error) {
	return paginate(ctx, r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ? AND (posts.is_published = ? OR posts.author_id = ?)", authorID, true, viewerID)
	}, req)
}
