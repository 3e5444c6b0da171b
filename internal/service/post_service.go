// Package service holds the application's use cases. Services compose the
// repositories with the visibility and ownership policies and report failures
// as *models.AppError values.
package service

import (
	"context"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/policy"
	"blogicum/internal/repository"
	"blogicum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const invalidChoiceMessage = "Select a valid choice. That choice is not one of the available choices."

type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	users      repository.UserRepository
	images     ImageStore
	now        func() time.Time
}

// PostServiceOption customizes a PostService.
type PostServiceOption func(*PostService)

// WithClock replaces the clock used for visibility decisions.
func WithClock(now func() time.Time) PostServiceOption {
	return func(s *PostService) {
		s.now = now
	}
}

// PostFormChoices are the options offered by the post form selects.
type PostFormChoices struct {
	Categories []models.Category
	Locations  []models.Location
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	locations repository.LocationRepository,
	users repository.UserRepository,
	images ImageStore,
	opts ...PostServiceOption,
) *PostService {
	s := &PostService{
		posts:      posts,
		categories: categories,
		locations:  locations,
		users:      users,
		images:     images,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListIndex returns a page of publicly visible posts.
func (s *PostService) ListIndex(ctx context.Context, req repository.PageRequest) (*repository.Page, error) {
	return s.posts.ListPublished(ctx, s.now(), req)
}

// ListCategory resolves a published category and a page of its visible posts.
// An unpublished category is reported as not found.
func (s *PostService) ListCategory(ctx context.Context, slug string, req repository.PageRequest) (*models.Category, *repository.Page, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !category.IsPublished {
		return nil, nil, models.NewNotFoundError("Category", slug)
	}

	page, err := s.posts.ListByCategory(ctx, slug, s.now(), req)
	if err != nil {
		return nil, nil, err
	}
	return category, page, nil
}

// ListProfile resolves the profile owner and a page of their posts as seen by
// viewer. Owners also see their unpublished posts.
func (s *PostService) ListProfile(ctx context.Context, username string, viewer *models.User, req repository.PageRequest) (*models.User, *repository.Page, error) {
	profile, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	var viewerID uint
	if viewer != nil {
		viewerID = viewer.ID
	}
	page, err := s.posts.ListByAuthor(ctx, profile.ID, viewerID, req)
	if err != nil {
		return nil, nil, err
	}
	return profile, page, nil
}

// GetPostForViewer loads a post for the detail page. Posts the viewer may not
// see are reported as not found.
func (s *PostService) GetPostForViewer(ctx context.Context, id uint, viewer *models.User) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewPost(post, viewer, s.now()) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

// GetForEdit loads a post its author is about to edit.
func (s *PostService) GetForEdit(ctx context.Context, id uint, viewer *models.User) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.IsOwner(post, viewer) {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	return post, nil
}

// GetForDelete loads a post its author is about to delete. Other viewers get
// not found.
func (s *PostService) GetForDelete(ctx context.Context, id uint, viewer *models.User) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.IsOwner(post, viewer) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

func (s *PostService) FormChoices(ctx context.Context) (*PostFormChoices, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	return &PostFormChoices{Categories: categories, Locations: locations}, nil
}

// checkReferences confirms the category and optional location exist.
func (s *PostService) checkReferences(ctx context.Context, in validation.PostInput) error {
	fields := map[string]string{}
	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		if !models.IsCode(err, models.CodeNotFound) {
			return err
		}
		fields["category"] = invalidChoiceMessage
	}
	if in.LocationID != nil {
		if _, err := s.locations.GetByID(ctx, *in.LocationID); err != nil {
			if !models.IsCode(err, models.CodeNotFound) {
				return err
			}
			fields["location"] = invalidChoiceMessage
		}
	}
	if len(fields) > 0 {
		return models.NewFormError(fields)
	}
	return nil
}

func applyPostInput(post *models.Post, in validation.PostInput) {
	categoryID := in.CategoryID
	post.Title = in.Title
	post.Text = in.Text
	post.PubDate = in.PubDate
	post.CategoryID = &categoryID
	post.LocationID = in.LocationID
}

// CreatePost stores a new published post authored by viewer. image may be nil.
func (s *PostService) CreatePost(ctx context.Context, viewer *models.User, in validation.PostInput, image *ImageUpload) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	if viewer == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err = s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	post = &models.Post{AuthorID: viewer.ID, PublishFields: models.Published()}
	applyPostInput(post, in)

	if image != nil {
		if post.Image, err = s.images.SavePostImage(ctx, *image); err != nil {
			return nil, err
		}
	}

	if err = s.posts.Create(ctx, post); err != nil {
		s.images.Remove(ctx, post.Image)
		return nil, err
	}
	span.SetAttributes(attribute.Int("post.id", int(post.ID)))
	observability.RecordMutation("post", "create")
	return post, nil
}

// UpdatePost applies the form to a post owned by viewer. A new image replaces
// the stored one; in.ClearImage drops it.
func (s *PostService) UpdatePost(ctx context.Context, viewer *models.User, id uint, in validation.PostInput, image *ImageUpload) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "UpdatePost", attribute.Int("post.id", int(id)))
	defer func() { observability.EndSpan(span, err) }()

	if post, err = s.GetForEdit(ctx, id, viewer); err != nil {
		return nil, err
	}
	if err = s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	previousImage := post.Image
	applyPostInput(post, in)

	switch {
	case image != nil:
		if post.Image, err = s.images.SavePostImage(ctx, *image); err != nil {
			return nil, err
		}
	case in.ClearImage:
		post.Image = ""
	}

	if err = s.posts.Update(ctx, post); err != nil {
		if post.Image != previousImage {
			s.images.Remove(ctx, post.Image)
		}
		return nil, err
	}
	if post.Image != previousImage {
		s.images.Remove(ctx, previousImage)
	}

	observability.RecordMutation("post", "update")
	return s.posts.GetByID(ctx, id)
}

// DeletePost removes a post owned by viewer together with its comments and image.
func (s *PostService) DeletePost(ctx context.Context, viewer *models.User, id uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "DeletePost", attribute.Int("post.id", int(id)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.GetForDelete(ctx, id, viewer)
	if err != nil {
		return err
	}
	if err = s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.images.Remove(ctx, post.Image)
	observability.RecordMutation("post", "delete")
	return nil
}
