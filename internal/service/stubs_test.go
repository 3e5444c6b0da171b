package service

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	updateFn         func(context.Context, *models.Post) error
	deleteFn         func(context.Context, uint) error
	setPublishedFn   func(context.Context, uint, bool) error
	listPublishedFn  func(context.Context, time.Time, repository.PageRequest) (*repository.Page, error)
	listByCategoryFn func(context.Context, string, time.Time, repository.PageRequest) (*repository.Page, error)
	listByAuthorFn   func(context.Context, uint, uint, repository.PageRequest) (*repository.Page, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) SetPublished(ctx context.Context, id uint, published bool) error {
	return s.setPublishedFn(ctx, id, published)
}
func (s *postRepoStub) ListPublished(ctx context.Context, now time.Time, req repository.PageRequest) (*repository.Page, error) {
	return s.listPublishedFn(ctx, now, req)
}
func (s *postRepoStub) ListByCategory(ctx context.Context, slug string, now time.Time, req repository.PageRequest) (*repository.Page, error) {
	return s.listByCategoryFn(ctx, slug, now, req)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID, viewerID uint, req repository.PageRequest) (*repository.Page, error) {
	return s.listByAuthorFn(ctx, authorID, viewerID, req)
}

func emptyPage() (*repository.Page, error) {
	return &repository.Page{Number: 1, NumPages: 1, Size: repository.DefaultPageSize}, nil
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:       func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		setPublishedFn: func(_ context.Context, _ uint, _ bool) error { return nil },
		listPublishedFn: func(_ context.Context, _ time.Time, _ repository.PageRequest) (*repository.Page, error) {
			return emptyPage()
		},
		listByCategoryFn: func(_ context.Context, _ string, _ time.Time, _ repository.PageRequest) (*repository.Page, error) {
			return emptyPage()
		},
		listByAuthorFn: func(_ context.Context, _, _ uint, _ repository.PageRequest) (*repository.Page, error) {
			return emptyPage()
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	getBySlugFn    func(context.Context, string) (*models.Category, error)
	getByIDFn      func(context.Context, uint) (*models.Category, error)
	listFn         func(context.Context) ([]models.Category, error)
	createFn       func(context.Context, *models.Category) error
	setPublishedFn func(context.Context, string, bool) error
	deleteFn       func(context.Context, string) error
}

func (s *categoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) List(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) SetPublished(ctx context.Context, slug string, published bool) error {
	return s.setPublishedFn(ctx, slug, published)
}
func (s *categoryRepoStub) Delete(ctx context.Context, slug string) error {
	return s.deleteFn(ctx, slug)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		getBySlugFn: func(_ context.Context, slug string) (*models.Category, error) {
			return &models.Category{ID: 1, Slug: slug, PublishFields: models.Published()}, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, PublishFields: models.Published()}, nil
		},
		listFn:         func(_ context.Context) ([]models.Category, error) { return nil, nil },
		createFn:       func(_ context.Context, _ *models.Category) error { return nil },
		setPublishedFn: func(_ context.Context, _ string, _ bool) error { return nil },
		deleteFn:       func(_ context.Context, _ string) error { return nil },
	}
}

// locationRepoStub is a stub for repository.LocationRepository.
type locationRepoStub struct {
	getByIDFn      func(context.Context, uint) (*models.Location, error)
	listFn         func(context.Context) ([]models.Location, error)
	createFn       func(context.Context, *models.Location) error
	setPublishedFn func(context.Context, uint, bool) error
	deleteFn       func(context.Context, uint) error
}

func (s *locationRepoStub) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	return s.getByIDFn(ctx, id)
}
func (s *locationRepoStub) List(ctx context.Context) ([]models.Location, error) {
	return s.listFn(ctx)
}
func (s *locationRepoStub) Create(ctx context.Context, location *models.Location) error {
	return s.createFn(ctx, location)
}
func (s *locationRepoStub) SetPublished(ctx context.Context, id uint, published bool) error {
	return s.setPublishedFn(ctx, id, published)
}
func (s *locationRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopLocationRepo() *locationRepoStub {
	return &locationRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Location, error) {
			return &models.Location{ID: id, PublishFields: models.Published()}, nil
		},
		listFn:         func(_ context.Context) ([]models.Location, error) { return nil, nil },
		createFn:       func(_ context.Context, _ *models.Location) error { return nil },
		setPublishedFn: func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	usernameTakenFn func(context.Context, string, uint) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return s.usernameTakenFn(ctx, username, exceptID)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
		usernameTakenFn: func(_ context.Context, _ string, _ uint) (bool, error) { return false, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// imageStoreStub records saved and removed image paths.
type imageStoreStub struct {
	saveFn  func(context.Context, ImageUpload) (string, error)
	removed []string
}

func (s *imageStoreStub) SavePostImage(ctx context.Context, in ImageUpload) (string, error) {
	return s.saveFn(ctx, in)
}
func (s *imageStoreStub) Remove(_ context.Context, relPath string) {
	if relPath != "" {
		s.removed = append(s.removed, relPath)
	}
}

func noopImageStore() *imageStoreStub {
	return &imageStoreStub{
		saveFn: func(_ context.Context, _ ImageUpload) (string, error) { return "post_images/new.webp", nil },
	}
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}
