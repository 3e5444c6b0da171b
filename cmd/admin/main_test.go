package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"blogicum/internal/cache"
	"blogicum/internal/database"
	"blogicum/internal/models"
	"blogicum/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN("file::memory:")),
		database.GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// run executes the admin command line against db and returns its output.
func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func(context.Context) (*gorm.DB, error) { return db, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCategoryLifecycle(t *testing.T) {
	db := setupTestDB(t)

	out, err := run(t, db, "category", "create", "travel", "--title", "Travel", "--description", "Notes from the road")
	require.NoError(t, err)
	assert.Contains(t, out, "Created category travel")

	var c models.Category
	require.NoError(t, db.Where("slug = ?", "travel").First(&c).Error)
	assert.Equal(t, "Travel", c.Title)
	assert.True(t, c.IsPublished)

	_, err = run(t, db, "category", "unpublish", "travel")
	require.NoError(t, err)
	require.NoError(t, db.First(&c, c.ID).Error)
	assert.False(t, c.IsPublished)

	_, err = run(t, db, "category", "publish", "travel")
	require.NoError(t, err)
	require.NoError(t, db.First(&c, c.ID).Error)
	assert.True(t, c.IsPublished)
}

func TestCategoryCreate_RejectsBadSlug(t *testing.T) {
	db := setupTestDB(t)

	_, err := run(t, db, "category", "create", "with space")
	assert.Error(t, err)
}

func TestCategoryDelete_CascadesToPostsAndComments(t *testing.T) {
	db := setupTestDB(t)
	author := &models.User{Username: "leo", Password: "x"}
	require.NoError(t, db.Create(author).Error)
	category := &models.Category{Title: "War", Slug: "war", PublishFields: models.Published()}
	require.NoError(t, db.Create(category).Error)
	post := &models.Post{Title: "Borodino", Text: "...", PubDate: time.Now().UTC(), AuthorID: author.ID, CategoryID: &category.ID, PublishFields: models.Published()}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Create(&models.Comment{Text: "first", PostID: post.ID, AuthorID: author.ID}).Error)

	_, err := run(t, db, "category", "delete", "war")
	require.NoError(t, err)

	var posts, comments int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
}

func TestCategoryUnpublish_InvalidatesCache(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	_, err := run(t, db, "category", "create", "travel")
	require.NoError(t, err)

	_, err = repository.NewCategoryRepository(db).GetBySlug(t.Context(), "travel")
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.CategoryKey("travel")))

	_, err = run(t, db, "category", "unpublish", "travel")
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.CategoryKey("travel")))

	c, err := repository.NewCategoryRepository(db).GetBySlug(t.Context(), "travel")
	require.NoError(t, err)
	assert.False(t, c.IsPublished)
}

func TestLocationDelete_KeepsPosts(t *testing.T) {
	db := setupTestDB(t)

	_, err := run(t, db, "location", "create", "Yasnaya Polyana")
	require.NoError(t, err)
	var l models.Location
	require.NoError(t, db.Where("name = ?", "Yasnaya Polyana").First(&l).Error)

	author := &models.User{Username: "leo", Password: "x"}
	require.NoError(t, db.Create(author).Error)
	category := &models.Category{Title: "Life", Slug: "life", PublishFields: models.Published()}
	require.NoError(t, db.Create(category).Error)
	post := &models.Post{Title: "Home", Text: "...", PubDate: time.Now().UTC(), AuthorID: author.ID, CategoryID: &category.ID, LocationID: &l.ID, PublishFields: models.Published()}
	require.NoError(t, db.Create(post).Error)

	_, err = run(t, db, "location", "unpublish", "1")
	require.NoError(t, err)
	require.NoError(t, db.First(&l, l.ID).Error)
	assert.False(t, l.IsPublished)

	_, err = run(t, db, "location", "delete", "1")
	require.NoError(t, err)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Nil(t, stored.LocationID)
}

func TestPostPublication(t *testing.T) {
	db := setupTestDB(t)
	author := &models.User{Username: "leo", Password: "x"}
	require.NoError(t, db.Create(author).Error)
	category := &models.Category{Title: "War", Slug: "war", PublishFields: models.Published()}
	require.NoError(t, db.Create(category).Error)
	post := &models.Post{Title: "Borodino", Text: "...", PubDate: time.Now().UTC(), AuthorID: author.ID, CategoryID: &category.ID, PublishFields: models.Published()}
	require.NoError(t, db.Create(post).Error)

	out, err := run(t, db, "post", "unpublish", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Post 1 published: false")

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.False(t, stored.IsPublished)

	_, err = run(t, db, "post", "publish", "99")
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	_, err = run(t, db, "post", "publish", "abc")
	assert.EqualError(t, err, `invalid id "abc"`)
}

func TestUserList(t *testing.T) {
	db := setupTestDB(t)

	out, err := run(t, db, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No users found")

	require.NoError(t, db.Create(&models.User{Username: "leo", FirstName: "Leo", LastName: "Tolstoy", Password: "x"}).Error)
	require.NoError(t, db.Create(&models.User{Username: "fyodor", Password: "x"}).Error)

	out, err = run(t, db, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Leo Tolstoy")
	assert.Contains(t, out, "fyodor")
}
