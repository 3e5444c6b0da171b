package repository

import (
	"testing"
	"time"

	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB opens a fresh in-memory sqlite database with foreign keys on.
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

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

type fixtures struct {
	t  *testing.T
	db *gorm.DB
}

func (f fixtures) user(username string) *models.User {
	u := &models.User{Username: username, Password: "x"}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f fixtures) category(slug string, published bool) *models.Category {
	c := &models.Category{Title: slug, Slug: slug, PublishFields: models.PublishFields{IsPublished: published}}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f fixtures) location(name string) *models.Location {
	l := &models.Location{Name: name, PublishFields: models.Published()}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}

type postOpt func(p *models.Post)

func unpublished() postOpt          { return func(p *models.Post) { p.IsPublished = false } }
func pubAt(t time.Time) postOpt     { return func(p *models.Post) { p.PubDate = t } }
func withoutCategory() postOpt      { return func(p *models.Post) { p.CategoryID = nil } }
func at(l *models.Location) postOpt { return func(p *models.Post) { p.LocationID = &l.ID } }

func (f fixtures) post(title string, author *models.User, category *models.Category, opts ...postOpt) *models.Post {
	p := &models.Post{
		Title:         title,
		Text:          "text of " + title,
		PubDate:       testNow.Add(-time.Hour),
		AuthorID:      author.ID,
		CategoryID:    &category.ID,
		PublishFields: models.Published(),
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(f.t, NewPostRepository(f.db).Create(f.t.Context(), p))
	return p
}

func (f fixtures) comment(post *models.Post, author *models.User, text string, createdAt time.Time) *models.Comment {
	c := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID, CreatedAt: createdAt}
	require.NoError(f.t, NewCommentRepository(f.db).Create(f.t.Context(), c))
	return c
}

func postTitles(page *Page) []string {
	titles := make([]string, 0, len(page.Posts))
	for _, p := range page.Posts {
		titles = append(titles, p.Title)
	}
	return titles
}
