package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogicum/internal/auth"
	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "anna1877"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                  "test",
		Port:                 "0",
		JWTSecret:            "test-secret-that-is-long-enough-for-hs256",
		SessionTTLHours:      1,
		LoginURL:             "/auth/login/",
		PageSize:             10,
		MediaRoot:            t.TempDir(),
		PostImagesDir:        "post_images",
		ImageMaxUploadSizeMB: 1,
	}
}

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

type testEnv struct {
	t   *testing.T
	s   *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	s, err := NewServerWithDeps(testConfig(t), db, nil)
	require.NoError(t, err)
	return &testEnv{t: t, s: s, app: s.App(), db: db}
}

// sessionFor returns a session cookie for user.
func (e *testEnv) sessionFor(user *models.User) *http.Cookie {
	e.t.Helper()
	token, err := e.s.sessions.Issue(user.ID, user.Username)
	require.NoError(e.t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func (e *testEnv) do(method, path string, form url.Values, cookie *http.Cookie) *http.Response {
	e.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func (e *testEnv) get(path string, cookie *http.Cookie) *http.Response {
	return e.do(http.MethodGet, path, nil, cookie)
}

func (e *testEnv) post(path string, form url.Values, cookie *http.Cookie) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	return e.do(http.MethodPost, path, form, cookie)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func (e *testEnv) user(username string) *models.User {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(e.t, err)
	u := &models.User{Username: username, Password: string(hash)}
	require.NoError(e.t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) category(slug string, published bool) *models.Category {
	e.t.Helper()
	c := &models.Category{Title: strings.ToUpper(slug[:1]) + slug[1:], Slug: slug, PublishFields: models.PublishFields{IsPublished: published}}
	require.NoError(e.t, e.db.Create(c).Error)
	return c
}

type postOpt func(p *models.Post)

func unpublished() postOpt      { return func(p *models.Post) { p.IsPublished = false } }
func pubAt(t time.Time) postOpt { return func(p *models.Post) { p.PubDate = t.UTC() } }

func (e *testEnv) createPost(title string, author *models.User, category *models.Category, opts ...postOpt) *models.Post {
	e.t.Helper()
	p := &models.Post{
		Title:         title,
		Text:          "Text of " + title,
		PubDate:       time.Now().UTC().Add(-time.Hour),
		AuthorID:      author.ID,
		CategoryID:    &category.ID,
		PublishFields: models.Published(),
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(e.t, e.db.Omit("Author", "Category", "Location").Create(p).Error)
	return p
}

func (e *testEnv) comment(post *models.Post, author *models.User, text string) *models.Comment {
	e.t.Helper()
	c := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID}
	require.NoError(e.t, e.db.Omit("Author", "Post").Create(c).Error)
	return c
}
