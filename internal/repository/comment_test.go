package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Create_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	comment := &models.Comment{Text: "Nice post!", PostID: 1, AuthorID: 2}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments" ("text","post_id","author_id","created_at") VALUES ($1,$2,$3,$4) RETURNING "id"`)).
		WithArgs("Nice post!", 1, 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	err := repo.Create(ctx, comment)
	assert.NoError(t, err)
	assert.Equal(t, uint(10), comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByPost_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE post_id = $1 ORDER BY created_at ASC, id ASC`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "post_id", "author_id"}).
			AddRow(1, "first", 1, 101).
			AddRow(2, "second", 1, 102))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" IN ($1,$2)`)).
		WithArgs(101, 102).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(101, "user101").
			AddRow(102, "user102"))

	comments, err := repo.ListByPost(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "user102", comments[1].Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByPostOrdersOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	f := fixtures{t, db}
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := f.user("anna")
	p := f.post("post", author, f.category("open", true))
	other := f.post("other", author, f.category("other", true))

	f.comment(p, author, "third", testNow.Add(2*time.Minute))
	f.comment(p, author, "first", testNow)
	f.comment(p, author, "second", testNow.Add(time.Minute))
	f.comment(other, author, "elsewhere", testNow)

	comments, err := repo.ListByPost(ctx, p.ID)
	require.NoError(t, err)

	texts := make([]string, 0, len(comments))
	for _, c := range comments {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"first", "second", "third"}, texts)
}

func TestCommentRepository_UpdateDelete(t *testing.T) {
	db := setupTestDB(t)
	f := fixtures{t, db}
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := f.user("anna")
	p := f.post("post", author, f.category("open", true))
	c := f.comment(p, author, "typo", testNow)

	loaded, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	loaded.Text = "fixed"
	require.NoError(t, repo.Update(ctx, loaded))

	loaded, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed", loaded.Text)
	assert.True(t, testNow.Equal(loaded.CreatedAt), loaded.CreatedAt)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
