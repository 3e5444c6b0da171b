package seed

import (
	"fmt"
	"strings"
	"time"

	"blogicum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	opts  Options
	now   func() time.Time
	// password hash shared by every seeded user
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options, now func() time.Time) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed), opts: opts, now: now}
}

// WithDB returns a copy of the factory writing through db.
func (f *Factory) WithDB(db *gorm.DB) *Factory {
	clone := *f
	clone.db = db
	return &clone
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := f.opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", err
	}
	f.hash = string(hashed)
	return f.hash, nil
}

// BuildUser returns an unsaved user with a unique username.
func (f *Factory) BuildUser(i int) *models.User {
	return &models.User{
		Username:  fmt.Sprintf("%s%d", slugify(f.faker.FirstName()), i+1),
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Email:     f.faker.Email(),
	}
}

func (f *Factory) CreateUsers(n int) ([]*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u := f.BuildUser(i)
		u.Password = hash
		if err := f.db.Create(u).Error; err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// CreateCategories makes n categories; every fourth one is unpublished.
func (f *Factory) CreateCategories(n int) ([]*models.Category, error) {
	categories := make([]*models.Category, 0, n)
	for i := 0; i < n; i++ {
		word := slugify(f.faker.Word())
		c := &models.Category{
			Title:         strings.ToUpper(word[:1]) + word[1:],
			Description:   f.faker.Sentence(12),
			Slug:          fmt.Sprintf("%s-%d", word, i+1),
			PublishFields: models.PublishFields{IsPublished: i%4 != 3},
		}
		if err := f.db.Create(c).Error; err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func (f *Factory) CreateLocations(n int) ([]*models.Location, error) {
	locations := make([]*models.Location, 0, n)
	for i := 0; i < n; i++ {
		l := &models.Location{
			Name:          f.faker.City(),
			PublishFields: models.PublishFields{IsPublished: i%3 != 2},
		}
		if err := f.db.Create(l).Error; err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, nil
}

// BuildPost returns an unsaved post for the i-th slot. Every fifth post is
// unpublished and every fourth is scheduled up to a month ahead; the rest
// were published during the last 90 days.
func (f *Factory) BuildPost(i int, author *models.User, category *models.Category, location *models.Location) *models.Post {
	now := f.now().UTC()
	var pubDate time.Time
	if i%4 == 3 {
		pubDate = now.Add(time.Duration(f.faker.Number(1, 30*24)) * time.Hour)
	} else {
		pubDate = now.Add(-time.Duration(f.faker.Number(1, 90*24*60)) * time.Minute)
	}

	post := &models.Post{
		Title:         truncate(f.faker.Sentence(6), 256),
		Text:          f.faker.Paragraph(2, 4, 12, "\n\n"),
		PubDate:       pubDate.Truncate(time.Minute),
		AuthorID:      author.ID,
		CategoryID:    &category.ID,
		PublishFields: models.PublishFields{IsPublished: i%5 != 4},
	}
	if location != nil {
		post.LocationID = &location.ID
	}
	return post
}

func (f *Factory) CreatePosts(users []*models.User, categories []*models.Category, locations []*models.Location, n int) ([]*models.Post, error) {
	if n == 0 {
		return nil, nil
	}
	if len(users) == 0 || len(categories) == 0 {
		return nil, fmt.Errorf("posts need at least one user and one category")
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		var location *models.Location
		// roughly a third of the posts have no location
		if len(locations) > 0 && i%3 != 0 {
			location = locations[i%len(locations)]
		}
		posts = append(posts, f.BuildPost(i, users[i%len(users)], categories[i%len(categories)], location))
	}
	if err := f.db.CreateInBatches(posts, 100).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateComments adds up to perPost comments to each post from random users.
func (f *Factory) CreateComments(users []*models.User, posts []*models.Post, perPost int) (int, error) {
	if len(users) == 0 || perPost <= 0 {
		return 0, nil
	}
	var comments []*models.Comment
	for _, p := range posts {
		count := f.faker.Number(0, perPost)
		for j := 0; j < count; j++ {
			comments = append(comments, &models.Comment{
				Text:      truncate(f.faker.Sentence(f.faker.Number(4, 16)), 256),
				PostID:    p.ID,
				AuthorID:  users[f.faker.Number(0, len(users)-1)].ID,
				CreatedAt: p.PubDate.Add(time.Duration(j+1) * time.Hour),
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := f.db.CreateInBatches(comments, 200).Error; err != nil {
		return 0, err
	}
	return len(comments), nil
}

// slugify keeps the lowercase ASCII letters of s.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "blog"
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
