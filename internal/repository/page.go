package repository

import (
	"context"
	"fmt"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// DefaultPageSize is used when a PageRequest carries no size.
const DefaultPageSize = 10

// PageRequest selects one page of a listing. Number is 1-based; Last asks for
// the final page whatever its number.
type PageRequest struct {
	Number int
	Last   bool
	Size   int
}

// Page is one page of posts plus the numbers a paginator needs.
type Page struct {
	Posts    []*models.Post
	Number   int
	Size     int
	NumPages int
	Total    int64
}

func (p *Page) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page) HasPrevious() bool { return p.Number > 1 }
func (p *Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}
func (p *Page) NextNumber() int     { return p.Number + 1 }
func (p *Page) PreviousNumber() int { return p.Number - 1 }

// Offset is the index of the first item on the page.
func (p *Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// resolvePage validates req against total. An empty listing still has a first
// page; any other page past the end, or below 1, does not exist.
func resolvePage(total int64, req PageRequest) (*Page, error) {
	size := req.Size
	if size <= 0 {
		size = DefaultPageSize
	}

	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages == 0 {
		numPages = 1
	}

	number := req.Number
	if req.Last {
		number = numPages
	}
	if number < 1 || number > numPages {
		return nil, models.NewNotFoundError("Page", number)
	}

	return &Page{Number: number, Size: size, NumPages: numPages, Total: total}, nil
}

// paginate counts the rows matched by filter, then loads the requested page
// of posts with their details and default ordering.
func paginate(ctx context.Context, db *gorm.DB, filter func(*gorm.DB) *gorm.DB, req PageRequest) (*Page, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&models.Post{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(fmt.Errorf("count posts: %w", err))
	}

	page, err := resolvePage(total, req)
	if err != nil {
		return nil, err
	}

	err = withPostDetails(db.WithContext(ctx)).
		Scopes(filter).
		Order("posts.pub_date DESC, posts.id DESC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&page.Posts).Error
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("list posts: %w", err))
	}
	return page, nil
}
