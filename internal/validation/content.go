package validation

import (
	"fmt"
	"time"
)

const (
	// PostTitleMaxLength bounds Post.Title.
	PostTitleMaxLength = 256
	// CommentMaxLength bounds Comment.Text.
	CommentMaxLength = 256
	// SlugMaxLength bounds Category.Slug.
	SlugMaxLength = 64
)

// ValidateSlug accepts Latin letters, digits, hyphens and underscores.
func ValidateSlug(slug string) error {
	return checkValue(slug, fmt.Sprintf("required,max=%d,slug", SlugMaxLength))
}

// postForm mirrors the post form inputs. Dates and ids are parsed once the
// tags pass.
type postForm struct {
	Title    string `form:"title" validate:"required,max=256"`
	Text     string `form:"text" validate:"required"`
	PubDate  string `form:"pub_date" validate:"required"`
	Category string `form:"category" validate:"required,number"`
	Location string `form:"location" validate:"omitempty,number"`
}

// PostInput is a syntactically valid post form. Whether the referenced
// category and location exist is checked by the post service.
type PostInput struct {
	Title      string
	Text       string
	PubDate    time.Time
	LocationID *uint
	CategoryID uint
	ClearImage bool
}

// ParsePost validates the create/edit post form.
func ParsePost(f *Form) (PostInput, bool) {
	raw := postForm{
		Title:    f.Get("title"),
		Text:     f.Get("text"),
		PubDate:  f.Get("pub_date"),
		Category: f.Get("category"),
		Location: f.Get("location"),
	}
	check(f, &raw)

	in := PostInput{
		Title:      raw.Title,
		Text:       raw.Text,
		ClearImage: f.Get("image-clear") != "",
	}

	if raw.PubDate != "" {
		t, err := ParseDateTime(raw.PubDate)
		if err != nil {
			f.AddError("pub_date", "Enter a valid date/time.")
		}
		in.PubDate = t
	}

	if f.Error("category") == "" {
		id, err := parseID(raw.Category)
		if err != nil {
			f.AddError("category", invalidChoiceMessage)
		}
		in.CategoryID = id
	}

	if raw.Location != "" && f.Error("location") == "" {
		id, err := parseID(raw.Location)
		if err != nil {
			f.AddError("location", invalidChoiceMessage)
		} else {
			in.LocationID = &id
		}
	}

	return in, f.Valid()
}

type commentForm struct {
	Text string `form:"text" validate:"required,max=256"`
}

// CommentInput is a valid comment form.
type CommentInput struct {
	Text string
}

// ParseComment validates the comment form.
func ParseComment(f *Form) (CommentInput, bool) {
	raw := commentForm{Text: f.Get("text")}
	check(f, &raw)
	return CommentInput{Text: raw.Text}, f.Valid()
}
