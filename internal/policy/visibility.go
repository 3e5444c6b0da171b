// Package policy holds the pure predicates that decide who may see and who may
// change posts and comments. The viewer is always passed explicitly; nil means
// an anonymous request.
package policy

import (
	"time"

	"blogicum/internal/models"
)

// IsPostPubliclyVisible reports whether anyone may see the post at instant now:
// the post is published, its category is published and its publication date has
// passed. A post without a category is never publicly visible.
func IsPostPubliclyVisible(post *models.Post, now time.Time) bool {
	if post == nil || post.Category == nil {
		return false
	}
	return post.IsPublished && post.Category.IsPublished && !post.PubDate.After(now)
}

// CanViewPost reports whether viewer may open the post's detail page. Authors
// always see their own posts.
func CanViewPost(post *models.Post, viewer *models.User, now time.Time) bool {
	if post == nil {
		return false
	}
	return IsPostPubliclyVisible(post, now) || IsOwner(post, viewer)
}
