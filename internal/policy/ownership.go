package policy

import "blogicum/internal/models"

// Owned is implemented by resources that have an author.
type Owned interface {
	OwnerID() uint
}

// IsOwner reports whether viewer authored resource.
func IsOwner(resource Owned, viewer *models.User) bool {
	if viewer == nil || resource == nil {
		return false
	}
	return resource.OwnerID() == viewer.ID
}
