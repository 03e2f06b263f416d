// Package policy centralizes every ownership and role decision so the rules
// live in one place instead of being repeated inside each handler. Decisions
// are pure: the package never queries or mutates state.
package policy

import (
	"gorm.io/gorm"

	"github.com/feedbackhub/feedbackhub/models"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanAccessComment decides read-one, update, and delete on a comment:
// permitted for the owning user or any admin.
func CanAccessComment(actor Actor, comment *models.Comment) bool {
	return actor.IsAdmin() || actor.ID == comment.UserID
}

// CanMutateSubComment decides update and delete on a sub-comment. The check
// is against the sub-comment's own author, never the parent comment's owner:
// a comment owner cannot edit someone else's reply unless also admin.
func CanMutateSubComment(actor Actor, sub *models.SubComment) bool {
	return actor.IsAdmin() || actor.ID == sub.UserID
}

// CanViewStats gates the aggregate endpoints. Admin only, no ownership
// fallback.
func CanViewStats(actor Actor) bool {
	return actor.IsAdmin()
}

// Visible is the predicate form of the visibility filter, used by tests and
// any in-memory filtering: admins see everything, everyone else sees only
// their own comments.
func Visible(actor Actor, comment *models.Comment) bool {
	return actor.IsAdmin() || actor.ID == comment.UserID
}

// VisibilityScope returns a gorm scope restricting a comment query to what
// the actor may see. It is applied before the query runs, never as a
// post-filter, so unauthorized rows are not even fetched.
func VisibilityScope(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.IsAdmin() {
			return db
		}
		return db.Where("user_id = ?", actor.ID)
	}
}
