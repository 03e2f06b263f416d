package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feedbackhub/feedbackhub/models"
)

var (
	owner = Actor{ID: 1, Role: models.RoleUser}
	other = Actor{ID: 2, Role: models.RoleUser}
	admin = Actor{ID: 3, Role: models.RoleAdmin}
)

func TestCanAccessComment(t *testing.T) {
	comment := &models.Comment{ID: 10, UserID: owner.ID}

	assert.True(t, CanAccessComment(owner, comment))
	assert.True(t, CanAccessComment(admin, comment))
	assert.False(t, CanAccessComment(other, comment))
}

func TestCanMutateSubCommentDependsOnSubCommentAuthorOnly(t *testing.T) {
	// owner owns the comment, other authored the reply
	sub := &models.SubComment{ID: 20, CommentID: 10, UserID: other.ID}

	assert.True(t, CanMutateSubComment(other, sub), "reply author may edit their reply")
	assert.False(t, CanMutateSubComment(owner, sub), "comment owner gets no rights over someone else's reply")
	assert.True(t, CanMutateSubComment(admin, sub), "admin may edit any reply")
}

func TestCanViewStats(t *testing.T) {
	assert.True(t, CanViewStats(admin))
	assert.False(t, CanViewStats(owner))
	assert.False(t, CanViewStats(Actor{ID: 99, Role: ""}))
}

func TestVisibleNeverLeaksForeignComments(t *testing.T) {
	comments := []models.Comment{
		{ID: 1, UserID: 1},
		{ID: 2, UserID: 2},
		{ID: 3, UserID: 1},
		{ID: 4, UserID: 5},
	}

	for i := range comments {
		if Visible(owner, &comments[i]) {
			assert.Equal(t, owner.ID, comments[i].UserID)
		}
	}

	seen := 0
	for i := range comments {
		if Visible(admin, &comments[i]) {
			seen++
		}
	}
	assert.Equal(t, len(comments), seen, "admin sees everything")
}
