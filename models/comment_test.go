package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumValidators(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, ValidCategory(c))
	}
	assert.False(t, ValidCategory("SALES"))
	assert.False(t, ValidCategory(""))

	for _, s := range Statuses {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("ARCHIVED"))

	for _, p := range Priorities {
		assert.True(t, ValidPriority(p))
	}
	assert.False(t, ValidPriority("URGENT"))
}

func TestPriorityWeight(t *testing.T) {
	assert.Equal(t, float64(1), PriorityWeight(PriorityLow))
	assert.Equal(t, float64(2), PriorityWeight(PriorityMedium))
	assert.Equal(t, float64(3), PriorityWeight(PriorityHigh))
	assert.Equal(t, float64(4), PriorityWeight(PriorityCritical))
	assert.Equal(t, float64(DefaultPriorityWeight), PriorityWeight("URGENT"))
	assert.Equal(t, float64(DefaultPriorityWeight), PriorityWeight(""))
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
}
