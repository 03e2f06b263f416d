package models

import "time"

// Comment categories.
const (
	CategoryGeneralFeedback = "GENERAL_FEEDBACK"
	CategoryFeatureRequest  = "FEATURE_REQUEST"
	CategoryIntegration     = "INTEGRATION"
	CategoryBugReport       = "BUG_REPORT"
)

// Comment statuses.
const (
	StatusOpen       = "OPEN"
	StatusInProgress = "IN_PROGRESS"
	StatusResolved   = "RESOLVED"
	StatusClosed     = "CLOSED"
)

// Comment priorities.
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

// Categories lists the valid comment categories in display order.
var Categories = []string{
	CategoryGeneralFeedback,
	CategoryFeatureRequest,
	CategoryIntegration,
	CategoryBugReport,
}

// Statuses lists the valid comment statuses in lifecycle order.
var Statuses = []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Priorities lists the valid comment priorities from lowest to highest.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// PriorityWeights maps priorities to the numeric weight used when averaging.
// Values outside the enumeration fall back to DefaultPriorityWeight; writes
// reject such values, so the fallback only matters for rows that predate
// validation.
var PriorityWeights = map[string]float64{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// DefaultPriorityWeight is the weight applied to unmapped priority values.
const DefaultPriorityWeight = 1

// PriorityWeight returns the averaging weight for a priority value.
func PriorityWeight(priority string) float64 {
	if w, ok := PriorityWeights[priority]; ok {
		return w
	}
	return DefaultPriorityWeight
}

// ValidCategory reports whether the value is one of the comment categories.
func ValidCategory(v string) bool { return contains(Categories, v) }

// ValidStatus reports whether the value is one of the comment statuses.
func ValidStatus(v string) bool { return contains(Statuses, v) }

// ValidPriority reports whether the value is one of the comment priorities.
func ValidPriority(v string) bool { return contains(Priorities, v) }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Comment is a feedback entry submitted by a user. It is the aggregate root
// for its sub-comments: deleting a comment removes them, and every
// sub-comment mutation refreshes the parent's UpdatedAt inside the same
// transaction.
type Comment struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"index;not null" json:"user_id"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	RecordID    string       `gorm:"size:255;not null" json:"record_id"`
	Category    string       `gorm:"size:32;not null;default:'GENERAL_FEEDBACK'" json:"category"`
	Status      string       `gorm:"size:32;not null;default:'OPEN'" json:"status"`
	Priority    string       `gorm:"size:32;not null;default:'MEDIUM'" json:"priority"`
	Browser     string       `gorm:"size:128" json:"browser,omitempty"`
	OS          string       `gorm:"size:128" json:"os,omitempty"`
	Version     string       `gorm:"size:64" json:"version,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	User        User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	SubComments []SubComment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sub_comments"`
}

// SubComment is a reply owned by a parent Comment. Ordering within the parent
// is insertion order (ascending id).
type SubComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"index;not null" json:"comment_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
