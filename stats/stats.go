// Package stats reduces a snapshot of the comment collection into the
// aggregate views served by the admin endpoints. Every function is a pure
// transformation over the slice it is given; each request recomputes from a
// fresh read and nothing is cached.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/feedbackhub/feedbackhub/models"
)

// Overview summarizes the whole collection.
type Overview struct {
	TotalComments             int     `json:"total_comments"`
	TotalUsers                int64   `json:"total_users"`
	TotalSubComments          int     `json:"total_sub_comments"`
	AverageSubCommentsPerPost float64 `json:"average_sub_comments_per_post"`
}

// CategoryStat is the per-category rollup.
type CategoryStat struct {
	Category         string  `json:"category"`
	Count            int     `json:"count"`
	SubCommentsCount int     `json:"sub_comments_count"`
	AveragePriority  float64 `json:"average_priority"`
	Percentage       float64 `json:"percentage"`
}

// PriorityStat is the per-priority rollup.
type PriorityStat struct {
	Priority           string  `json:"priority"`
	Count              int     `json:"count"`
	AverageSubComments float64 `json:"average_sub_comments"`
	UniqueCategories   int     `json:"unique_categories"`
}

// StatusStat is the per-status rollup. PriorityDistribution always carries
// exactly the four priority keys, even when a count is zero, and its values
// sum to Count.
type StatusStat struct {
	Status               string         `json:"status"`
	Count                int            `json:"count"`
	AverageSubComments   float64        `json:"average_sub_comments"`
	PriorityDistribution map[string]int `json:"priority_distribution"`
}

// RecentComment is a comment projected for the recent-activity feed.
type RecentComment struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	Status           string    `json:"status"`
	Priority         string    `json:"priority"`
	UpdatedAt        time.Time `json:"updated_at"`
	UserName         string    `json:"user_name"`
	SubCommentsCount int       `json:"sub_comments_count"`
}

// TimeBucket is one period of the activity time series.
type TimeBucket struct {
	Period           string `json:"period"`
	Comments         int    `json:"comments"`
	SubComments      int    `json:"sub_comments"`
	UniqueUsers      int    `json:"unique_users"`
	UniqueCategories int    `json:"unique_categories"`
}

// UserStat is the per-author rollup joined with the author's profile.
type UserStat struct {
	UserID           uint    `json:"user_id"`
	UserName         string  `json:"user_name"`
	UserEmail        string  `json:"user_email"`
	TotalComments    int     `json:"total_comments"`
	TotalSubComments int     `json:"total_sub_comments"`
	CategoriesCount  int     `json:"categories_count"`
	AveragePriority  float64 `json:"average_priority"`
}

// CategoryBreakdown is the compact per-category view served on the comments
// router (open/resolved issue counts per category).
type CategoryBreakdown struct {
	Category         string `json:"category"`
	Count            int    `json:"count"`
	OpenIssues       int    `json:"open_issues"`
	ResolvedIssues   int    `json:"resolved_issues"`
	TotalSubComments int    `json:"total_sub_comments"`
}

// RecentActivityLimit caps the recent-activity feed.
const RecentActivityLimit = 10

// Time-series periods.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ValidPeriod reports whether the value is a supported time-series period.
func ValidPeriod(period string) bool {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// BuildOverview computes collection-wide totals. The average guards against
// an empty collection.
func BuildOverview(comments []models.Comment, totalUsers int64) Overview {
	totalSub := 0
	for i := range comments {
		totalSub += len(comments[i].SubComments)
	}
	avg := 0.0
	if len(comments) > 0 {
		avg = float64(totalSub) / float64(len(comments))
	}
	return Overview{
		TotalComments:             len(comments),
		TotalUsers:                totalUsers,
		TotalSubComments:          totalSub,
		AverageSubCommentsPerPost: avg,
	}
}

// BuildCategoryStats groups comments by category. Percentage is computed
// against the grand total across all categories after grouping.
func BuildCategoryStats(comments []models.Comment) []CategoryStat {
	type acc struct {
		count     int
		subCount  int
		weightSum float64
	}
	groups := map[string]*acc{}
	for i := range comments {
		c := &comments[i]
		g := groups[c.Category]
		if g == nil {
			g = &acc{}
			groups[c.Category] = g
		}
		g.count++
		g.subCount += len(c.SubComments)
		g.weightSum += models.PriorityWeight(c.Priority)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	total := len(comments)
	out := make([]CategoryStat, 0, len(groups))
	for _, category := range groupKeys(keys, models.Categories) {
		g := groups[category]
		out = append(out, CategoryStat{
			Category:         category,
			Count:            g.count,
			SubCommentsCount: g.subCount,
			AveragePriority:  g.weightSum / float64(g.count),
			Percentage:       100 * float64(g.count) / float64(total),
		})
	}
	return out
}

// BuildPriorityStats groups comments by priority.
func BuildPriorityStats(comments []models.Comment) []PriorityStat {
	type acc struct {
		count      int
		subCount   int
		categories map[string]struct{}
	}
	groups := map[string]*acc{}
	for i := range comments {
		c := &comments[i]
		g := groups[c.Priority]
		if g == nil {
			g = &acc{categories: map[string]struct{}{}}
			groups[c.Priority] = g
		}
		g.count++
		g.subCount += len(c.SubComments)
		g.categories[c.Category] = struct{}{}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	out := make([]PriorityStat, 0, len(groups))
	for _, priority := range groupKeys(keys, models.Priorities) {
		g := groups[priority]
		out = append(out, PriorityStat{
			Priority:           priority,
			Count:              g.count,
			AverageSubComments: float64(g.subCount) / float64(g.count),
			UniqueCategories:   len(g.categories),
		})
	}
	return out
}

// BuildStatusStats groups comments by status with a fixed-key priority
// histogram per group.
func BuildStatusStats(comments []models.Comment) []StatusStat {
	type acc struct {
		count    int
		subCount int
		byPrio   map[string]int
	}
	groups := map[string]*acc{}
	for i := range comments {
		c := &comments[i]
		g := groups[c.Status]
		if g == nil {
			g = &acc{byPrio: newPriorityHistogram()}
			groups[c.Status] = g
		}
		g.count++
		g.subCount += len(c.SubComments)
		g.byPrio[c.Priority]++
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	out := make([]StatusStat, 0, len(groups))
	for _, status := range groupKeys(keys, models.Statuses) {
		g := groups[status]
		out = append(out, StatusStat{
			Status:               status,
			Count:                g.count,
			AverageSubComments:   float64(g.subCount) / float64(g.count),
			PriorityDistribution: g.byPrio,
		})
	}
	return out
}

// newPriorityHistogram seeds all four priority keys so they are present even
// at zero. Out-of-enumeration values (legacy rows) land on extra keys rather
// than being dropped silently.
func newPriorityHistogram() map[string]int {
	h := make(map[string]int, len(models.Priorities))
	for _, p := range models.Priorities {
		h[p] = 0
	}
	return h
}

// BuildRecentActivity returns the most recently updated comments, newest
// first, with ascending id as the stable tie-break. Requires User preloaded.
func BuildRecentActivity(comments []models.Comment) []RecentComment {
	idx := make([]int, len(comments))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ca, cb := &comments[idx[a]], &comments[idx[b]]
		if !ca.UpdatedAt.Equal(cb.UpdatedAt) {
			return ca.UpdatedAt.After(cb.UpdatedAt)
		}
		return ca.ID < cb.ID
	})

	limit := RecentActivityLimit
	if len(idx) < limit {
		limit = len(idx)
	}
	out := make([]RecentComment, 0, limit)
	for _, i := range idx[:limit] {
		c := &comments[i]
		out = append(out, RecentComment{
			ID:               c.ID,
			Title:            c.Title,
			Category:         c.Category,
			Status:           c.Status,
			Priority:         c.Priority,
			UpdatedAt:        c.UpdatedAt,
			UserName:         c.User.Name,
			SubCommentsCount: len(c.SubComments),
		})
	}
	return out
}

// BucketKey renders a comment creation time as its time-series bucket key:
// 2006-01-02 for daily, 2006-W02 (calendar year, ISO week number) for
// weekly, 2006-01 for monthly.
func BucketKey(period string, t time.Time) string {
	switch period {
	case PeriodWeekly:
		_, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", t.Year(), week)
	case PeriodMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// BuildTimeSeries buckets comments by creation time. Buckets come back sorted
// ascending by key and partition the input: every comment lands in exactly
// one bucket.
func BuildTimeSeries(comments []models.Comment, period string) []TimeBucket {
	type acc struct {
		comments   int
		subCount   int
		users      map[uint]struct{}
		categories map[string]struct{}
	}
	groups := map[string]*acc{}
	for i := range comments {
		c := &comments[i]
		key := BucketKey(period, c.CreatedAt)
		g := groups[key]
		if g == nil {
			g = &acc{users: map[uint]struct{}{}, categories: map[string]struct{}{}}
			groups[key] = g
		}
		g.comments++
		g.subCount += len(c.SubComments)
		g.users[c.UserID] = struct{}{}
		g.categories[c.Category] = struct{}{}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]TimeBucket, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		out = append(out, TimeBucket{
			Period:           k,
			Comments:         g.comments,
			SubComments:      g.subCount,
			UniqueUsers:      len(g.users),
			UniqueCategories: len(g.categories),
		})
	}
	return out
}

// BuildUserStats groups comments by author, joined with the author's name and
// email, sorted by total comments descending (author id ascending on ties).
// Requires User preloaded.
func BuildUserStats(comments []models.Comment) []UserStat {
	type acc struct {
		name       string
		email      string
		count      int
		subCount   int
		categories map[string]struct{}
		weightSum  float64
	}
	groups := map[uint]*acc{}
	for i := range comments {
		c := &comments[i]
		g := groups[c.UserID]
		if g == nil {
			g = &acc{
				name:       c.User.Name,
				email:      c.User.Email,
				categories: map[string]struct{}{},
			}
			groups[c.UserID] = g
		}
		g.count++
		g.subCount += len(c.SubComments)
		g.categories[c.Category] = struct{}{}
		g.weightSum += models.PriorityWeight(c.Priority)
	}

	out := make([]UserStat, 0, len(groups))
	for id, g := range groups {
		out = append(out, UserStat{
			UserID:           id,
			UserName:         g.name,
			UserEmail:        g.email,
			TotalComments:    g.count,
			TotalSubComments: g.subCount,
			CategoriesCount:  len(g.categories),
			AveragePriority:  g.weightSum / float64(g.count),
		})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].TotalComments != out[b].TotalComments {
			return out[a].TotalComments > out[b].TotalComments
		}
		return out[a].UserID < out[b].UserID
	})
	return out
}

// BuildCategoryBreakdown is the per-category open/resolved view served under
// the comments router.
func BuildCategoryBreakdown(comments []models.Comment) []CategoryBreakdown {
	groups := map[string]*CategoryBreakdown{}
	for i := range comments {
		c := &comments[i]
		g := groups[c.Category]
		if g == nil {
			g = &CategoryBreakdown{Category: c.Category}
			groups[c.Category] = g
		}
		g.Count++
		if c.Status == models.StatusOpen {
			g.OpenIssues++
		}
		if c.Status == models.StatusResolved {
			g.ResolvedIssues++
		}
		g.TotalSubComments += len(c.SubComments)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	out := make([]CategoryBreakdown, 0, len(keys))
	for _, category := range groupKeys(keys, models.Categories) {
		out = append(out, *groups[category])
	}
	return out
}

// groupKeys orders the observed group keys by the enumeration's declared
// order; keys outside the enumeration (legacy rows) trail in sorted order.
func groupKeys(present []string, order []string) []string {
	seen := make(map[string]struct{}, len(present))
	for _, k := range present {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(present))
	for _, k := range order {
		if _, ok := seen[k]; ok {
			out = append(out, k)
			delete(seen, k)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
