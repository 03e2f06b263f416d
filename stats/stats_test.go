package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedbackhub/models"
)

func comment(id, userID uint, category, status, priority string, subCount int, created time.Time) models.Comment {
	subs := make([]models.SubComment, subCount)
	for i := range subs {
		subs[i] = models.SubComment{ID: id*100 + uint(i), CommentID: id, UserID: userID}
	}
	return models.Comment{
		ID:          id,
		UserID:      userID,
		Title:       fmt.Sprintf("comment %d", id),
		Category:    category,
		Status:      status,
		Priority:    priority,
		CreatedAt:   created,
		UpdatedAt:   created,
		SubComments: subs,
		User:        models.User{ID: userID, Name: fmt.Sprintf("user %d", userID), Email: fmt.Sprintf("u%d@example.com", userID)},
	}
}

var baseTime = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func fixture() []models.Comment {
	return []models.Comment{
		comment(1, 1, models.CategoryBugReport, models.StatusOpen, models.PriorityHigh, 0, baseTime),
		comment(2, 1, models.CategoryBugReport, models.StatusResolved, models.PriorityCritical, 2, baseTime.Add(24*time.Hour)),
		comment(3, 2, models.CategoryFeatureRequest, models.StatusOpen, models.PriorityLow, 3, baseTime.Add(48*time.Hour)),
		comment(4, 2, models.CategoryGeneralFeedback, models.StatusInProgress, models.PriorityMedium, 1, baseTime.Add(48*time.Hour)),
	}
}

func TestBuildOverviewEmptyCollection(t *testing.T) {
	o := BuildOverview(nil, 0)
	assert.Equal(t, 0, o.TotalComments)
	assert.Equal(t, 0, o.TotalSubComments)
	assert.Zero(t, o.AverageSubCommentsPerPost, "division by zero must be guarded")
}

func TestBuildOverview(t *testing.T) {
	o := BuildOverview(fixture(), 7)
	assert.Equal(t, 4, o.TotalComments)
	assert.Equal(t, int64(7), o.TotalUsers)
	assert.Equal(t, 6, o.TotalSubComments)
	assert.InDelta(t, 1.5, o.AverageSubCommentsPerPost, 1e-9)
}

func TestBuildCategoryStats(t *testing.T) {
	out := BuildCategoryStats(fixture())
	require.Len(t, out, 3)

	byCategory := map[string]CategoryStat{}
	sum := 0.0
	for _, s := range out {
		byCategory[s.Category] = s
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-9, "percentages sum to 100 over the grand total")

	bugs := byCategory[models.CategoryBugReport]
	assert.Equal(t, 2, bugs.Count)
	assert.Equal(t, 2, bugs.SubCommentsCount)
	// HIGH=3, CRITICAL=4
	assert.InDelta(t, 3.5, bugs.AveragePriority, 1e-9)
	assert.InDelta(t, 50.0, bugs.Percentage, 1e-9)
}

func TestBuildCategoryStatsSingleHighBugReport(t *testing.T) {
	out := BuildCategoryStats([]models.Comment{
		comment(1, 1, models.CategoryBugReport, models.StatusOpen, models.PriorityHigh, 0, baseTime),
	})
	require.Len(t, out, 1)
	assert.Equal(t, models.CategoryBugReport, out[0].Category)
	assert.InDelta(t, 3.0, out[0].AveragePriority, 1e-9)
	assert.Equal(t, 0, out[0].SubCommentsCount)
}

func TestBuildPriorityStats(t *testing.T) {
	comments := []models.Comment{
		comment(1, 1, models.CategoryBugReport, models.StatusOpen, models.PriorityHigh, 2, baseTime),
		comment(2, 2, models.CategoryIntegration, models.StatusOpen, models.PriorityHigh, 4, baseTime),
		comment(3, 2, models.CategoryBugReport, models.StatusOpen, models.PriorityLow, 1, baseTime),
	}
	out := BuildPriorityStats(comments)
	require.Len(t, out, 2)

	byPriority := map[string]PriorityStat{}
	for _, s := range out {
		byPriority[s.Priority] = s
	}

	high := byPriority[models.PriorityHigh]
	assert.Equal(t, 2, high.Count)
	assert.InDelta(t, 3.0, high.AverageSubComments, 1e-9)
	assert.Equal(t, 2, high.UniqueCategories)

	low := byPriority[models.PriorityLow]
	assert.Equal(t, 1, low.Count)
	assert.Equal(t, 1, low.UniqueCategories)
}

func TestBuildStatusStatsHistogramKeys(t *testing.T) {
	out := BuildStatusStats(fixture())

	for _, s := range out {
		require.Len(t, s.PriorityDistribution, len(models.Priorities), "histogram always carries all four keys")
		total := 0
		for _, p := range models.Priorities {
			v, ok := s.PriorityDistribution[p]
			assert.True(t, ok, "missing key %s", p)
			total += v
		}
		assert.Equal(t, s.Count, total, "histogram sums to the group count")
	}

	byStatus := map[string]StatusStat{}
	for _, s := range out {
		byStatus[s.Status] = s
	}
	open := byStatus[models.StatusOpen]
	assert.Equal(t, 2, open.Count)
	assert.Equal(t, 1, open.PriorityDistribution[models.PriorityHigh])
	assert.Equal(t, 1, open.PriorityDistribution[models.PriorityLow])
	assert.Equal(t, 0, open.PriorityDistribution[models.PriorityCritical])
}

func TestBuildRecentActivityOrderAndLimit(t *testing.T) {
	var comments []models.Comment
	for i := 1; i <= 12; i++ {
		c := comment(uint(i), 1, models.CategoryGeneralFeedback, models.StatusOpen, models.PriorityMedium, i%3, baseTime.Add(time.Duration(i)*time.Hour))
		comments = append(comments, c)
	}
	// tie on UpdatedAt between ids 11 and 12
	comments[11].UpdatedAt = comments[10].UpdatedAt

	out := BuildRecentActivity(comments)
	require.Len(t, out, RecentActivityLimit)

	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		assert.False(t, cur.UpdatedAt.After(prev.UpdatedAt), "descending by updated_at")
		if cur.UpdatedAt.Equal(prev.UpdatedAt) {
			assert.Less(t, prev.ID, cur.ID, "ascending id on ties")
		}
	}
	assert.Equal(t, uint(11), out[0].ID)
	assert.Equal(t, uint(12), out[1].ID)
	assert.Equal(t, "user 1", out[0].UserName)
}

func TestBuildTimeSeriesDaily(t *testing.T) {
	comments := fixture()
	out := BuildTimeSeries(comments, PeriodDaily)
	require.Len(t, out, 3)

	assert.Equal(t, "2024-03-10", out[0].Period)
	assert.Equal(t, "2024-03-11", out[1].Period)
	assert.Equal(t, "2024-03-12", out[2].Period)

	totalComments, totalSubs := 0, 0
	for i := 1; i < len(out); i++ {
		assert.Less(t, out[i-1].Period, out[i].Period, "ascending by key")
	}
	for _, b := range out {
		totalComments += b.Comments
		totalSubs += b.SubComments
	}
	assert.Equal(t, len(comments), totalComments, "buckets partition the input")
	assert.Equal(t, 6, totalSubs)

	last := out[2]
	assert.Equal(t, 2, last.Comments)
	assert.Equal(t, 1, last.UniqueUsers)
	assert.Equal(t, 2, last.UniqueCategories)
}

func TestBucketKeyFormats(t *testing.T) {
	ts := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-05", BucketKey(PeriodDaily, ts))
	assert.Equal(t, "2024-01", BucketKey(PeriodMonthly, ts))
	assert.Equal(t, "2024-W01", BucketKey(PeriodWeekly, ts))

	// ISO week still zero-padded mid-year
	mid := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	_, week := mid.ISOWeek()
	assert.Equal(t, fmt.Sprintf("2024-W%02d", week), BucketKey(PeriodWeekly, mid))
}

func TestValidPeriod(t *testing.T) {
	assert.True(t, ValidPeriod(PeriodDaily))
	assert.True(t, ValidPeriod(PeriodWeekly))
	assert.True(t, ValidPeriod(PeriodMonthly))
	assert.False(t, ValidPeriod("hourly"))
	assert.False(t, ValidPeriod(""))
}

func TestBuildUserStats(t *testing.T) {
	comments := []models.Comment{
		comment(1, 1, models.CategoryBugReport, models.StatusOpen, models.PriorityHigh, 1, baseTime),
		comment(2, 1, models.CategoryFeatureRequest, models.StatusOpen, models.PriorityLow, 2, baseTime),
		comment(3, 1, models.CategoryBugReport, models.StatusOpen, models.PriorityMedium, 0, baseTime),
		comment(4, 2, models.CategoryIntegration, models.StatusOpen, models.PriorityCritical, 5, baseTime),
	}
	out := BuildUserStats(comments)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, uint(1), first.UserID)
	assert.Equal(t, "user 1", first.UserName)
	assert.Equal(t, "u1@example.com", first.UserEmail)
	assert.Equal(t, 3, first.TotalComments)
	assert.Equal(t, 3, first.TotalSubComments)
	assert.Equal(t, 2, first.CategoriesCount)
	// HIGH=3, LOW=1, MEDIUM=2 -> 2.0
	assert.InDelta(t, 2.0, first.AveragePriority, 1e-9)

	second := out[1]
	assert.Equal(t, uint(2), second.UserID)
	assert.Equal(t, 1, second.TotalComments)
	assert.InDelta(t, 4.0, second.AveragePriority, 1e-9)
}

func TestBuildUserStatsSortedByTotalDescending(t *testing.T) {
	comments := []models.Comment{
		comment(1, 5, models.CategoryBugReport, models.StatusOpen, models.PriorityHigh, 0, baseTime),
		comment(2, 9, models.CategoryBugReport, models.StatusOpen, models.PriorityHigh, 0, baseTime),
		comment(3, 9, models.CategoryBugReport, models.StatusOpen, models.PriorityHigh, 0, baseTime),
	}
	out := BuildUserStats(comments)
	require.Len(t, out, 2)
	assert.Equal(t, uint(9), out[0].UserID)
	assert.Equal(t, uint(5), out[1].UserID)
}

func TestBuildCategoryBreakdown(t *testing.T) {
	out := BuildCategoryBreakdown(fixture())
	require.Len(t, out, 3)

	byCategory := map[string]CategoryBreakdown{}
	for _, s := range out {
		byCategory[s.Category] = s
	}

	bugs := byCategory[models.CategoryBugReport]
	assert.Equal(t, 2, bugs.Count)
	assert.Equal(t, 1, bugs.OpenIssues)
	assert.Equal(t, 1, bugs.ResolvedIssues)
	assert.Equal(t, 2, bugs.TotalSubComments)

	features := byCategory[models.CategoryFeatureRequest]
	assert.Equal(t, 1, features.OpenIssues)
	assert.Equal(t, 0, features.ResolvedIssues)
}

func TestUnmappedPriorityFallsBackToDefaultWeight(t *testing.T) {
	legacy := comment(1, 1, models.CategoryBugReport, models.StatusOpen, "URGENT", 0, baseTime)
	out := BuildCategoryStats([]models.Comment{legacy})
	require.Len(t, out, 1)
	assert.InDelta(t, float64(models.DefaultPriorityWeight), out[0].AveragePriority, 1e-9)
}
