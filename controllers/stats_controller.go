package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feedbackhub/feedbackhub/models"
	"github.com/feedbackhub/feedbackhub/stats"
	"github.com/feedbackhub/feedbackhub/utils"
)

// StatsController serves the admin-only aggregate endpoints. Each request
// loads a fresh snapshot of the comment collection and reduces it with the
// pure pipelines in the stats package; a store failure aborts the whole
// response rather than returning partial numbers.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// snapshot loads every comment with its sub-comments and author.
func (s *StatsController) snapshot() ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("User").
		Preload("SubComments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_comments.id ASC")
		}).
		Find(&comments).Error
	return comments, err
}

// GetGeneralStats returns the overview plus the category, priority, status,
// and recent-activity rollups.
func (s *StatsController) GetGeneralStats(ctx *gin.Context) {
	comments, err := s.snapshot()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load comments")
		return
	}

	var totalUsers int64
	if err := s.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count users")
		return
	}

	utils.Success(ctx, gin.H{
		"overview":        stats.BuildOverview(comments, totalUsers),
		"category_stats":  stats.BuildCategoryStats(comments),
		"priority_stats":  stats.BuildPriorityStats(comments),
		"status_stats":    stats.BuildStatusStats(comments),
		"recent_activity": stats.BuildRecentActivity(comments),
	})
}

// GetUserStats returns the per-author rollup sorted by total comments.
func (s *StatsController) GetUserStats(ctx *gin.Context) {
	comments, err := s.snapshot()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load comments")
		return
	}

	utils.Success(ctx, gin.H{"items": stats.BuildUserStats(comments)})
}

// GetTimeline returns time-bucketed activity. Period defaults to daily.
func (s *StatsController) GetTimeline(ctx *gin.Context) {
	period := strings.TrimSpace(ctx.Query("period"))
	if period == "" {
		period = stats.PeriodDaily
	}
	if !stats.ValidPeriod(period) {
		utils.Error(ctx, http.StatusBadRequest, 40060, "period must be daily, weekly, or monthly")
		return
	}

	comments, err := s.snapshot()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load comments")
		return
	}

	utils.Success(ctx, gin.H{
		"period": period,
		"items":  stats.BuildTimeSeries(comments, period),
	})
}

// GetCategoryBreakdown returns the compact per-category open/resolved counts
// served under the comments router.
func (s *StatsController) GetCategoryBreakdown(ctx *gin.Context) {
	comments, err := s.snapshot()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load comments")
		return
	}

	utils.Success(ctx, gin.H{"items": stats.BuildCategoryBreakdown(comments)})
}
