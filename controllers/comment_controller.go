package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feedbackhub/feedbackhub/middleware"
	"github.com/feedbackhub/feedbackhub/models"
	"github.com/feedbackhub/feedbackhub/policy"
	"github.com/feedbackhub/feedbackhub/utils"
)

// CommentController manages CRUD operations for feedback comments and their
// sub-comments. Every ownership decision goes through the policy package;
// sub-comment mutations and the parent timestamp refresh share a transaction
// so concurrent edits against the same comment cannot lose an update.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// CreateComment creates a feedback comment owned by the authenticated actor.
// The owner is always the actor, never client supplied.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1,max=200"`
		Description string `json:"description" binding:"required"`
		RecordID    string `json:"record_id" binding:"required"`
		Category    string `json:"category"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
		Browser     string `json:"browser"`
		OS          string `json:"os"`
		Version     string `json:"version"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	description := utils.Sanitize(strings.TrimSpace(req.Description))
	if description == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "description cannot be empty")
		return
	}

	category := req.Category
	if category == "" {
		category = models.CategoryGeneralFeedback
	}
	if !models.ValidCategory(category) {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid category")
		return
	}
	status := req.Status
	if status == "" {
		status = models.StatusOpen
	}
	if !models.ValidStatus(status) {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid status")
		return
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid priority")
		return
	}

	actor, ok := middleware.Actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	comment := models.Comment{
		UserID:      actor.ID,
		Title:       title,
		Description: description,
		RecordID:    strings.TrimSpace(req.RecordID),
		Category:    category,
		Status:      status,
		Priority:    priority,
		Browser:     strings.TrimSpace(req.Browser),
		OS:          strings.TrimSpace(req.OS),
		Version:     strings.TrimSpace(req.Version),
	}

	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create comment")
		return
	}

	if err := c.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// ListComments returns comments visible to the actor, newest first. The
// visibility scope is applied to the query itself so unauthorized rows are
// never fetched. Optional category and status filters narrow the result.
func (c *CommentController) ListComments(ctx *gin.Context) {
	actor, ok := middleware.Actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}

	category := strings.TrimSpace(ctx.Query("category"))
	if category != "" && !models.ValidCategory(category) {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid category")
		return
	}
	status := strings.TrimSpace(ctx.Query("status"))
	if status != "" && !models.ValidStatus(status) {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid status")
		return
	}

	query := c.db.Scopes(policy.VisibilityScope(actor)).
		Preload("User").
		Preload("SubComments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_comments.id ASC")
		}).
		Preload("SubComments.User").
		Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var comments []models.Comment
	if err := query.Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{"items": comments})
}

// GetComment returns a single comment with its sub-comments. Existence is
// checked before authorization: a missing comment is 404 for everyone, an
// existing one the actor cannot read is 403.
func (c *CommentController) GetComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var comment models.Comment
	err := c.db.Preload("User").
		Preload("SubComments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_comments.id ASC")
		}).
		Preload("SubComments.User").
		First(&comment, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40401, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load comment")
		return
	}

	actor, ok := middleware.Actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return
	}
	if !policy.CanAccessComment(actor, &comment) {
		utils.Forbidden(ctx, 40301, "you can only view your own comments")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment applies a partial update. Owner or admin only; enum values
// are validated before anything is written.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
		Browser     *string `json:"browser"`
		OS          *string `json:"os"`
		Version     *string `json:"version"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40402, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load comment")
		return
	}

	actor, ok := middleware.Actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40123, "unauthorized")
		return
	}
	if !policy.CanAccessComment(actor, &comment) {
		utils.Forbidden(ctx, 40302, "you can only update your own comments")
		return
	}

	if req.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*req.Title))
		if title == "" || len([]rune(title)) > 200 {
			utils.Error(ctx, http.StatusBadRequest, 40031, "title must be 1-200 characters")
			return
		}
		comment.Title = title
	}
	if req.Description != nil {
		description := utils.Sanitize(strings.TrimSpace(*req.Description))
		if description == "" {
			utils.Error(ctx, http.StatusBadRequest, 40032, "description cannot be empty")
			return
		}
		comment.Description = description
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			utils.Error(ctx, http.StatusBadRequest, 40033, "invalid category")
			return
		}
		comment.Category = *req.Category
	}
	if req.Status != nil {
		if !models.ValidStatus(*req.Status) {
			utils.Error(ctx, http.StatusBadRequest, 40034, "invalid status")
			return
		}
		comment.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			utils.Error(ctx, http.StatusBadRequest, 40035, "invalid priority")
			return
		}
		comment.Priority = *req.Priority
	}
	if req.Browser != nil {
		comment.Browser = strings.TrimSpace(*req.Browser)
	}
	if req.OS != nil {
		comment.OS = strings.TrimSpace(*req.OS)
	}
	if req.Version != nil {
		comment.Version = strings.TrimSpace(*req.Version)
	}
	comment.UpdatedAt = time.Now()

	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to update comment")
		return
	}

	if err := c.db.Preload("User").
		Preload("SubComments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_comments.id ASC")
		}).
		Preload("SubComments.User").
		First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes a comment and all of its sub-comments in one
// transaction, so no orphaned sub-comment remains queryable.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40403, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load comment")
		return
	}

	actor, ok := middleware.Actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40124, "unauthorized")
		return
	}
	if !policy.CanAccessComment(actor, &comment) {
		utils.Forbidden(ctx, 40303, "you can only delete your own comments")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.SubComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// AddSubComment appends a reply to an existing comment. Any authenticated
// user may reply, regardless of who owns the comment.
func (c *CommentController) AddSubComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "content cannot be empty")
		return
	}

	commentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40404, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load comment")
		return
	}

	actor, ok := middleware.Actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40125, "unauthorized")
		return
	}

	sub := models.SubComment{
		CommentID: comment.ID,
		UserID:    actor.ID,
		Content:   content,
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return touchComment(tx, comment.ID)
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create sub-comment")
		return
	}

	if err := c.db.Preload("User").First(&sub, sub.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load sub-comment")
		return
	}

	utils.Success(ctx, gin.H{"sub_comment": sub})
}

// UpdateSubComment edits a reply. Only the reply's own author or an admin may
// edit it; owning the parent comment grants nothing.
func (c *CommentController) UpdateSubComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40043, "content cannot be empty")
		return
	}

	sub, ok := c.findSubComment(ctx)
	if !ok {
		return
	}

	actor, ok := middleware.Actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40126, "unauthorized")
		return
	}
	if !policy.CanMutateSubComment(actor, sub) {
		utils.Forbidden(ctx, 40304, "you can only edit your own sub-comments")
		return
	}

	sub.Content = content
	sub.UpdatedAt = time.Now()

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sub).Error; err != nil {
			return err
		}
		return touchComment(tx, sub.CommentID)
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to update sub-comment")
		return
	}

	if err := c.db.Preload("User").First(sub, sub.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load sub-comment")
		return
	}

	utils.Success(ctx, gin.H{"sub_comment": sub})
}

// DeleteSubComment removes a reply from its parent's sequence. Same ownership
// rule as UpdateSubComment.
func (c *CommentController) DeleteSubComment(ctx *gin.Context) {
	sub, ok := c.findSubComment(ctx)
	if !ok {
		return
	}

	actor, ok := middleware.Actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40127, "unauthorized")
		return
	}
	if !policy.CanMutateSubComment(actor, sub) {
		utils.Forbidden(ctx, 40305, "you can only delete your own sub-comments")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(sub).Error; err != nil {
			return err
		}
		return touchComment(tx, sub.CommentID)
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to delete sub-comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "sub-comment deleted"})
}

// findSubComment resolves the comment/sub-comment id pair, writing the 404
// response itself when either is missing.
func (c *CommentController) findSubComment(ctx *gin.Context) (*models.SubComment, bool) {
	commentID, ok := parseID(ctx, "id")
	if !ok {
		return nil, false
	}
	subID, ok := parseID(ctx, "subCommentId")
	if !ok {
		return nil, false
	}

	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40405, "comment not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to load comment")
		return nil, false
	}

	var sub models.SubComment
	if err := c.db.Where("comment_id = ?", comment.ID).First(&sub, subID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40406, "sub-comment not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to load sub-comment")
		return nil, false
	}

	return &sub, true
}

// touchComment refreshes the parent's updated_at inside the caller's
// transaction, keeping the aggregate's timestamp invariant.
func touchComment(tx *gorm.DB, commentID uint) error {
	return tx.Model(&models.Comment{}).Where("id = ?", commentID).
		Update("updated_at", time.Now()).Error
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(param))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid id")
		return 0, false
	}
	return uint(id), true
}
