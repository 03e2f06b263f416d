package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/feedbackhub/feedbackhub/middleware"
	"github.com/feedbackhub/feedbackhub/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newMockDB opens a gorm handle over a sqlmock connection so controller
// store interactions can be asserted statement by statement.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(gormMysql.New(gormMysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func deleteRequest(commentID string, actorID uint, role string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodDelete, "/comments/"+commentID, nil)
	ctx.Params = gin.Params{{Key: "id", Value: commentID}}
	ctx.Set(middleware.ContextUserIDKey, actorID)
	ctx.Set(middleware.ContextRoleKey, role)
	return ctx, w
}

func TestDeleteCommentRemovesSubCommentsInSameTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE `comments`\\.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(5, 1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `sub_comments` WHERE comment_id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM `comments` WHERE `comments`\\.`id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx, w := deleteRequest("5", 1, models.RoleUser)
	NewCommentController(db).DeleteComment(ctx)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCommentRollsBackWhenSubCommentDeleteFails(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE `comments`\\.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(5, 1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `sub_comments` WHERE comment_id = \\?").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	ctx, w := deleteRequest("5", 1, models.RoleUser)
	NewCommentController(db).DeleteComment(ctx)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCommentForbiddenForNonOwner(t *testing.T) {
	db, mock := newMockDB(t)

	// Only the ownership lookup runs; no delete may reach the store.
	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE `comments`\\.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(5, 1))

	ctx, w := deleteRequest("5", 2, models.RoleUser)
	NewCommentController(db).DeleteComment(ctx)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCommentAdminMayDeleteForeignComment(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE `comments`\\.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(5, 1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `sub_comments` WHERE comment_id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `comments` WHERE `comments`\\.`id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx, w := deleteRequest("5", 99, models.RoleAdmin)
	NewCommentController(db).DeleteComment(ctx)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCommentNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE `comments`\\.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}))

	ctx, w := deleteRequest("5", 1, models.RoleUser)
	NewCommentController(db).DeleteComment(ctx)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
