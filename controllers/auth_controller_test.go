package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateEntry(t *testing.T) {
	assert.True(t, isDuplicateEntry(&mysql.MySQLError{Number: 1062}))
	assert.True(t, isDuplicateEntry(fmt.Errorf("create user: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, isDuplicateEntry(&mysql.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateEntry(assert.AnError))
	assert.False(t, isDuplicateEntry(nil))
}

// A registration that passes the pre-insert lookup can still lose the race
// to a concurrent request; the unique-index violation must surface as a
// conflict, not a server error.
func TestRegisterDuplicateEmailOnInsertIsConflict(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysql.MySQLError{Number: 1062})

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	body := `{"name":"Ada","email":"ada@example.com","password":"s3cretpass"}`
	ctx.Request = httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")

	NewAuthController(db).Register(ctx)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "40901")
	assert.NoError(t, mock.ExpectationsWereMet())
}
