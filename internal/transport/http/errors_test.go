package httptransport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"mailhub/backend/internal/auth"
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/service"
	"mailhub/backend/internal/storage"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"校验错误返回422", &domain.ValidationError{Field: "document", Message: "税号位数错误"}, http.StatusUnprocessableEntity},
		{"客户不存在返回404", storage.ErrClientNotFound, http.StatusNotFound},
		{"信箱不存在返回404", storage.ErrMailboxNotFound, http.StatusNotFound},
		{"税号冲突返回409", storage.ErrDocumentExists, http.StatusConflict},
		{"编号冲突返回409", storage.ErrNumberExists, http.StatusConflict},
		{"用户名冲突返回409", auth.ErrUsernameExists, http.StatusConflict},
		{"重复取件返回409", service.ErrAlreadyPickedUp, http.StatusConflict},
		{"未知错误返回500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			respondError(c, tc.err)

			assert.Equal(t, tc.status, recorder.Code)
		})
	}
}
