package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-management-api/internal/core/errs"
)

func TestFail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{errs.Validation("Field 'name' is required"), http.StatusBadRequest, "Field 'name' is required"},
		{errs.Unauthorized("Token has expired"), http.StatusUnauthorized, "Token has expired"},
		{errs.Forbidden("Manager access required"), http.StatusForbidden, "Manager access required"},
		{errs.NotFound("Task not found"), http.StatusNotFound, "Task not found"},
		{errs.Conflict("Email already exists"), http.StatusConflict, "Email already exists"},
		{errs.Internal("list users", errors.New("dial tcp: refused")), http.StatusInternalServerError, "Internal server error"},
		{errors.New("raw"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Fail(c, tc.err)

		assert.True(t, c.IsAborted())
		assert.Equal(t, tc.status, w.Code)
		var body ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body.Error)
		require.Len(t, c.Errors, 1)
	}
}
