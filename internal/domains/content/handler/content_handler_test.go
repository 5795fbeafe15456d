package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-cms/internal/domains/content/model"
)

func perform(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	writeServiceError(c, err)
	return w
}

func TestWriteServiceError(t *testing.T) {
	t.Run("validation maps to 422 with field details", func(t *testing.T) {
		w := perform(t, &model.ValidationError{Fields: model.FieldErrors{
			"title": "title is required",
		}})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var body struct {
			Error struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Equal(t, "title is required", body.Error.Details["title"])
	})

	t.Run("slug conflict maps to 409", func(t *testing.T) {
		w := perform(t, &model.ConflictError{Field: "slug", Message: "this slug is already in use"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("upload failure maps to 500 with retry message", func(t *testing.T) {
		w := perform(t, &model.UploadError{Err: errors.New("connection refused")})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "try again")
		assert.NotContains(t, w.Body.String(), "connection refused", "internal detail stays out of the response")
	})

	t.Run("persistence failure maps to 500 with retry message", func(t *testing.T) {
		w := perform(t, &model.PersistenceError{Err: errors.New("deadlock detected")})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "try again")
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		w := perform(t, model.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
