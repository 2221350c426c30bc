package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=5"`
	Quantity int    `json:"quantity" binding:"gte=0"`
	Status   string `form:"status" binding:"omitempty,oneof=Pending Shipping"`
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validationRequest
		err := c.ShouldBindJSON(&req)
		require.Error(t, err)
		c.JSON(http.StatusBadRequest, FormatValidationErrors(err, "req-1"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test",
		strings.NewReader(`{"email":"nope","name":"toolong","quantity":-1}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"field":"email"`)
	assert.Contains(t, body, "Invalid email format")
	assert.Contains(t, body, `"field":"name"`)
	assert.Contains(t, body, "Must be at most 5 characters")
	assert.Contains(t, body, `"field":"quantity"`)
	assert.Contains(t, body, "ERR_VALIDATION")
	assert.Contains(t, body, "req-1")
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "")
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
	assert.False(t, resp.Success)
}
