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

type currencyRequest struct {
	Currency string `json:"currency" binding:"required,currency3"`
	Note     string `json:"note" binding:"max=5"`
}

func TestSetupValidator(t *testing.T) {
	require.NoError(t, SetupValidator())

	engine := gin.New()
	engine.POST("/", func(c *gin.Context) {
		var req currencyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name    string
		body    string
		status  int
		field   string
		message string
	}{
		{"valid", `{"currency":"EUR"}`, http.StatusOK, "", ""},
		{"lower case is accepted", `{"currency":"sar"}`, http.StatusOK, "", ""},
		{"unknown code", `{"currency":"XYZ"}`, http.StatusBadRequest, "currency", "Must be a three letter currency code"},
		{"missing", `{}`, http.StatusBadRequest, "currency", "This field is required"},
		{"too long note", `{"currency":"USD","note":"abcdefg"}`, http.StatusBadRequest, "note", "Must be at most 5 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, w.Code)
			if tt.field != "" {
				assert.Contains(t, w.Body.String(), `"field":"`+tt.field+`"`)
				assert.Contains(t, w.Body.String(), tt.message)
			}
		})
	}
}
