package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop_backend/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err      error
		wantHTTP int
		wantCode int
	}{
		{fmt.Errorf("order o1: %w", apperr.ErrNotFound), http.StatusNotFound, ErrNotFound},
		{apperr.ErrTooLateToCancel, http.StatusConflict, ErrTooLateToCancel},
		{fmt.Errorf("%w: lock timeout", apperr.ErrConcurrencyConflict), http.StatusConflict, ErrConcurrencyConflict},
		{apperr.ErrReturnAlreadyOpen, http.StatusConflict, ErrReturnAlreadyOpen},
		{apperr.ErrBelowMinimumOrder, http.StatusUnprocessableEntity, ErrBelowMinimumOrder},
		{errors.New("db down"), http.StatusInternalServerError, ErrServerInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			FromError(c, tt.err)

			assert.Equal(t, tt.wantHTTP, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantHTTP == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Message)
			}
		})
	}
}
