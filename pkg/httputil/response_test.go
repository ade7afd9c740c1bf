package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/careloop/emr-gateway/pkg/errors"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, err)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestRespondWithError_AppError(t *testing.T) {
	w, resp := respond(t, apperrors.NotFound("patient", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "patient not found", resp.Error.Message)
}

func TestRespondWithError_WrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("failed to create mock encounter: %w", apperrors.NotFound("patient", nil))

	w, resp := respond(t, wrapped)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "patient not found", resp.Error.Message)
}

func TestRespondWithError_Unknown(t *testing.T) {
	w, resp := respond(t, fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal server error", resp.Error.Message)
}
