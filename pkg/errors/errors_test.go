package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := New(CodeNovelNotFound, "novel not found")
	assert.Equal(t, "[3001] novel not found", err.Error())

	wrapped := Wrap(fmt.Errorf("record not found"), CodeDatabaseError, "query failed")
	assert.Equal(t, "[5001] query failed: record not found", wrapped.Error())
}

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeWorldNotInitialized, http.StatusBadRequest},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeBadCredentials, http.StatusUnauthorized},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeNovelNotFound, http.StatusNotFound},
		{CodeUserExists, http.StatusConflict},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeGenerationFailed, http.StatusInternalServerError},
		{CodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, New(tt.code, "x").HTTPStatus)
		})
	}
}

func TestWithDetailCopyOnWrite(t *testing.T) {
	detailed := ErrNovelNotFound.WithDetail("novel_id=n-1")

	assert.Equal(t, "novel_id=n-1", detailed.Detail)
	assert.Equal(t, ErrNovelNotFound.Code, detailed.Code)
	// 预定义错误不能被污染
	assert.Empty(t, ErrNovelNotFound.Detail)
}

func TestWithErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := ErrServiceUnavailable.WithError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, ErrServiceUnavailable.Err)
}

func TestAsAppError(t *testing.T) {
	t.Run("passthrough", func(t *testing.T) {
		appErr := AsAppError(ErrNoPermission)
		assert.Same(t, ErrNoPermission, appErr)
	})

	t.Run("wraps plain error", func(t *testing.T) {
		cause := stderrors.New("boom")
		appErr := AsAppError(cause)
		require.NotNil(t, appErr)
		assert.Equal(t, CodeUnknown, appErr.Code)
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
		assert.ErrorIs(t, appErr, cause)
	})
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrConflict))
	assert.False(t, IsAppError(stderrors.New("plain")))
}
