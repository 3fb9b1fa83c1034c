package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlgate/sqlgate/core/shared/errors"
)

func TestNewAppError(t *testing.T) {
	tests := []struct {
		name           string
		code           errors.ErrorCode
		message        string
		err            error
		expectedStatus int
	}{
		{
			name:           "auth failure",
			code:           errors.ErrCodeAuthFailed,
			message:        "invalid or missing API key",
			err:            nil,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "profile not found",
			code:           errors.ErrCodeProfileNotFound,
			message:        "unknown server profile 'x'",
			err:            nil,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "permission denied",
			code:           errors.ErrCodePermissionDenied,
			message:        "profile is READ-ONLY",
			err:            nil,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "invalid input",
			code:           errors.ErrCodeInvalidInput,
			message:        "'sql' is required",
			err:            nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "connection failure",
			code:           errors.ErrCodeConnectionFailed,
			message:        "failed to connect",
			err:            stderrors.New("dial tcp: refused"),
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "internal error",
			code:           errors.ErrCodeInternalError,
			message:        "internal error",
			err:            stderrors.New("underlying error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := errors.NewAppError(tt.code, tt.message, tt.err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Equal(t, tt.expectedStatus, appErr.Status)
			if tt.err != nil {
				assert.Equal(t, tt.err, appErr.Unwrap())
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	plain := errors.NewAppError(errors.ErrCodeProfileNotFound, "unknown server profile 'x'", nil)
	assert.Equal(t, "PROFILE_NOT_FOUND: unknown server profile 'x'", plain.Error())

	wrapped := errors.WrapError(errors.ErrCodeConnectionFailed, "failed to connect", stderrors.New("refused"))
	assert.Contains(t, wrapped.Error(), "CONNECTION_FAILED")
	assert.Contains(t, wrapped.Error(), "refused")
}

func TestHelpers(t *testing.T) {
	notFound := errors.NewAppError(errors.ErrCodeProfileNotFound, "x", nil)
	denied := errors.NewAppError(errors.ErrCodePermissionDenied, "x", nil)
	auth := errors.NewAppError(errors.ErrCodeAuthFailed, "x", nil)

	assert.True(t, errors.IsNotFound(notFound))
	assert.False(t, errors.IsNotFound(denied))
	assert.False(t, errors.IsNotFound(stderrors.New("plain")))

	assert.True(t, errors.IsPermissionDenied(denied))
	assert.False(t, errors.IsPermissionDenied(auth))

	assert.True(t, errors.IsAuthFailed(auth))
	assert.False(t, errors.IsAuthFailed(notFound))
}
