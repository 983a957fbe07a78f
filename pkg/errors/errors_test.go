// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code inspection

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "container_not_found",
			code:    errors.ErrContainerNotFound,
			message: "files list not found",
			wantStr: "[CONTAINER_NOT_FOUND] files list not found",
		},
		{
			name:    "invalid_input",
			code:    errors.ErrInvalidInput,
			message: "empty pattern",
			wantStr: "[INVALID_INPUT] empty pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrRuleInvalid, "line %d: %s", 3, "missing )")
	assert.Equal(t, "line 3: missing )", err.Message)
	assert.Equal(t, errors.ErrRuleInvalid, err.Code)
}

func TestWrap(t *testing.T) {
	t.Run("nil_error_stays_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrSettingsLoad, "load"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrSettingsLoad, "load %s", "x"))
	})

	t.Run("wrapped_error_is_reachable", func(t *testing.T) {
		base := stderrors.New("disk full")
		err := errors.Wrapf(base, errors.ErrSettingsSave, "save %s", "settings.toml")

		require.NotNil(t, err)
		assert.Equal(t, "[SETTINGS_SAVE] save settings.toml: disk full", err.Error())
		assert.True(t, stderrors.Is(err, base))
	})
}

func TestCodeInspection(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New(errors.ErrHostWatch, "watch failed").
		WithDetail("path", "/tmp/vault"))

	assert.True(t, errors.IsErrorCode(err, errors.ErrHostWatch))
	assert.False(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Equal(t, errors.ErrHostWatch, errors.GetErrorCode(err))
	assert.Equal(t, "/tmp/vault", errors.GetErrorDetails(err)["path"])

	plain := stderrors.New("plain")
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(plain))
	assert.Nil(t, errors.GetErrorDetails(plain))
}

func TestIsMatchesByCode(t *testing.T) {
	err := errors.Wrap(stderrors.New("boom"), errors.ErrSettingsLoad, "load")
	assert.True(t, stderrors.Is(err, errors.New(errors.ErrSettingsLoad, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrSettingsSave, "")))
}
