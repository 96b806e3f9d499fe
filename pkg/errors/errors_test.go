package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/waajacu/minerals/pkg/errors"
)

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("mineral", "record.quartz.0xabc")
		assert.Equal(t, "mineral record.quartz.0xabc not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("custom message", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "draft", ID: "ab", Message: "draft session not found"}
		assert.Equal(t, "draft session not found", err.Error())
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("publish: %w", pkgerrors.NewNotFoundError("draft", "x"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("common_name", "", "'common_name' is required")
		assert.Equal(t, "validation failed for field common_name: 'common_name' is required", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "bad form"}
		assert.Equal(t, "validation failed: bad form", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	err := pkgerrors.NewAPIError("openai", 429, "slow down")
	assert.Contains(t, err.Error(), "openai")
	assert.Contains(t, err.Error(), "429")
	assert.True(t, errors.Is(err, pkgerrors.ErrRateLimited))
	assert.True(t, pkgerrors.IsProviderUnavailable(err))

	base := errors.New("connection reset")
	wrapped := pkgerrors.WrapAPI("gemini", 0, base)
	assert.ErrorIs(t, wrapped, base)
	assert.True(t, pkgerrors.IsProviderUnavailable(wrapped))
}

func TestTimeoutError(t *testing.T) {
	err := pkgerrors.NewTimeoutError("translate", "20s", "deadline exceeded")
	assert.Contains(t, err.Error(), "20s")
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.True(t, pkgerrors.IsProviderUnavailable(err))
}

func TestInternalError(t *testing.T) {
	err := pkgerrors.NewInternalError("allocate", "identifier retries exhausted", nil)
	assert.True(t, pkgerrors.IsInternal(err))
	assert.False(t, pkgerrors.IsValidationError(err))
}

func TestUnauthorizedError(t *testing.T) {
	assert.Equal(t, "unauthorized", pkgerrors.NewUnauthorizedError("").Error())
	assert.True(t, pkgerrors.IsUnauthorized(pkgerrors.NewUnauthorizedError("invalid password")))
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("write", "/tmp/x", nil))
	assert.NoError(t, pkgerrors.WrapParse("json", "a.json", nil))
	assert.NoError(t, pkgerrors.WrapValidation("f", nil))
	assert.NoError(t, pkgerrors.WrapAPI("p", 0, nil))

	base := errors.New("disk full")
	err := pkgerrors.WrapIO("write", "/data/x", base)
	var ioErr *pkgerrors.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "/data/x", ioErr.Path)
	assert.ErrorIs(t, err, base)

	perr := pkgerrors.WrapParse("json", "record.json", base)
	var parseErr *pkgerrors.ParseError
	assert.True(t, errors.As(perr, &parseErr))
	assert.Equal(t, "record.json", parseErr.File)
}
