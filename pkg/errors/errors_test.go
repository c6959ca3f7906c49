package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/waypoint/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("handler", "missing")
		assert.Equal(t, `handler "missing" not found`, err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("template", "layout/layout")
		wrapped := fmt.Errorf("resolve: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestInvalidServiceError(t *testing.T) {
	err := pkgerrors.NewInvalidServiceError("broken", struct{}{}, "Handler")
	assert.Contains(t, err.Error(), `"broken"`)
	assert.Contains(t, err.Error(), "struct {}")
	assert.True(t, pkgerrors.IsInvalidService(err))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestHandlerError(t *testing.T) {
	t.Run("wrapped error", func(t *testing.T) {
		base := errors.New("boom")
		err := pkgerrors.NewHandlerError("home", base)
		assert.Equal(t, "handler home failed: boom", err.Error())
		assert.ErrorIs(t, err, base)
	})

	t.Run("panic with string", func(t *testing.T) {
		err := pkgerrors.NewPanicError("home", "kaboom")
		assert.Equal(t, "handler home panicked: kaboom", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("panic with error", func(t *testing.T) {
		base := errors.New("nil map")
		err := pkgerrors.NewPanicError("home", base)
		assert.ErrorIs(t, err, base)
	})
}

func TestTransitionError(t *testing.T) {
	err := pkgerrors.NewTransitionError("erroring", "erroring")
	assert.True(t, pkgerrors.IsIllegalTransition(err))

	var te *pkgerrors.TransitionError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &te))
	assert.Equal(t, "erroring", te.From)
}

func TestRenderError(t *testing.T) {
	base := errors.New("no template")
	err := pkgerrors.NewRenderError("template", "index", base)
	assert.Contains(t, err.Error(), `"index"`)
	assert.True(t, pkgerrors.IsRenderError(err))
	assert.ErrorIs(t, err, base)

	noTemplate := pkgerrors.NewRenderError("json", "", base)
	assert.Equal(t, "render error in json: no template", noTemplate.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Field: "port", Message: "must be positive"}
		assert.Equal(t, "validation failed for field port: must be positive", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
	})
}

func TestConfigError(t *testing.T) {
	base := errors.New("file missing")
	err := pkgerrors.NewConfigError("view_manager", "cannot load", base)
	assert.Equal(t, "configuration error in view_manager: cannot load", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("send", "", nil))
	assert.Nil(t, pkgerrors.WrapParse("yaml", "routes.yaml", nil))
	assert.Nil(t, pkgerrors.WrapRender("json", "", nil))
	assert.Nil(t, pkgerrors.WrapValidation("port", nil))

	base := errors.New("broken pipe")
	err := pkgerrors.WrapIO("send", "body", base)
	var ioErr *pkgerrors.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "send", ioErr.Operation)
	assert.Equal(t, "IO error during send of body: broken pipe", err.Error())

	err = pkgerrors.WrapParse("yaml", "routes.yaml", base)
	assert.Contains(t, err.Error(), "routes.yaml")

	err = pkgerrors.WrapValidation("host", base)
	assert.True(t, pkgerrors.IsValidationError(err))
}
