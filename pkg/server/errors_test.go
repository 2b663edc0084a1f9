package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrorf(t *testing.T) {
	orig := errors.New("budget must be > 0 minutes")
	err := WrapErrorf(orig, ErrBadParamInput, "invalid isochrone query for %s", "warung-1")

	assert.Equal(t, "invalid isochrone query for warung-1: budget must be > 0 minutes", err.Error())
	assert.ErrorIs(t, err, orig)
	assert.Equal(t, ErrBadParamInput, Code(err))
	assert.Equal(t, ErrBadParamInput, Code(fmt.Errorf("handler: %w", err)))

	var serr *Error
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, "invalid isochrone query for warung-1", serr.Message())

	assert.Equal(t, ErrUnknown, Code(orig))
	assert.Equal(t, "not found", NewErrorf(ErrNotFound, "not found").Error())
}
