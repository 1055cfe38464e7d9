package apperror

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := New(ErrLookup, "category", "unknown season label %q", "Monsoon")

	assert.True(t, errors.Is(err, ErrLookup))
	assert.False(t, errors.Is(err, ErrType))
	assert.Equal(t, `[category] unknown season label "Monsoon"`, err.Error())
	assert.True(t, IsUserError(err))
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrNotFound, "dataset", os.ErrNotExist, "open %s", "hour.csv")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "[dataset] open hour.csv")
	assert.False(t, IsUserError(err))
}

func TestKindSurvivesFmtWrapping(t *testing.T) {
	inner := New(ErrMissingColumn, "filter", "column %q not found", "temp")
	outer := fmt.Errorf("usage heatmap: %w", inner)

	assert.True(t, errors.Is(outer, ErrMissingColumn))

	var appErr *Error
	assert.True(t, errors.As(outer, &appErr))
	assert.Equal(t, "filter", appErr.Module)
}
