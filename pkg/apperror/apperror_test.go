package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := NotFound("feature", 7)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "no such feature with id = 7", err.Error())
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("insert pattern: %w", Validation("%s is a required field", "title"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestStorageWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage(cause)

	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindStorage, KindOf(err))

	dup := DuplicateName("taken")
	assert.Same(t, error(dup), Storage(dup))
	assert.Nil(t, Storage(nil))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindStorage, KindOf(errors.New("boom")))
}
