package ordering

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	assert.Equal(t, "validation: a; b", ValidationError("a", "b").Error())
	assert.Equal(t, "not_found: Order with id x not found", NotFoundError("Order with id x not found").Error())
	assert.Equal(t, "database: boom", DatabaseError(errors.New("boom")).Error())
	assert.Equal(t, "internal: lost: gone", InternalError("lost", errors.New("gone")).Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ValidationError("bad"))
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.False(t, IsValidation(nil))

	cause := errors.New("io")
	assert.ErrorIs(t, DatabaseError(cause), cause)
}
