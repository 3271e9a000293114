package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{NotFound("task %d not found", 3), KindNotFound},
		{Forbidden("not yours"), KindForbidden},
		{Validation("bad order"), KindValidation},
		{Conflict("zero rows"), KindConflict},
		{Unauthenticated("no token"), KindUnauthenticated},
		{Internal("load task", errors.New("conn reset")), KindInternal},
		{errors.New("plain"), KindInternal},
		{fmt.Errorf("wrapped: %w", Forbidden("x")), KindForbidden},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, KindOf(tc.err), tc.err.Error())
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("op: %w", NotFound("issue 9 not found"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
}

func TestInternalKeepsClassifiedErrors(t *testing.T) {
	orig := Conflict("taken")
	assert.Same(t, orig, Internal("register", orig))
	assert.Nil(t, Internal("noop", nil))

	cause := errors.New("driver: bad connection")
	err := Internal("list tasks", cause)
	assert.ErrorIs(t, err, cause)
}

func TestPublicMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "Internal server error", PublicMessage(Internal("q", errors.New("pq: relation missing"))))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw")))
	assert.Equal(t, "task not found", PublicMessage(NotFound("task not found")))
}
