package service

import (
	"context"
	"testing"

	"tasktracker/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice")

	_, err := f.svc.Register(ctx, "alice@example.com", "someone", "password123")
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, apperror.PublicMessage(err), "email")

	_, err = f.svc.Register(ctx, "new@example.com", "alice", "password123")
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, apperror.PublicMessage(err), "username")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.user(t, "alice")

	res, err := f.svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, id, res.UserID)

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = f.svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	_, err = f.svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.user(t, "alice")

	_, err := f.svc.ChangePassword(ctx, id, "wrong", "newpassword")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	tok, err := f.svc.ChangePassword(ctx, id, "password123", "newpassword")
	require.NoError(t, err)
	_, err = f.tokens.Verify(tok)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "alice@example.com", "password123")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	_, err = f.svc.Login(ctx, "alice@example.com", "newpassword")
	assert.NoError(t, err)
}

func TestMeHidesNothingButHash(t *testing.T) {
	f := newFixture(t)
	id := f.user(t, "alice")

	me, err := f.svc.Me(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	_, err = f.svc.Me(context.Background(), 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
