package service

import (
	"context"
	"errors"

	"tasktracker/internal/apperror"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type LoginResult struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

// Register creates an account. Email and username must both be unused.
func (s *Service) Register(ctx context.Context, email, username, password string) (int64, error) {
	taken, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return 0, apperror.Internal("check email", err)
	}
	if taken {
		return 0, apperror.Conflict("email is already registered")
	}
	if taken, err = s.store.UsernameExists(ctx, username); err != nil {
		return 0, apperror.Internal("check username", err)
	}
	if taken {
		return 0, apperror.Conflict("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return 0, apperror.Internal("hash password", err)
	}
	id, err := s.store.CreateUser(ctx, email, username, string(hash))
	if errors.Is(err, repository.ErrDuplicate) {
		return 0, apperror.Conflict("email or username is already in use")
	}
	if err != nil {
		return 0, apperror.Internal("create user", err)
	}
	return id, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, apperror.Internal("get user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	tok, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal("issue token", err)
	}
	return &LoginResult{UserID: user.ID, Token: tok}, nil
}

func (s *Service) Me(ctx context.Context, principal int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, principal)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("user %d not found", principal)
	}
	if err != nil {
		return nil, apperror.Internal("get user", err)
	}
	return user, nil
}

// ChangePassword replaces the password and returns a fresh token.
func (s *Service) ChangePassword(ctx context.Context, principal int64, oldPassword, newPassword string) (string, error) {
	user, err := s.Me(ctx, principal)
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return "", apperror.Unauthenticated("old password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return "", apperror.Internal("hash password", err)
	}
	n, err := s.store.UpdatePassword(ctx, principal, string(hash))
	if err := affected("update password", n, err); err != nil {
		return "", err
	}
	tok, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", apperror.Internal("issue token", err)
	}
	return tok, nil
}
