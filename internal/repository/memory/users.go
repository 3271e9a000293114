package memory

import (
	"context"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (int64, error) {
	return s.mutate("CreateUser", func(d *data) (int64, error) {
		for _, u := range d.users {
			if u.Email == email || u.Username == username {
				return 0, repository.ErrDuplicate
			}
		}
		id := d.id()
		d.users[id] = models.User{
			ID:           id,
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
			CreatedAt:    s.now(),
		}
		return id, nil
	})
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var out *models.User
	err := s.read("GetUser", func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := s.read("GetUserByEmail", func(d *data) error {
		for _, u := range d.users {
			if u.Email == email {
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.read("EmailExists", func(d *data) error {
		for _, u := range d.users {
			if u.Email == email {
				exists = true
			}
		}
		return nil
	})
	return exists, err
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.read("UsernameExists", func(d *data) error {
		for _, u := range d.users {
			if u.Username == username {
				exists = true
			}
		}
		return nil
	})
	return exists, err
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) (int64, error) {
	return s.mutate("UpdatePassword", func(d *data) (int64, error) {
		u, ok := d.users[id]
		if !ok {
			return 0, nil
		}
		u.PasswordHash = passwordHash
		d.users[id] = u
		return 1, nil
	})
}
