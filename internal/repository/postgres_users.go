package repository

import (
	"context"

	"tasktracker/internal/models"
)

func (p *Postgres) CreateUser(ctx context.Context, email, username, passwordHash string) (int64, error) {
	return p.insertID(ctx,
		"INSERT INTO users (email, username, password) VALUES ($1, $2, $3) RETURNING id",
		email, username, passwordHash)
}

func (p *Postgres) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return p.getUser(ctx, "SELECT id, email, username, password, created_at FROM users WHERE id = $1", id)
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return p.getUser(ctx, "SELECT id, email, username, password, created_at FROM users WHERE email = $1", email)
}

func (p *Postgres) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := p.q.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (p *Postgres) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := p.q.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

func (p *Postgres) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := p.q.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	return exists, err
}

func (p *Postgres) UpdatePassword(ctx context.Context, id int64, passwordHash string) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx, "UPDATE users SET password = $1 WHERE id = $2", passwordHash, id))
}
