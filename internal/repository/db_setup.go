package repository

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    username VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS issues (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users (id),
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users (id),
    issue_id BIGINT REFERENCES issues (id),
    step_number INT CHECK (step_number >= 1),
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT tasks_position_pair CHECK ((issue_id IS NULL) = (step_number IS NULL)),
    CONSTRAINT tasks_issue_step_unique UNIQUE (issue_id, step_number) DEFERRABLE INITIALLY DEFERRED
);

CREATE INDEX IF NOT EXISTS tasks_user_created_idx ON tasks (user_id, created_at);

CREATE TABLE IF NOT EXISTS pomodoro_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users (id),
    task_id BIGINT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
    start_time TIMESTAMPTZ NOT NULL,
    estimated_end_time TIMESTAMPTZ NOT NULL,
    actual_end_time TIMESTAMPTZ NOT NULL,
    duration_minutes INT NOT NULL CHECK (duration_minutes >= 0),
    break_point INT NOT NULL DEFAULT 0 CHECK (break_point >= 0),
    note TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS pomodoro_sessions_user_start_idx ON pomodoro_sessions (user_id, start_time);
`

// Migrate creates every table and index that does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// DropAllTables removes the schema. Used by integration test teardown.
func DropAllTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
    DROP TABLE IF EXISTS pomodoro_sessions;
    DROP TABLE IF EXISTS tasks;
    DROP TABLE IF EXISTS issues;
    DROP TABLE IF EXISTS users;
    `)
	if err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
