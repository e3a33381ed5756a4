package database

import (
	"context"

	"github.com/google/uuid"
)

const getUserByUsername = `
SELECT id, username, hashed_password, role, full_name, is_active, created_at
FROM users
WHERE username = $1 AND is_active = TRUE
`

// GetUserByUsername returns an active user by username. Inactive users are
// invisible to this query so their credentials stop working.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByUsername, username)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.FullName, &u.IsActive, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, username, hashed_password, role, full_name, is_active, created_at
FROM users
WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.FullName, &u.IsActive, &u.CreatedAt)
	return u, err
}

const listUsers = `
SELECT id, username, hashed_password, role, full_name, is_active, created_at
FROM users
ORDER BY username
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.FullName, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countUsers).Scan(&n)
	return n, err
}

const createUser = `
INSERT INTO users (username, hashed_password, role, full_name)
VALUES ($1, $2, $3, $4)
RETURNING id, username, hashed_password, role, full_name, is_active, created_at
`

type CreateUserParams struct {
	Username       string
	HashedPassword string
	Role           string
	FullName       string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Username, arg.HashedPassword, arg.Role, arg.FullName)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.FullName, &u.IsActive, &u.CreatedAt)
	return u, err
}

const updateUser = `
UPDATE users
SET full_name = $1, role = $2
WHERE id = $3 AND is_active = TRUE
RETURNING id, username, hashed_password, role, full_name, is_active, created_at
`

type UpdateUserParams struct {
	FullName string
	Role     string
	ID       uuid.UUID
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUser, arg.FullName, arg.Role, arg.ID)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.FullName, &u.IsActive, &u.CreatedAt)
	return u, err
}

const deactivateUser = `
UPDATE users
SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

// DeactivateUser soft-deletes a user. Rows are never hard-deleted because
// orders keep waiter/cashier references.
func (q *Queries) DeactivateUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, deactivateUser, id).Scan(&out)
	return out, err
}
