package db

import (
	"context"
	"errors"
	"fmt"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, clerk_user_id, email, name, image_url, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.ClerkUserID, &u.Email, &u.Name, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &u, nil
}

// UpsertUser inserts the user on first sight of its identity subject and
// refreshes the profile fields afterwards.
func (q *Queries) UpsertUser(ctx context.Context, u *models.User) (*models.User, error) {
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, clerk_user_id, email, name, image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (clerk_user_id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    image_url = EXCLUDED.image_url,
		    updated_at = NOW()
		RETURNING ` + userColumns
	return scanUser(q.db.QueryRow(ctx, query, id, u.ClerkUserID, u.Email, u.Name, u.ImageURL))
}

func (q *Queries) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.db.QueryRow(ctx, query, userID))
}
