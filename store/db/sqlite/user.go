package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hrygo/switchboard/store"
)

func (d *DB) UpsertUser(ctx context.Context, upsert *store.User) (*store.User, error) {
	stmt := `INSERT INTO users (username, password_hash, created_ts)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash
		RETURNING created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, upsert.Username, upsert.PasswordHash, upsert.CreatedTs).Scan(&upsert.CreatedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return upsert, nil
}

func (d *DB) GetUser(ctx context.Context, find *store.FindUser) (*store.User, error) {
	if find.Username == nil {
		return nil, errors.New("username is required")
	}

	user := &store.User{}
	err := d.db.QueryRowContext(ctx,
		`SELECT username, password_hash, created_ts FROM users WHERE username = ?`,
		*find.Username,
	).Scan(&user.Username, &user.PasswordHash, &user.CreatedTs)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
