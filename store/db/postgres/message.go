package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/switchboard/store"
)

func (d *DB) CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error) {
	fields := []string{"username", "role", "content", "created_ts"}
	args := []any{create.Username, create.Role, create.Content, create.CreatedTs}

	stmt := `INSERT INTO messages (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return create, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.Username != nil {
		where, args = append(where, "username = "+placeholder(len(args)+1)), append(args, *find.Username)
	}

	query := `SELECT id, username, role, content, created_ts FROM messages WHERE ` + strings.Join(where, " AND ")
	if find.Limit > 0 {
		// Newest first, then flipped back below.
		query += ` ORDER BY id DESC LIMIT ` + placeholder(len(args)+1)
		args = append(args, find.Limit)
	} else {
		query += ` ORDER BY id ASC`
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Message, 0)
	for rows.Next() {
		m := &store.Message{}
		if err := rows.Scan(&m.ID, &m.Username, &m.Role, &m.Content, &m.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	if find.Limit > 0 {
		store.ReverseMessages(list)
	}
	return list, nil
}
