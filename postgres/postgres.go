package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GetStream/stream-chat-core/chat"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and ping the DB to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// Close closes the database connection.
func (pg *Postgres) Close() error {
	return pg.bun.Close()
}

// ListMessages returns up to limit messages created before the message with
// id before, newest first. An empty before starts from the latest message.
func (pg *Postgres) ListMessages(ctx context.Context, limit int, before string, excludeMsgIDs ...string) ([]chat.Message, error) {
	var msgs []message
	q := pg.bun.NewSelect().
		Model(&msgs).
		Relation("Attachments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Relation("Reactions").
		Order("message.created_at DESC").
		Limit(limit)

	if before != "" {
		cursor := pg.bun.NewSelect().
			Table("messages").
			Column("created_at").
			Where("id = ?", before)
		q = q.Where("message.created_at < (?)", cursor)
	}
	if len(excludeMsgIDs) > 0 {
		q = q.Where("message.id NOT IN (?)", bun.In(excludeMsgIDs))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]chat.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.ChatMessage()
	}

	return out, nil
}

// InsertMessage inserts a message and its attachments into the database.
// The returned message holds auto generated fields, such as the message id.
// A message with an id that already exists, as happens when a failed message
// is re-sent, overwrites the stored one.
func (pg *Postgres) InsertMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	m := newMessage(msg)
	err := pg.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewInsert().Model(m).Returning("*")
		if m.ID != "" {
			q = q.On("CONFLICT (id) DO UPDATE").
				Set("message_text = EXCLUDED.message_text").
				Set("status = EXCLUDED.status")
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		if len(msg.Attachments) == 0 {
			return nil
		}
		atts := make([]attachment, len(msg.Attachments))
		for i, a := range msg.Attachments {
			atts[i] = attachment{
				ID:           a.ID,
				MessageID:    m.ID,
				ThumbnailURL: a.ThumbnailURL,
				FullURL:      a.FullURL,
				Type:         a.Type.String(),
				Position:     i,
			}
		}
		if _, err := tx.NewInsert().Model(&atts).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("insert attachments: %w", err)
		}
		m.Attachments = atts
		return nil
	})
	if err != nil {
		return chat.Message{}, err
	}

	return m.ChatMessage(), nil
}

// GetMessage returns the message with the given id and its attachments. It
// returns an error wrapping chat.ErrNotFound when there is no such message.
func (pg *Postgres) GetMessage(ctx context.Context, id string) (chat.Message, error) {
	var m message
	err := pg.bun.NewSelect().
		Model(&m).
		Relation("Attachments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("message.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Message{}, fmt.Errorf("message %s: %w", id, chat.ErrNotFound)
	}
	if err != nil {
		return chat.Message{}, fmt.Errorf("scan: %w", err)
	}
	return m.ChatMessage(), nil
}

// InsertReaction inserts a message reaction into the database.
func (pg *Postgres) InsertReaction(ctx context.Context, messageID string, r chat.Reaction) (chat.Reaction, error) {
	rm := &reaction{
		MessageID: messageID,
		UserID:    r.User.ID,
		UserName:  r.User.Name,
		Type:      r.Type.Emoji,
		CreatedAt: r.CreatedAt,
	}
	if _, err := pg.bun.NewInsert().Model(rm).Returning("*").Exec(ctx); err != nil {
		return chat.Reaction{}, fmt.Errorf("insert: %w", err)
	}
	return rm.ChatReaction(), nil
}
