package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/GetStream/stream-chat-core/chat"
	"github.com/redis/go-redis/v9"
)

// Redis provides caching in Redis.
type Redis struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working.
func Connect(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli: cli,
	}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.cli.Close()
}

const (
	messagePrefix = "messages"
	maxSize       = 10
)

func messageKey(id string) string {
	return fmt.Sprintf("%s:%s", messagePrefix, id)
}

func reactionsKey(msgID string) string {
	return fmt.Sprintf("%s:%s:reactions", messagePrefix, msgID)
}

// ListMessages returns the cached messages sorted by creation time in
// descending order.
func (r *Redis) ListMessages(ctx context.Context) ([]chat.Message, error) {
	vals, err := r.cli.ZRevRangeByScore(ctx, messagePrefix, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", time.Now().UnixNano()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange: %w", err)
	}

	out := make([]chat.Message, 0, len(vals))
	for _, key := range vals {
		var msg message
		err = r.cli.HGetAll(ctx, key).Scan(&msg)
		if err != nil {
			return nil, fmt.Errorf("hgetall: %w", err)
		}
		if msg.ID == "" {
			// Evicted between the range and the read.
			continue
		}

		reactions, err := r.listReactions(ctx, msg.ID)
		if err != nil {
			return nil, fmt.Errorf("list reactions: %w", err)
		}
		msg.Reactions = reactions

		m, err := msg.ChatMessage()
		if err != nil {
			return nil, fmt.Errorf("decode message %s: %w", msg.ID, err)
		}
		out = append(out, m)
	}

	return out, nil
}

// InsertMessage adds the message to Redis with the messages:MESSAGE_ID as the
// key and adds the key to a sorted set.
func (r *Redis) InsertMessage(ctx context.Context, msg chat.Message) error {
	m, err := newMessage(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	key := messageKey(m.ID)
	err = r.cli.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, m)
			pipe.ZAdd(ctx, messagePrefix, redis.Z{
				Score:  float64(msg.CreatedAt.UnixNano()),
				Member: key,
			})
			return nil
		})
		return err
	}, key)

	if err != nil {
		return fmt.Errorf("redis insert message: %w", err)
	}

	// Simulate an eviction strategy by removing the oldest key in case the max cache size is exceeded.
	err = r.evictOldest(ctx)
	if err != nil {
		return fmt.Errorf("evict oldest: %w", err)
	}
	return nil
}

// listReactions fetches the reactions of a message, oldest first.
func (r *Redis) listReactions(ctx context.Context, msgID string) ([]reaction, error) {
	vals, err := r.cli.ZRangeByScore(ctx, reactionsKey(msgID), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange: %w", err)
	}

	out := make([]reaction, 0, len(vals))
	for _, key := range vals {
		var rc reaction
		err := r.cli.HGetAll(ctx, key).Scan(&rc)
		if err != nil {
			return nil, fmt.Errorf("hgetall: %w", err)
		}
		out = append(out, rc)
	}

	return out, nil
}

// InsertReaction adds a reaction to the specified message in Redis identified by msgID.
// Reactions on messages that are not cached are ignored.
func (r *Redis) InsertReaction(ctx context.Context, msgID string, mr chat.Reaction) error {
	n, err := r.cli.Exists(ctx, messageKey(msgID)).Result()
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if n == 0 {
		return nil
	}

	rc := &reaction{
		ID:        mr.ID,
		MessageID: msgID,
		UserID:    mr.User.ID,
		UserName:  mr.User.Name,
		Type:      mr.Type.Emoji,
		CreatedAt: mr.CreatedAt,
	}

	setKey := reactionsKey(msgID)
	key := fmt.Sprintf("%s:%s", setKey, mr.ID)
	err = r.cli.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, rc)
			pipe.ZAdd(ctx, setKey, redis.Z{
				Score:  float64(mr.CreatedAt.UnixNano()),
				Member: key,
			})
			return nil
		})

		return err
	}, key)

	if err != nil {
		return fmt.Errorf("could not insert reaction: %w", err)
	}

	return nil
}

func (r *Redis) evictOldest(ctx context.Context) error {
	vals, err := r.cli.ZRange(ctx, messagePrefix, 0, int64(-maxSize-1)).Result()
	if err != nil {
		return fmt.Errorf("zrange: %w", err)
	}

	for _, key := range vals {
		reactions, _ := r.cli.ZRange(ctx, key+":reactions", 0, -1).Result()
		_ = r.cli.ZRem(ctx, messagePrefix, key).Err()
		_ = r.cli.Del(ctx, key).Err()
		_ = r.cli.Del(ctx, key+":reactions").Err()
		for _, rk := range reactions {
			_ = r.cli.Del(ctx, rk).Err()
		}
	}

	return nil
}
