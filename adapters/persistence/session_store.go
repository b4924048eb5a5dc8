package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

// ---- revoked tokens

type redisTokenDenylist struct {
	rdb *redis.Client
}

func NewRedisTokenDenylist(rdb *redis.Client) service.TokenRevoker {
	return &redisTokenDenylist{rdb: rdb}
}

func revokedKey(tokenID string) string { return "auth:revoked:" + tokenID }

func (d *redisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return apperror.NewInternal("failed to revoke token", err)
	}
	return nil
}

func (d *redisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, apperror.NewInternal("failed to check revoked token", err)
	}
	return n > 0, nil
}

// ---- session change notifications

type redisSessionNotifier struct {
	rdb    *redis.Client
	logger logger.Logger
}

func NewRedisSessionNotifier(rdb *redis.Client, log logger.Logger) service.SessionNotifier {
	return &redisSessionNotifier{rdb: rdb, logger: log}
}

func sessionChannel(userID uuid.UUID) string { return "auth:session:" + userID.String() }

func (n *redisSessionNotifier) Publish(ctx context.Context, e service.SessionEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to marshal session event", err)
	}
	if err := n.rdb.Publish(ctx, sessionChannel(e.UserID), payload).Err(); err != nil {
		return apperror.NewInternal("failed to publish session event", err)
	}
	return nil
}

func (n *redisSessionNotifier) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan service.SessionEvent, error) {
	pubsub := n.rdb.Subscribe(ctx, sessionChannel(userID))
	// Wait for the subscription to be confirmed so no event published after return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, apperror.NewInternal("failed to subscribe to session events", err)
	}

	out := make(chan service.SessionEvent, 8)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e service.SessionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					n.logger.Warn("Dropping malformed session event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
