package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/projectshelf/internal/domain/editor"
	"github.com/khoahotran/projectshelf/pkg/apperror"
)

// redisEditorSessionRepo keeps open editor sessions as JSON with a sliding TTL; every save
// extends the session's life.
type redisEditorSessionRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisEditorSessionRepo(rdb *redis.Client, ttl time.Duration) editor.Repository {
	return &redisEditorSessionRepo{rdb: rdb, ttl: ttl}
}

func editorSessionKey(ownerID, id uuid.UUID) string {
	return fmt.Sprintf("editor:session:%s:%s", ownerID, id)
}

func (r *redisEditorSessionRepo) Save(ctx context.Context, s *editor.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return apperror.NewInternal("failed to marshal editor session", err)
	}
	if err := r.rdb.Set(ctx, editorSessionKey(s.OwnerID, s.ID), data, r.ttl).Err(); err != nil {
		return apperror.NewInternal("failed to save editor session", err)
	}
	return nil
}

func (r *redisEditorSessionRepo) Find(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*editor.Session, error) {
	data, err := r.rdb.Get(ctx, editorSessionKey(ownerID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperror.NewNotFound("editor session", id.String())
		}
		return nil, apperror.NewInternal("failed to load editor session", err)
	}

	var s editor.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperror.NewInternal("failed to decode editor session", err)
	}
	return &s, nil
}

func (r *redisEditorSessionRepo) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	n, err := r.rdb.Del(ctx, editorSessionKey(ownerID, id)).Result()
	if err != nil {
		return apperror.NewInternal("failed to delete editor session", err)
	}
	if n == 0 {
		return apperror.NewNotFound("editor session", id.String())
	}
	return nil
}
