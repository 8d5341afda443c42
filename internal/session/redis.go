package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/models"

	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

// RedisStore keeps sessions as expiring JSON values. Update runs under WATCH so
// concurrent requests for one session never interleave.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	now       Clock
	logger    logger.Logger
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration, now Clock, log logger.Logger) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		now:       now,
		logger:    log.WithFields(map[string]interface{}{"store": "redis"}),
	}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(val)
}

func (s *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error) {
	key := s.key(id)

	var (
		result *models.Session
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		sess, err := s.read(ctx, tx, id, key)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			fnErr = err
			return err
		}
		sess.UpdateActivity(s.now())

		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = sess
		return nil
	}

	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if fnErr != nil {
			return nil, fnErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("session update raced, retrying", map[string]interface{}{
				"sessionId": id,
				"attempt":   attempt,
			})
			continue
		}
		return nil, fmt.Errorf("redis update: %w", err)
	}
	return nil, ErrConflict
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) read(ctx context.Context, tx *redis.Tx, id, key string) (*models.Session, error) {
	val, err := tx.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return models.NewSession(id, s.now()), nil
	}
	if err != nil {
		return nil, err
	}
	return decode(val)
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

func decode(data []byte) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
