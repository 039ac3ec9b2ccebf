package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/port"
)

const (
	recordListKey  = "records:list"
	draftKeyPrefix = "draft:"
)

// RedisAdapter caches the rendered record list and holds draft sessions.
type RedisAdapter struct {
	client   *redis.Client
	listTTL  time.Duration
	draftTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, listTTL, draftTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, listTTL: listTTL, draftTTL: draftTTL}
}

func (r *RedisAdapter) GetRecordList(ctx context.Context) ([]domain.Record, bool, error) {
	data, err := r.client.Get(ctx, recordListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("decode cached list: %w", err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, true, nil
}

func (r *RedisAdapter) SetRecordList(ctx context.Context, records []domain.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, recordListKey, data, r.listTTL).Err()
}

func (r *RedisAdapter) InvalidateRecordList(ctx context.Context) error {
	return r.client.Del(ctx, recordListKey).Err()
}

// LoadDraft refreshes the session TTL on every read.
func (r *RedisAdapter) LoadDraft(ctx context.Context, sessionID string) (*domain.Draft, error) {
	data, err := r.client.GetEx(ctx, draftKeyPrefix+sessionID, r.draftTTL).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (r *RedisAdapter) SaveDraft(ctx context.Context, sessionID string, draft domain.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, draftKeyPrefix+sessionID, data, r.draftTTL).Err()
}

func (r *RedisAdapter) DeleteDraft(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, draftKeyPrefix+sessionID).Err()
}
