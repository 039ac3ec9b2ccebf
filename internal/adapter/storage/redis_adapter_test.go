package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/port"
)

var (
	_ port.CacheRepository = (*RedisAdapter)(nil)
	_ port.DraftRepository = (*RedisAdapter)(nil)
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRecordList_MissThenHit(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, time.Minute)

	// Setup
	client.Del(ctx, recordListKey)

	_, ok, err := adapter.GetRecordList(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected cache miss")
	}

	records := []domain.Record{
		{ID: 2, Name: "Bag", Stock: decimal.NewFromInt(5), Price: decimal.RequireFromString("80000.50")},
		{ID: 1, Name: "Chair", Stock: decimal.NewFromInt(10), Price: decimal.NewFromInt(150000)},
	}
	if err := adapter.SetRecordList(ctx, records); err != nil {
		t.Fatalf("SetRecordList failed: %v", err)
	}

	got, ok, err := adapter.GetRecordList(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || len(got) != 2 {
		t.Fatalf("expected 2 cached records, got %v (hit=%v)", got, ok)
	}
	if got[0].Name != "Bag" || !got[0].Price.Equal(decimal.RequireFromString("80000.5")) {
		t.Errorf("unexpected first record: %+v", got[0])
	}

	ttl := client.TTL(ctx, recordListKey).Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl within a minute, got %v", ttl)
	}
}

func TestRecordList_EmptyIsAHit(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, time.Minute)

	if err := adapter.SetRecordList(ctx, []domain.Record{}); err != nil {
		t.Fatalf("SetRecordList failed: %v", err)
	}

	got, ok, err := adapter.GetRecordList(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil hit, got %v (hit=%v)", got, ok)
	}
}

func TestRecordList_Invalidate(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, time.Minute)

	adapter.SetRecordList(ctx, []domain.Record{{ID: 1, Name: "Chair"}})

	if err := adapter.InvalidateRecordList(ctx); err != nil {
		t.Fatalf("InvalidateRecordList failed: %v", err)
	}

	_, ok, err := adapter.GetRecordList(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected cache miss after invalidation")
	}
}

func TestDraft_SaveLoadDelete(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, time.Hour)
	sessionID := "test-session"

	// Setup
	client.Del(ctx, draftKeyPrefix+sessionID)

	if _, err := adapter.LoadDraft(ctx, sessionID); !errors.Is(err, port.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got: %v", err)
	}

	draft := domain.Draft{
		Mode:     domain.DraftModeUpdate,
		Fields:   domain.Fields{Name: "Chair", Stock: "3", Price: "150000"},
		TargetID: 1,
	}
	if err := adapter.SaveDraft(ctx, sessionID, draft); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	// shorten the ttl so the refresh on load is observable
	client.Expire(ctx, draftKeyPrefix+sessionID, time.Minute)

	got, err := adapter.LoadDraft(ctx, sessionID)
	if err != nil {
		t.Fatalf("LoadDraft failed: %v", err)
	}
	if *got != draft {
		t.Errorf("expected %+v, got %+v", draft, *got)
	}
	if ttl := client.TTL(ctx, draftKeyPrefix+sessionID).Val(); ttl <= time.Minute {
		t.Errorf("expected ttl refreshed to about an hour, got %v", ttl)
	}

	if err := adapter.DeleteDraft(ctx, sessionID); err != nil {
		t.Fatalf("DeleteDraft failed: %v", err)
	}
	if _, err := adapter.LoadDraft(ctx, sessionID); !errors.Is(err, port.ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound after delete, got: %v", err)
	}
}
