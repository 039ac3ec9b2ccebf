package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-records/internal/adapter/storage"
	"github.com/rl1809/inventory-records/internal/migration"
)

type testEnv struct {
	redis   *redis.Client
	mysql   *sql.DB
	cache   *storage.RedisAdapter
	db      *storage.MySQLAdapter
	cleanup func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/inventory"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	db, err := storage.OpenMySQL(ctx, mysqlDSN)
	if err != nil {
		rdb.Close()
		t.Skipf("MySQL not available: %v", err)
	}
	if err := (&migration.Migrate{DB: db, Dialect: "mysql"}).MigrateUp(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return &testEnv{
		redis: rdb,
		mysql: db,
		cache: storage.NewRedisAdapter(rdb, time.Minute, time.Minute),
		db:    storage.NewMySQLAdapter(db),
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func TestIntegration_CachedListTracksWrites(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()

	// Setup: Clean table and cache
	env.mysql.ExecContext(ctx, `DELETE FROM records WHERE name LIKE 'it-%'`)
	env.cache.InvalidateRecordList(ctx)

	svc := NewRecordService(env.db, WithCache(env.cache))

	chair, err := svc.Insert(ctx, fields("it-Chair", "10", "150000"))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	bag, err := svc.Insert(ctx, fields("it-Bag", "5", "80000"))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Warm the cache
	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if n, _ := env.redis.Exists(ctx, "records:list").Result(); n != 1 {
		t.Error("expected list to be cached")
	}

	if err := svc.Update(ctx, chair, fields("it-Chair", "3", "150000")); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if n, _ := env.redis.Exists(ctx, "records:list").Result(); n != 0 {
		t.Error("expected cache to be invalidated after update")
	}

	if err := svc.Delete(ctx, bag); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var found bool
	for _, r := range records {
		if r.ID == bag {
			t.Errorf("deleted record %d still listed", bag)
		}
		if r.ID == chair {
			found = true
			if r.Stock.String() != "3" {
				t.Errorf("expected stock 3, got %s", r.Stock)
			}
		}
	}
	if !found {
		t.Errorf("record %d missing from list", chair)
	}

	// Cleanup
	env.mysql.ExecContext(ctx, `DELETE FROM records WHERE name LIKE 'it-%'`)
}

func TestIntegration_ConcurrentInsertsUniqueIDs(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	env.mysql.ExecContext(ctx, `DELETE FROM records WHERE name LIKE 'it-%'`)

	svc := NewRecordService(env.db, WithCache(env.cache))

	totalRequests := 30
	ids := make(chan int64, totalRequests)
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id, err := svc.Insert(ctx, fields(fmt.Sprintf("it-item-%02d", n), "1", "1"))
			if err != nil {
				t.Errorf("insert failed: %v", err)
				return
			}
			ids <- id
		}(i)
	}

	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != totalRequests {
		t.Errorf("expected %d ids, got %d", totalRequests, len(seen))
	}

	// Cleanup
	env.mysql.ExecContext(ctx, `DELETE FROM records WHERE name LIKE 'it-%'`)
}
