package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/inventory-records/internal/adapter/storage"
	"github.com/rl1809/inventory-records/internal/config"
	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/core/service"
	"github.com/rl1809/inventory-records/internal/logger"
	"github.com/rl1809/inventory-records/internal/migration"
	"github.com/rl1809/inventory-records/internal/port"
)

const (
	writers          = 20
	insertsPerWriter = 25
	readers          = 5
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("load config", zap.Error(err))
	}
	log := logger.L()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatal("open record store", zap.Error(err))
	}
	records := service.NewRecordService(repo)

	var (
		insertFail atomic.Int32
		unordered  atomic.Int32
		mu         sync.Mutex
		issued     []int64
		wg         sync.WaitGroup
		done       = make(chan struct{})
	)

	// Readers check that every list they observe is sorted while writes are in flight
	var readWG sync.WaitGroup
	for r := 0; r < readers; r++ {
		readWG.Add(1)
		go func() {
			defer readWG.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				list, err := records.List(ctx)
				if err != nil {
					continue
				}
				if !sort.SliceIsSorted(list, func(i, j int) bool { return list[i].Name < list[j].Name }) {
					unordered.Add(1)
				}
			}
		}()
	}

	start := time.Now()
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(writer int) {
			defer wg.Done()

			var last int64
			for i := 0; i < insertsPerWriter; i++ {
				id, err := records.Insert(ctx, domain.Fields{
					Name:  fmt.Sprintf("item-%02d-%03d", (writers-writer)%writers, i),
					Stock: fmt.Sprint(i + 1),
					Price: fmt.Sprintf("%d.50", 1000*(writer+1)),
				})
				if err != nil {
					insertFail.Add(1)
					continue
				}
				if id <= last {
					log.Error("id not increasing", zap.Int64("previous", last), zap.Int64("id", id))
				}
				last = id

				mu.Lock()
				issued = append(issued, id)
				mu.Unlock()
			}
		}(w)
	}

	wg.Wait()
	close(done)
	readWG.Wait()
	elapsed := time.Since(start)

	seen := make(map[int64]bool, len(issued))
	duplicates := 0
	for _, id := range issued {
		if seen[id] {
			duplicates++
		}
		seen[id] = true
	}

	total := writers * insertsPerWriter
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Store Driver:     %s\n", cfg.StoreDriver)
	fmt.Printf("Total Inserts:    %d\n", total)
	fmt.Printf("Successful:       %d\n", len(issued))
	fmt.Printf("Failed:           %d\n", insertFail.Load())
	fmt.Printf("Duplicate IDs:    %d\n", duplicates)
	fmt.Printf("Unordered Lists:  %d\n", unordered.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if len(issued) == total && duplicates == 0 {
		fmt.Printf("PASS: %d unique ids issued\n", total)
	} else {
		fmt.Printf("FAIL: expected %d unique ids, got %d with %d duplicates\n", total, len(issued), duplicates)
	}

	if unordered.Load() == 0 {
		fmt.Println("PASS: every observed list was sorted by name")
	} else {
		fmt.Printf("FAIL: %d lists were out of order\n", unordered.Load())
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (port.RecordRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := storage.OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		if err := (&migration.Migrate{DB: db, Dialect: config.DriverMySQL}).MigrateUp(); err != nil {
			return nil, err
		}
		return storage.NewMySQLAdapter(db), nil
	case config.DriverPostgres:
		db, err := storage.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := (&migration.Migrate{DB: db, Dialect: config.DriverPostgres}).MigrateUp(); err != nil {
			return nil, err
		}
		return storage.NewPostgresAdapter(db), nil
	default:
		return storage.NewMemoryAdapter(), nil
	}
}
