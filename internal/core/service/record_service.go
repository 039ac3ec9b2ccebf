package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/port"
)

const (
	maxNameLength = 255
	// stock and price are stored as DECIMAL(20,4)
	maxScale = 4
)

var maxMagnitude = decimal.New(1, 16)

// RecordService is the inventory record store. Writes are serialized against
// reads so a List or SelectForEdit never observes a partially applied write.
type RecordService struct {
	mu     sync.RWMutex
	repo   port.RecordRepository
	cache  port.CacheRepository
	events port.EventPublisher
	log    *zap.Logger
	now    func() time.Time

	// set while the cached list may be older than the store
	cacheStale atomic.Bool
}

type Option func(*RecordService)

// WithCache serves List from cache and invalidates it after every write.
func WithCache(cache port.CacheRepository) Option {
	return func(s *RecordService) { s.cache = cache }
}

func WithEvents(events port.EventPublisher) Option {
	return func(s *RecordService) { s.events = events }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *RecordService) { s.log = log }
}

func NewRecordService(repo port.RecordRepository, opts ...Option) *RecordService {
	s := &RecordService{
		repo: repo,
		log:  zap.NewNop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RecordService) List(ctx context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	useCache := s.cacheUsable(ctx)
	if useCache {
		records, ok, err := s.cache.GetRecordList(ctx)
		if err != nil {
			s.log.Warn("record list cache read failed", zap.Error(err))
		} else if ok {
			return records, nil
		}
	}

	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w: %w", ErrPersistence, err)
	}
	if records == nil {
		records = []domain.Record{}
	}

	if useCache {
		if err := s.cache.SetRecordList(ctx, records); err != nil {
			s.log.Warn("record list cache write failed", zap.Error(err))
		}
	}
	return records, nil
}

func (s *RecordService) Insert(ctx context.Context, fields domain.Fields) (int64, error) {
	record, err := parseFields(fields)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.write(ctx, func() (domain.RecordEvent, error) {
		now := s.now()
		record.CreatedAt = now
		record.UpdatedAt = now

		created, err := s.repo.CreateRecord(ctx, record)
		if err != nil {
			return domain.RecordEvent{}, fmt.Errorf("insert record: %w: %w", ErrPersistence, err)
		}
		id = created.ID
		return domain.RecordEvent{
			Type:       domain.RecordCreated,
			RecordID:   created.ID,
			Record:     created,
			OccurredAt: now,
		}, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *RecordService) Update(ctx context.Context, id int64, fields domain.Fields) error {
	record, err := parseFields(fields)
	if err != nil {
		return err
	}
	record.ID = id

	return s.write(ctx, func() (domain.RecordEvent, error) {
		record.UpdatedAt = s.now()

		updated, err := s.repo.UpdateRecord(ctx, record)
		if err != nil {
			return domain.RecordEvent{}, repoErr("update record", id, err)
		}
		return domain.RecordEvent{
			Type:       domain.RecordUpdated,
			RecordID:   id,
			Record:     updated,
			OccurredAt: record.UpdatedAt,
		}, nil
	})
}

// Delete removes the record. Deleting an id that is already gone reports
// ErrNotFound rather than succeeding silently.
func (s *RecordService) Delete(ctx context.Context, id int64) error {
	return s.write(ctx, func() (domain.RecordEvent, error) {
		if err := s.repo.DeleteRecord(ctx, id); err != nil {
			return domain.RecordEvent{}, repoErr("delete record", id, err)
		}
		return domain.RecordEvent{
			Type:       domain.RecordDeleted,
			RecordID:   id,
			OccurredAt: s.now(),
		}, nil
	})
}

func (s *RecordService) SelectForEdit(ctx context.Context, id int64) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return domain.Record{}, repoErr("select record", id, err)
	}
	return *record, nil
}

// write applies one mutation under the write lock and drops the cached list
// before readers can run again. The event is published after the lock is
// released so a slow broker never blocks List or SelectForEdit.
func (s *RecordService) write(ctx context.Context, apply func() (domain.RecordEvent, error)) error {
	event, err := func() (domain.RecordEvent, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		event, err := apply()
		if err != nil {
			return event, err
		}
		s.invalidateCache(ctx, event)
		return event, nil
	}()
	if err != nil {
		return err
	}

	log := s.log.With(zap.Int64("record_id", event.RecordID), zap.String("event", string(event.Type)))
	if s.events != nil {
		if err := s.events.Publish(ctx, event); err != nil {
			log.Warn("record event publish failed", zap.Error(err))
		}
	}
	log.Info("record written")
	return nil
}

// invalidateCache runs with the write lock held. A failed invalidation marks
// the cache stale so List bypasses it until a later invalidation succeeds.
func (s *RecordService) invalidateCache(ctx context.Context, event domain.RecordEvent) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRecordList(ctx); err != nil {
		s.cacheStale.Store(true)
		s.log.Error("record list cache invalidation failed",
			zap.Int64("record_id", event.RecordID),
			zap.Error(err),
		)
		return
	}
	s.cacheStale.Store(false)
}

// cacheUsable reports whether List may read and fill the cache, retrying a
// pending invalidation first.
func (s *RecordService) cacheUsable(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}
	if !s.cacheStale.Load() {
		return true
	}
	if err := s.cache.InvalidateRecordList(ctx); err != nil {
		s.log.Warn("record list cache still stale", zap.Error(err))
		return false
	}
	s.cacheStale.Store(false)
	return true
}

func repoErr(op string, id int64, err error) error {
	if errors.Is(err, port.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w: id %d", op, ErrNotFound, id)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func parseFields(f domain.Fields) (domain.Record, error) {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Stock) == "" || strings.TrimSpace(f.Price) == "" {
		return domain.Record{}, fmt.Errorf("%w: name, stock and price are required", ErrValidation)
	}
	if !utf8.ValidString(f.Name) || strings.ContainsRune(f.Name, 0) {
		return domain.Record{}, fmt.Errorf("%w: name must be valid UTF-8 without NUL bytes", ErrValidation)
	}
	if len(f.Name) > maxNameLength {
		return domain.Record{}, fmt.Errorf("%w: name longer than %d bytes", ErrValidation, maxNameLength)
	}

	stock, err := parseAmount("stock", f.Stock)
	if err != nil {
		return domain.Record{}, err
	}
	price, err := parseAmount("price", f.Price)
	if err != nil {
		return domain.Record{}, err
	}

	return domain.Record{Name: f.Name, Stock: stock, Price: price}, nil
}

func parseAmount(field, text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q is not a number", ErrValidation, field, text)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
	}
	if !d.Equal(d.Round(maxScale)) || d.GreaterThanOrEqual(maxMagnitude) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q is out of range", ErrValidation, field, text)
	}
	return d, nil
}
