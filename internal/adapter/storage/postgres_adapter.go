package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/port"
)

type PostgresAdapter struct {
	db *sql.DB
}

func NewPostgresAdapter(db *sql.DB) *PostgresAdapter {
	return &PostgresAdapter{db: db}
}

func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// records.name is declared COLLATE "C", so ORDER BY name is byte order.
func (p *PostgresAdapter) ListRecords(ctx context.Context) ([]domain.Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, stock, price, created_at, updated_at
		FROM records ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var r domain.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Stock, &r.Price, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (p *PostgresAdapter) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	var r domain.Record
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, stock, price, created_at, updated_at
		FROM records WHERE id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.Stock, &r.Price, &r.CreatedAt, &r.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	return &r, nil
}

func (p *PostgresAdapter) CreateRecord(ctx context.Context, record domain.Record) (*domain.Record, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO records (name, stock, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		record.Name, record.Stock, record.Price, record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return &record, nil
}

func (p *PostgresAdapter) UpdateRecord(ctx context.Context, record domain.Record) (*domain.Record, error) {
	err := p.db.QueryRowContext(ctx, `
		UPDATE records
		SET name = $1, stock = $2, price = $3, updated_at = $4
		WHERE id = $5
		RETURNING created_at`,
		record.Name, record.Stock, record.Price, record.UpdatedAt, record.ID,
	).Scan(&record.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return &record, nil
}

func (p *PostgresAdapter) DeleteRecord(ctx context.Context, id int64) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return port.ErrRecordNotFound
	}
	return nil
}
