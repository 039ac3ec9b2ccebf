package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/port"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// OpenMySQL connects with the settings the adapter depends on: parseTime for
// the timestamp columns and multiStatements for migrations.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// ListRecords relies on the utf8mb4_bin collation of records.name for byte order.
func (m *MySQLAdapter) ListRecords(ctx context.Context) ([]domain.Record, error) {
	rows, err := m.db.QueryContext(ctx, `
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

func (m *MySQLAdapter) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	var r domain.Record
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, stock, price, created_at, updated_at
		FROM records WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.Stock, &r.Price, &r.CreatedAt, &r.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	return &r, nil
}

// CreateRecord takes its id from AUTO_INCREMENT, which InnoDB never rewinds.
func (m *MySQLAdapter) CreateRecord(ctx context.Context, record domain.Record) (*domain.Record, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO records (name, stock, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.Name, record.Stock, record.Price,
		record.CreatedAt.UTC(), record.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	record.ID = id
	return &record, nil
}

func (m *MySQLAdapter) UpdateRecord(ctx context.Context, record domain.Record) (*domain.Record, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// RowsAffected is zero for an unchanged row, so existence is checked under lock
	err = tx.QueryRowContext(ctx,
		`SELECT created_at FROM records WHERE id = ? FOR UPDATE`, record.ID,
	).Scan(&record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE records
		SET name = ?, stock = ?, price = ?, updated_at = ?
		WHERE id = ?`,
		record.Name, record.Stock, record.Price, record.UpdatedAt.UTC(), record.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &record, nil
}

func (m *MySQLAdapter) DeleteRecord(ctx context.Context, id int64) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return port.ErrRecordNotFound
	}
	return nil
}
