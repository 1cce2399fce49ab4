package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "archive_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) SaveSale(ctx context.Context, tx *domain.Transaction) error {
	linesJSON, err := json.Marshal(tx.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal line items: %w", err)
	}
	auditJSON, err := json.Marshal(tx.AuditTrail)
	if err != nil {
		return fmt.Errorf("failed to marshal audit trail: %w", err)
	}

	query := `INSERT INTO sales_archive
	          (tx_id, store_id, operator_id, operator_name, station_id, payment_method,
	           subtotal, tax, total, change_due, line_items, audit_trail, sold_at, recorded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.StoreID,
		tx.OperatorID,
		tx.OperatorName,
		tx.StationID,
		tx.PaymentMethod,
		tx.Subtotal,
		tx.Tax,
		tx.Total,
		tx.ChangeDue,
		linesJSON,
		auditJSON,
		tx.Timestamp)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateSale
		}
		return fmt.Errorf("insert sale: %w", insertErr)
	}
	return nil
}

func (r *Repository) GetSale(ctx context.Context, txID string) (*domain.Transaction, error) {
	query := `SELECT tx_id, store_id, operator_id, operator_name, station_id, payment_method,
	                 subtotal, tax, total, change_due, line_items, audit_trail, sold_at
	          FROM sales_archive WHERE tx_id = $1`

	tx, err := scanSale(r.db.QueryRowContext(ctx, query, txID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query sale by id: %w", err)
	}
	return tx, nil
}

func (r *Repository) ListSalesByStation(ctx context.Context, stationID string) ([]*domain.Transaction, error) {
	query := `SELECT tx_id, store_id, operator_id, operator_name, station_id, payment_method,
	                 subtotal, tax, total, change_due, line_items, audit_trail, sold_at
	          FROM sales_archive WHERE station_id = $1 ORDER BY sold_at DESC`

	rows, err := r.db.QueryContext(ctx, query, stationID)
	if err != nil {
		return nil, fmt.Errorf("query sales by station: %w", err)
	}
	defer rows.Close()

	var sales []*domain.Transaction
	for rows.Next() {
		tx, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		sales = append(sales, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sales, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var linesJSON, auditJSON []byte
	if err := row.Scan(
		&tx.ID,
		&tx.StoreID,
		&tx.OperatorID,
		&tx.OperatorName,
		&tx.StationID,
		&tx.PaymentMethod,
		&tx.Subtotal,
		&tx.Tax,
		&tx.Total,
		&tx.ChangeDue,
		&linesJSON,
		&auditJSON,
		&tx.Timestamp,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(linesJSON, &tx.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal line items: %w", err)
	}
	if err := json.Unmarshal(auditJSON, &tx.AuditTrail); err != nil {
		return nil, fmt.Errorf("unmarshal audit trail: %w", err)
	}

	return &tx, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
