package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT id, sku, name, price, stock FROM products ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *SQLiteRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, sku, name, price, stock FROM products WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT id, sku, name, price, stock FROM products WHERE sku = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, sku))
}

func (r *SQLiteRepository) scanOne(row *sql.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &p, nil
}

// UpsertProduct inserts or updates by SKU and returns the row id.
func (r *SQLiteRepository) UpsertProduct(ctx context.Context, product *domain.Product) (int64, error) {
	query := `INSERT INTO products (sku, name, price, stock) VALUES (?, ?, ?, ?)
	          ON CONFLICT(sku) DO UPDATE SET name = excluded.name, price = excluded.price, stock = excluded.stock`

	if _, err := r.db.ExecContext(ctx, query, product.SKU, product.Name, product.Price, product.Stock); err != nil {
		return 0, fmt.Errorf("upsert product: %w", err)
	}

	stored, err := r.GetProductBySKU(ctx, product.SKU)
	if err != nil {
		return 0, err
	}
	return stored.ID, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
