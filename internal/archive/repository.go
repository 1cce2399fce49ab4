package archive

import (
	"context"
	"errors"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
)

var (
	ErrSaleNotFound  = errors.New("archived sale not found")
	ErrDuplicateSale = errors.New("sale for this transaction already archived")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// SaleArchive is the durable record of every completed sale, unbounded,
// unlike the register's 500-entry tape.
type SaleArchive interface {
	SaveSale(ctx context.Context, tx *domain.Transaction) error
	GetSale(ctx context.Context, txID string) (*domain.Transaction, error)
	ListSalesByStation(ctx context.Context, stationID string) ([]*domain.Transaction, error)
	RunMigrations(*Credentials) error
	Close() error
}
