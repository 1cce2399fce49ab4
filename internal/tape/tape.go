package tape

import (
	"context"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
)

// Depth is how many transactions the tape retains. Older entries fall off
// the end on every append.
const Depth = 500

// TransactionTape is the register's bounded sales record: most recent
// first, truncated to Depth entries.
type TransactionTape interface {
	// Append prepends the transaction and truncates the tape to Depth.
	Append(ctx context.Context, tx *domain.Transaction) error

	// List returns up to limit transactions, most recent first.
	// limit <= 0 means the full tape.
	List(ctx context.Context, limit int) ([]*domain.Transaction, error)
}
