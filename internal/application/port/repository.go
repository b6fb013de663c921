package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillRepository defines persistence operations for Bill
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id string) (*entity.Bill, error)
	Update(ctx context.Context, bill *entity.Bill) error
	// List returns bills of email, or all bills when email is empty
	List(ctx context.Context, email string) ([]*entity.Bill, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
