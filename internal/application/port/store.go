package port

import (
	"context"
	"time"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillStore is the bill-management backend seen by the employee pages
type BillStore interface {
	// List returns the raw bills of email, or every bill when email is empty.
	// Failures may carry a status code (entity.StatusError).
	List(ctx context.Context, email string) ([]*entity.Bill, error)

	// Create stores a proof file and returns its URL and the key of the
	// bill record reserved for it.
	Create(ctx context.Context, file *entity.FileUpload) (*entity.UploadResult, error)

	// Update writes the completed bill. bill.ID is the key returned by Create.
	Update(ctx context.Context, bill *entity.Bill) error
}

// UploadDiscarder is implemented by stores that can drop an upload whose
// bill was never submitted
type UploadDiscarder interface {
	Discard(ctx context.Context, upload *entity.PendingFile) error
}

// DraftStore keeps the pending file reference of a new bill form between
// the file selection request and the submit request
type DraftStore interface {
	Load(ctx context.Context, id string) (*entity.PendingFile, error)
	Save(ctx context.Context, id string, pending *entity.PendingFile, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
