// Package store holds the BillStore adapters.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/storage"
)

// LocalConfig holds the settings of a LocalStore
type LocalConfig struct {
	// PublicPath is the URL prefix under which stored proofs are served
	PublicPath string
	// MaxUploadSize rejects larger proofs when positive
	MaxUploadSize int64
}

// LocalStore implements port.BillStore on the sqlite repository and the
// local file storage
type LocalStore struct {
	repo    port.BillRepository
	files   port.FileStorage
	tx      port.TransactionManager
	cfg     LocalConfig
	logger  *zap.Logger
	newUUID func() string
}

// NewLocalStore creates a LocalStore
func NewLocalStore(repo port.BillRepository, files port.FileStorage, tx port.TransactionManager, cfg LocalConfig, logger *zap.Logger) *LocalStore {
	if cfg.PublicPath == "" {
		cfg.PublicPath = "/files"
	}
	return &LocalStore{
		repo:    repo,
		files:   files,
		tx:      tx,
		cfg:     cfg,
		logger:  logger,
		newUUID: uuid.NewString,
	}
}

// List returns the bills of email
func (s *LocalStore) List(ctx context.Context, email string) ([]*entity.Bill, error) {
	return s.repo.List(ctx, email)
}

// Create saves the proof under a new uuid key. No bill row exists until
// the completed bill is sent to Update with that key.
func (s *LocalStore) Create(ctx context.Context, file *entity.FileUpload) (*entity.UploadResult, error) {
	if file == nil || file.Name == "" {
		return nil, &entity.StatusError{StatusCode: http.StatusBadRequest, Detail: "missing file"}
	}
	if s.cfg.MaxUploadSize > 0 && file.Size() > s.cfg.MaxUploadSize {
		return nil, &entity.StatusError{
			StatusCode: http.StatusRequestEntityTooLarge,
			Detail:     fmt.Sprintf("file is %d bytes, limit is %d", file.Size(), s.cfg.MaxUploadSize),
		}
	}

	key := s.newUUID()
	relPath := storage.ProofPath(key, file.Name)
	fileURL := strings.TrimSuffix(s.cfg.PublicPath, "/") + "/" + relPath

	if err := s.files.Save(ctx, relPath, file.Content); err != nil {
		return nil, fmt.Errorf("failed to save proof: %w", err)
	}

	s.logger.Info("Proof stored",
		zap.String("key", key),
		zap.String("path", relPath),
		zap.Int64("size", file.Size()))

	return &entity.UploadResult{FileURL: fileURL, Key: key}, nil
}

// Update writes the completed bill. A bill without ID, or whose ID is
// unknown, is inserted. A bill owned by another email is refused with 403.
func (s *LocalStore) Update(ctx context.Context, bill *entity.Bill) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if bill.ID == "" {
			bill.ID = s.newUUID()
			return s.repo.Create(ctx, bill)
		}

		existing, err := s.repo.GetByID(ctx, bill.ID)
		if errors.Is(err, entity.ErrBillNotFound) {
			return s.repo.Create(ctx, bill)
		}
		if err != nil {
			return err
		}
		if existing.Email != bill.Email {
			s.logger.Warn("Refused update of a bill owned by another user",
				zap.String("bill_id", bill.ID),
				zap.String("email", bill.Email))
			return &entity.StatusError{StatusCode: http.StatusForbidden, Detail: "bill belongs to another user"}
		}

		return s.repo.Update(ctx, bill)
	})
}

// Discard removes the proof of an upload that was never submitted.
// Proofs already referenced by a bill are kept.
func (s *LocalStore) Discard(ctx context.Context, upload *entity.PendingFile) error {
	if upload == nil || upload.Key == "" {
		return nil
	}

	_, err := s.repo.GetByID(ctx, upload.Key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, entity.ErrBillNotFound) {
		return err
	}

	rel, ok := s.ProofRelPath(upload.FileURL)
	if !ok {
		return nil
	}
	if err := s.files.Delete(ctx, rel); err != nil {
		return fmt.Errorf("failed to discard proof: %w", err)
	}

	s.logger.Info("Discarded unsubmitted proof", zap.String("key", upload.Key), zap.String("path", rel))
	return nil
}

// ProofRelPath maps a public file URL back to its storage path, or returns
// false when the URL is not served by this store
func (s *LocalStore) ProofRelPath(fileURL string) (string, bool) {
	prefix := strings.TrimSuffix(s.cfg.PublicPath, "/") + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	rel := path.Clean(strings.TrimPrefix(fileURL, prefix))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}

// Verify interface compliance
var (
	_ port.BillStore       = (*LocalStore)(nil)
	_ port.UploadDiscarder = (*LocalStore)(nil)
)
