package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
)

const billColumns = `id, email, type, name, amount, date, vat, pct, commentary,
	comment_admin, file_url, file_name, status, created_at, updated_at`

// BillRepository implements port.BillRepository on sqlite
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) *BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a bill; ID must already be assigned
func (r *BillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	if bill.ID == "" {
		return fmt.Errorf("bill id is required")
	}
	if bill.Status == "" {
		bill.Status = entity.StatusPending
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO bills (
			id, email, type, name, amount, date, vat, pct, commentary,
			comment_admin, file_url, file_name, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.ID,
		bill.Email,
		bill.Type,
		bill.Name,
		bill.Amount,
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.CommentAdmin,
		bill.FileURL,
		bill.FileName,
		bill.Status,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}

	bill.CreatedAt = now
	bill.UpdatedAt = now
	return nil
}

// GetByID retrieves a bill, returning entity.ErrBillNotFound when missing
func (r *BillRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = ?`

	bill, err := scanBill(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrBillNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get bill", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// Update overwrites the editable fields of an existing bill owned by
// bill.Email. The owner never changes; a bill of another email is reported
// as ErrBillNotFound. The file reference is kept when the update carries none.
func (r *BillRepository) Update(ctx context.Context, bill *entity.Bill) error {
	if bill.Status == "" {
		bill.Status = entity.StatusPending
	}

	now := time.Now().UTC()
	query := `
		UPDATE bills SET
			type = ?, name = ?, amount = ?, date = ?, vat = ?,
			pct = ?, commentary = ?, status = ?,
			file_url = CASE WHEN ? = '' THEN file_url ELSE ? END,
			file_name = CASE WHEN ? = '' THEN file_name ELSE ? END,
			updated_at = ?
		WHERE id = ? AND email = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.Type,
		bill.Name,
		bill.Amount,
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.Status,
		bill.FileURL, bill.FileURL,
		bill.FileName, bill.FileName,
		now,
		bill.ID,
		bill.Email,
	)
	if err != nil {
		r.logger.Error("Failed to update bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return entity.ErrBillNotFound
	}

	bill.UpdatedAt = now
	return nil
}

// List returns bills of email, or every bill when email is empty
func (r *BillRepository) List(ctx context.Context, email string) ([]*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills`
	var args []interface{}
	if email != "" {
		query += ` WHERE email = ?`
		args = append(args, email)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []*entity.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}

	return bills, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(s scanner) (*entity.Bill, error) {
	var bill entity.Bill
	err := s.Scan(
		&bill.ID,
		&bill.Email,
		&bill.Type,
		&bill.Name,
		&bill.Amount,
		&bill.Date,
		&bill.VAT,
		&bill.Pct,
		&bill.Commentary,
		&bill.CommentAdmin,
		&bill.FileURL,
		&bill.FileName,
		&bill.Status,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// Verify interface compliance
var _ port.BillRepository = (*BillRepository)(nil)
