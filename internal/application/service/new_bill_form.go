package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/i18n"
)

// ErrUnsupportedFile is returned when a selected proof is not a jpg, jpeg or png file
var ErrUnsupportedFile = errors.New("unsupported proof file type")

// acceptedExtensions are compared against the lower-cased extension
var acceptedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// NavigationPolicy decides whether submitting waits for the update outcome
// before leaving the form
type NavigationPolicy string

const (
	// NavigateOptimistic navigates to the bills list whatever the update outcome
	NavigateOptimistic NavigationPolicy = "optimistic"
	// NavigateConfirmed navigates only after a successful update
	NavigateConfirmed NavigationPolicy = "confirmed"
)

// IsValid reports whether p is a known policy
func (p NavigationPolicy) IsValid() bool {
	return p == NavigateOptimistic || p == NavigateConfirmed
}

// NewBillFormConfig holds the collaborators of a NewBillForm
type NewBillFormConfig struct {
	// Store may be nil; uploads and updates are then skipped
	Store     port.BillStore
	Navigator port.Navigator
	User      entity.User
	Lang      string
	Policy    NavigationPolicy
	// Pending restores the result of an upload made by an earlier request
	Pending *entity.PendingFile
	Logger  Logger
}

// NewBillForm is the view-model of the new bill page.
// It holds at most one pending file reference between a file selection and
// the submit; a new selection replaces it.
type NewBillForm struct {
	store     port.BillStore
	navigator port.Navigator
	user      entity.User
	lang      string
	policy    NavigationPolicy
	pending   *entity.PendingFile
	fileInput entity.FileInputState
	logger    Logger
}

// NewNewBillForm creates a NewBillForm
func NewNewBillForm(cfg NewBillFormConfig) *NewBillForm {
	policy := cfg.Policy
	if !policy.IsValid() {
		policy = NavigateOptimistic
	}
	form := &NewBillForm{
		store:     cfg.Store,
		navigator: cfg.Navigator,
		user:      cfg.User,
		lang:      cfg.Lang,
		policy:    policy,
		pending:   cfg.Pending,
		logger:    cfg.Logger,
	}
	if cfg.Pending != nil {
		form.fileInput.Value = cfg.Pending.FileName
	}
	return form
}

// Pending returns the pending file reference, nil when no upload succeeded
func (f *NewBillForm) Pending() *entity.PendingFile {
	return f.pending
}

// FileInput returns the state of the file input
func (f *NewBillForm) FileInput() entity.FileInputState {
	return f.fileInput
}

// HandleChangeFile validates the selected proof and uploads it.
// Unsupported files are rejected without calling the store and return
// ErrUnsupportedFile. Upload failures are logged and not returned.
func (f *NewBillForm) HandleChangeFile(ctx context.Context, file *entity.FileUpload) error {
	f.pending = nil

	if file == nil || file.Name == "" {
		f.fileInput = entity.FileInputState{}
		return nil
	}

	if !acceptedExtensions[file.Extension()] {
		f.fileInput = entity.FileInputState{Message: i18n.T(f.lang, "file_type_invalid")}
		f.logger.Info("Rejected proof file", "file_name", file.Name, "extension", file.Extension())
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, file.Name)
	}

	f.fileInput = entity.FileInputState{Value: file.Name}

	if f.store == nil {
		return nil
	}

	if file.Email == "" {
		file.Email = f.user.Email
	}

	result, err := f.store.Create(ctx, file)
	if err != nil {
		f.logger.Error("Failed to upload proof file",
			"file_name", file.Name,
			"email", f.user.Email,
			"error", err)
		return nil
	}

	f.pending = &entity.PendingFile{
		FileURL:  result.FileURL,
		FileName: file.Name,
		Key:      result.Key,
	}

	f.logger.Info("Proof file uploaded",
		"file_name", file.Name,
		"key", result.Key)

	return nil
}

// HandleSubmit sends the completed bill to the store and navigates to the
// bills list according to the navigation policy. The update error, if any,
// is returned after navigation was decided.
func (f *NewBillForm) HandleSubmit(ctx context.Context, form entity.BillForm) error {
	bill := form.ToBill(f.user, f.pending)

	var err error
	if f.store != nil {
		err = f.store.Update(ctx, bill)
		if err != nil {
			f.logger.Error("Failed to update bill",
				"bill_id", bill.ID,
				"email", bill.Email,
				"error", err)
		} else {
			f.logger.Info("Bill submitted",
				"bill_id", bill.ID,
				"email", bill.Email)
		}
	}

	if err == nil || f.policy == NavigateOptimistic {
		f.navigator.Navigate(port.RouteBills)
	}

	return err
}
