package service

import (
	"context"
	"sort"

	"github.com/garyjia/billed/internal/application/format"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// DefaultModalWidth is used when the client does not report the modal width
const DefaultModalWidth = 800

// proofAlt is the caption of the proof image
const proofAlt = "Bill"

// BillsListConfig holds the collaborators of a BillsList
type BillsListConfig struct {
	// Store may be nil; the list is then empty
	Store      port.BillStore
	Navigator  port.Navigator
	Formatter  *format.Formatter
	User       entity.User
	ModalWidth int
	Logger     Logger
}

// BillsList is the view-model of the employee bills page
type BillsList struct {
	store      port.BillStore
	navigator  port.Navigator
	formatter  *format.Formatter
	user       entity.User
	modalWidth int
	modal      *entity.ProofModal
	logger     Logger
}

// NewBillsList creates a BillsList
func NewBillsList(cfg BillsListConfig) *BillsList {
	formatter := cfg.Formatter
	if formatter == nil {
		formatter = format.NewFormatter("")
	}
	modalWidth := cfg.ModalWidth
	if modalWidth <= 0 {
		modalWidth = DefaultModalWidth
	}
	return &BillsList{
		store:      cfg.Store,
		navigator:  cfg.Navigator,
		formatter:  formatter,
		user:       cfg.User,
		modalWidth: modalWidth,
		logger:     cfg.Logger,
	}
}

// GetBills returns the user's bills ready for display, newest first.
// A failure of the store list call is returned unchanged.
func (b *BillsList) GetBills(ctx context.Context) ([]*entity.BillView, error) {
	if b.store == nil {
		return []*entity.BillView{}, nil
	}

	bills, err := b.store.List(ctx, b.user.Email)
	if err != nil {
		b.logger.Error("Failed to list bills", "email", b.user.Email, "error", err)
		return nil, err
	}

	views := make([]*entity.BillView, 0, len(bills))
	for _, bill := range bills {
		if bill == nil {
			continue
		}
		views = append(views, b.toView(bill))
	}

	// Raw ISO dates sort lexically; formatted ones do not
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Date > views[j].Date
	})

	return views, nil
}

func (b *BillsList) toView(bill *entity.Bill) *entity.BillView {
	view := &entity.BillView{
		Bill:          *bill,
		DisplayStatus: b.formatter.Status(bill.Status),
		StatusClass:   b.formatter.StatusClass(bill.Status),
	}

	displayDate, err := b.formatter.Date(bill.Date)
	if err != nil {
		b.logger.Warn("Bill date could not be formatted, showing raw value",
			"bill_id", bill.ID,
			"date", bill.Date,
			"error", err)
		displayDate = bill.Date
	}
	view.DisplayDate = displayDate

	return view
}

// HandleClickIconEye opens the proof modal of bill.
// The image takes half of modalWidth; a non-positive width uses the default.
func (b *BillsList) HandleClickIconEye(bill *entity.BillView, modalWidth int) *entity.ProofModal {
	if modalWidth <= 0 {
		modalWidth = b.modalWidth
	}
	modal := &entity.ProofModal{
		Visible:    true,
		ImageWidth: modalWidth / 2,
		Alt:        proofAlt,
	}
	if bill != nil {
		modal.BillID = bill.ID
		modal.ImageURL = bill.FileURL
	}
	b.modal = modal
	return modal
}

// Modal returns the proof modal state, nil until an eye icon was clicked
func (b *BillsList) Modal() *entity.ProofModal {
	return b.modal
}

// HandleClickNewBill navigates to the new bill form
func (b *BillsList) HandleClickNewBill() {
	b.navigator.Navigate(port.RouteNewBill)
}
