package service

import (
	"github.com/garyjia/billed/internal/application/format"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// FactoryConfig holds the dependencies shared by every page component
type FactoryConfig struct {
	Store      port.BillStore
	Lang       string
	Policy     NavigationPolicy
	ModalWidth int
	Logger     Logger
}

// Factory builds the per-request page components
type Factory struct {
	store      port.BillStore
	formatter  *format.Formatter
	policy     NavigationPolicy
	modalWidth int
	logger     Logger
}

// NewFactory creates a Factory
func NewFactory(cfg FactoryConfig) *Factory {
	return &Factory{
		store:      cfg.Store,
		formatter:  format.NewFormatter(cfg.Lang),
		policy:     cfg.Policy,
		modalWidth: cfg.ModalWidth,
		logger:     cfg.Logger,
	}
}

// Lang returns the display language of the components
func (f *Factory) Lang() string {
	return f.formatter.Lang()
}

// HasStore returns true when a bill store backend is configured
func (f *Factory) HasStore() bool {
	return f.store != nil
}

// BillsList creates the bills page component for user
func (f *Factory) BillsList(user entity.User, nav port.Navigator) *BillsList {
	return NewBillsList(BillsListConfig{
		Store:      f.store,
		Navigator:  nav,
		Formatter:  f.formatter,
		User:       user,
		ModalWidth: f.modalWidth,
		Logger:     f.logger,
	})
}

// NewBillForm creates the new bill page component for user
func (f *Factory) NewBillForm(user entity.User, nav port.Navigator, pending *entity.PendingFile) *NewBillForm {
	return NewNewBillForm(NewBillFormConfig{
		Store:     f.store,
		Navigator: nav,
		User:      user,
		Lang:      f.formatter.Lang(),
		Policy:    f.policy,
		Pending:   pending,
		Logger:    f.logger,
	})
}
