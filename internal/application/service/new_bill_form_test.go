package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

var testEmployee = entity.User{Email: "employee@test.tld", Type: entity.UserTypeEmployee}

func newTestForm(store port.BillStore, nav port.Navigator, policy NavigationPolicy) *NewBillForm {
	return NewNewBillForm(NewBillFormConfig{
		Store:     store,
		Navigator: nav,
		User:      testEmployee,
		Lang:      "fr",
		Policy:    policy,
		Logger:    &mockLogger{},
	})
}

func validForm() entity.BillForm {
	return entity.BillForm{
		Type:   entity.ExpenseTypeHotel,
		Name:   "Hôtel du centre ville",
		Date:   "2022-12-30",
		Amount: "120",
		VAT:    "10",
		Pct:    "10",
	}
}

func TestNewBillForm_HandleChangeFile_RejectsUnsupportedExtension(t *testing.T) {
	for _, name := range []string{"facture.pdf", "facture.gif", "facture", "facture.png.exe"} {
		t.Run(name, func(t *testing.T) {
			store := &mockBillStore{}
			form := newTestForm(store, &mockNavigator{}, NavigateOptimistic)

			err := form.HandleChangeFile(context.Background(), &entity.FileUpload{Name: name, Content: []byte("x")})

			assert.ErrorIs(t, err, ErrUnsupportedFile)
			assert.Empty(t, store.createCalls)
			assert.Empty(t, form.FileInput().Value)
			assert.Equal(t, "Seuls les fichiers jpg, jpeg et png sont acceptés", form.FileInput().Message)
			assert.Nil(t, form.Pending())
		})
	}
}

func TestNewBillForm_HandleChangeFile_AcceptsImages(t *testing.T) {
	for _, name := range []string{"facture.png", "facture.jpg", "facture.jpeg", "FACTURE.PNG", "scan.JpEg"} {
		t.Run(name, func(t *testing.T) {
			store := &mockBillStore{}
			form := newTestForm(store, &mockNavigator{}, NavigateOptimistic)

			err := form.HandleChangeFile(context.Background(), &entity.FileUpload{
				Name:        name,
				ContentType: "image/png",
				Content:     []byte("image"),
			})

			require.NoError(t, err)
			require.Len(t, store.createCalls, 1)
			assert.Equal(t, testEmployee.Email, store.createCalls[0].Email)
			assert.Equal(t, name, form.FileInput().Value)
			assert.Empty(t, form.FileInput().Message)
			require.NotNil(t, form.Pending())
			assert.Equal(t, "https://localhost:3456/images/test.jpg", form.Pending().FileURL)
			assert.Equal(t, "1234", form.Pending().Key)
			assert.Equal(t, name, form.Pending().FileName)
		})
	}
}

func TestNewBillForm_HandleChangeFile_UploadFailureIsNotSurfaced(t *testing.T) {
	store := &mockBillStore{
		createFunc: func(ctx context.Context, file *entity.FileUpload) (*entity.UploadResult, error) {
			return nil, errors.New("Erreur 500")
		},
	}
	logger := &mockLogger{}
	form := NewNewBillForm(NewBillFormConfig{
		Store:     store,
		Navigator: &mockNavigator{},
		User:      testEmployee,
		Logger:    logger,
	})

	err := form.HandleChangeFile(context.Background(), &entity.FileUpload{Name: "facture.png"})

	assert.NoError(t, err)
	assert.Len(t, store.createCalls, 1)
	assert.Nil(t, form.Pending())
	assert.Len(t, logger.errs, 1)
}

func TestNewBillForm_HandleChangeFile_NewSelectionReplacesPending(t *testing.T) {
	calls := 0
	store := &mockBillStore{
		createFunc: func(ctx context.Context, file *entity.FileUpload) (*entity.UploadResult, error) {
			calls++
			if calls == 1 {
				return &entity.UploadResult{FileURL: "/files/first.png", Key: "first"}, nil
			}
			return &entity.UploadResult{FileURL: "/files/second.jpg", Key: "second"}, nil
		},
	}
	form := newTestForm(store, &mockNavigator{}, NavigateOptimistic)

	require.NoError(t, form.HandleChangeFile(context.Background(), &entity.FileUpload{Name: "first.png"}))
	require.NoError(t, form.HandleChangeFile(context.Background(), &entity.FileUpload{Name: "second.jpg"}))

	assert.Equal(t, "second", form.Pending().Key)
	assert.Equal(t, "second.jpg", form.Pending().FileName)

	err := form.HandleChangeFile(context.Background(), &entity.FileUpload{Name: "third.pdf"})
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.Nil(t, form.Pending())
}

func TestNewBillForm_HandleChangeFile_NoStore(t *testing.T) {
	form := newTestForm(nil, &mockNavigator{}, NavigateOptimistic)

	err := form.HandleChangeFile(context.Background(), &entity.FileUpload{Name: "facture.png"})

	assert.NoError(t, err)
	assert.Nil(t, form.Pending())
	assert.Equal(t, "facture.png", form.FileInput().Value)
}

func TestNewBillForm_HandleSubmit(t *testing.T) {
	store := &mockBillStore{}
	nav := &mockNavigator{}
	form := newTestForm(store, nav, NavigateOptimistic)

	require.NoError(t, form.HandleChangeFile(context.Background(), &entity.FileUpload{Name: "testFacture.png"}))
	err := form.HandleSubmit(context.Background(), validForm())

	require.NoError(t, err)
	require.Len(t, store.createCalls, 1)
	require.Len(t, store.updateCalls, 1)

	bill := store.updateCalls[0]
	assert.Equal(t, "1234", bill.ID)
	assert.Equal(t, "employee@test.tld", bill.Email)
	assert.Equal(t, entity.ExpenseTypeHotel, bill.Type)
	assert.Equal(t, "Hôtel du centre ville", bill.Name)
	assert.Equal(t, 120, bill.Amount)
	assert.Equal(t, "2022-12-30", bill.Date)
	assert.Equal(t, "10", bill.VAT)
	assert.Equal(t, 10, bill.Pct)
	assert.Equal(t, "https://localhost:3456/images/test.jpg", bill.FileURL)
	assert.Equal(t, "testFacture.png", bill.FileName)
	assert.Equal(t, entity.StatusPending, bill.Status)

	assert.Equal(t, []string{port.RouteBills}, nav.routes)
}

func TestNewBillForm_HandleSubmit_EmptyPctDefaultsTo20(t *testing.T) {
	store := &mockBillStore{}
	form := newTestForm(store, &mockNavigator{}, NavigateOptimistic)

	f := validForm()
	f.Pct = ""
	require.NoError(t, form.HandleSubmit(context.Background(), f))

	require.Len(t, store.updateCalls, 1)
	assert.Equal(t, 20, store.updateCalls[0].Pct)
}

func TestNewBillForm_HandleSubmit_WithoutUpload(t *testing.T) {
	store := &mockBillStore{}
	nav := &mockNavigator{}
	form := newTestForm(store, nav, NavigateOptimistic)

	require.NoError(t, form.HandleSubmit(context.Background(), validForm()))

	require.Len(t, store.updateCalls, 1)
	assert.Empty(t, store.updateCalls[0].FileURL)
	assert.Empty(t, store.updateCalls[0].FileName)
	assert.Equal(t, []string{port.RouteBills}, nav.routes)
}

func TestNewBillForm_HandleSubmit_RestoredPending(t *testing.T) {
	store := &mockBillStore{}
	form := NewNewBillForm(NewBillFormConfig{
		Store:     store,
		Navigator: &mockNavigator{},
		User:      testEmployee,
		Pending:   &entity.PendingFile{FileURL: "/files/k9/a.png", FileName: "a.png", Key: "k9"},
		Logger:    &mockLogger{},
	})
	assert.Equal(t, "a.png", form.FileInput().Value)

	require.NoError(t, form.HandleSubmit(context.Background(), validForm()))

	assert.Empty(t, store.createCalls)
	require.Len(t, store.updateCalls, 1)
	assert.Equal(t, "k9", store.updateCalls[0].ID)
	assert.Equal(t, "/files/k9/a.png", store.updateCalls[0].FileURL)
}

func TestNewBillForm_HandleSubmit_UpdateFailure(t *testing.T) {
	updateErr := errors.New("Erreur 500")
	failing := func() *mockBillStore {
		return &mockBillStore{
			updateFunc: func(ctx context.Context, bill *entity.Bill) error { return updateErr },
		}
	}

	t.Run("optimistic policy navigates anyway", func(t *testing.T) {
		nav := &mockNavigator{}
		form := newTestForm(failing(), nav, NavigateOptimistic)

		err := form.HandleSubmit(context.Background(), validForm())

		assert.ErrorIs(t, err, updateErr)
		assert.Equal(t, []string{port.RouteBills}, nav.routes)
	})

	t.Run("confirmed policy stays on the form", func(t *testing.T) {
		nav := &mockNavigator{}
		form := newTestForm(failing(), nav, NavigateConfirmed)

		err := form.HandleSubmit(context.Background(), validForm())

		assert.ErrorIs(t, err, updateErr)
		assert.Empty(t, nav.routes)
	})

	t.Run("unknown policy behaves optimistically", func(t *testing.T) {
		nav := &mockNavigator{}
		form := newTestForm(failing(), nav, NavigationPolicy("eventually"))

		_ = form.HandleSubmit(context.Background(), validForm())

		assert.Equal(t, []string{port.RouteBills}, nav.routes)
	})
}

func TestNewBillForm_HandleSubmit_NoStore(t *testing.T) {
	nav := &mockNavigator{}
	form := NewNewBillForm(NewBillFormConfig{
		Navigator: nav,
		User:      entity.User{},
		Logger:    &mockLogger{},
	})

	err := form.HandleSubmit(context.Background(), validForm())

	assert.NoError(t, err)
	assert.Equal(t, []string{port.RouteBills}, nav.routes)
}

func TestFactory(t *testing.T) {
	store := &mockBillStore{}
	factory := NewFactory(FactoryConfig{Store: store, Lang: "en", Policy: NavigateConfirmed, Logger: &mockLogger{}})

	assert.Equal(t, "en", factory.Lang())
	assert.True(t, factory.HasStore())

	views, err := factory.BillsList(entity.User{Email: "a@a"}, &mockNavigator{}).GetBills(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4 Apr. 04", views[0].DisplayDate)

	form := factory.NewBillForm(testEmployee, &mockNavigator{}, nil)
	assert.Nil(t, form.Pending())

	assert.False(t, NewFactory(FactoryConfig{Logger: &mockLogger{}}).HasStore())
}
