package service

import (
	"context"
	"sync"

	"github.com/garyjia/billed/internal/domain/entity"
)

// mockBillStore records calls and delegates to optional function fields
type mockBillStore struct {
	mu          sync.Mutex
	listFunc    func(ctx context.Context, email string) ([]*entity.Bill, error)
	createFunc  func(ctx context.Context, file *entity.FileUpload) (*entity.UploadResult, error)
	updateFunc  func(ctx context.Context, bill *entity.Bill) error
	listCalls   []string
	createCalls []*entity.FileUpload
	updateCalls []*entity.Bill
}

func (m *mockBillStore) List(ctx context.Context, email string) ([]*entity.Bill, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, email)
	m.mu.Unlock()
	if m.listFunc != nil {
		return m.listFunc(ctx, email)
	}
	return fixtureBills(), nil
}

func (m *mockBillStore) Create(ctx context.Context, file *entity.FileUpload) (*entity.UploadResult, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, file)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, file)
	}
	return &entity.UploadResult{FileURL: "https://localhost:3456/images/test.jpg", Key: "1234"}, nil
}

func (m *mockBillStore) Update(ctx context.Context, bill *entity.Bill) error {
	m.mu.Lock()
	m.updateCalls = append(m.updateCalls, bill)
	m.mu.Unlock()
	if m.updateFunc != nil {
		return m.updateFunc(ctx, bill)
	}
	return nil
}

type mockNavigator struct {
	routes []string
}

func (m *mockNavigator) Navigate(route string) {
	m.routes = append(m.routes, route)
}

type mockLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {}

func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, msg)
}

// fixtureBills returns bills in non chronological order
func fixtureBills() []*entity.Bill {
	return []*entity.Bill{
		{
			ID:       "47qAXb6fIm2zOKkLzMro",
			Email:    "a@a",
			Type:     entity.ExpenseTypeHotel,
			Name:     "encore",
			Amount:   400,
			Date:     "2004-04-04",
			VAT:      "80",
			Pct:      20,
			FileURL:  "https://test.storage.tld/v0/b/billable-677b6.a…f-1.jpg",
			FileName: "preview-facture-free-201801-pdf-1.jpg",
			Status:   entity.StatusPending,
		},
		{
			ID:       "BeKy5Mo4jkmdfPGYpTxZ",
			Email:    "a@a",
			Type:     entity.ExpenseTypeTransport,
			Name:     "test1",
			Amount:   100,
			Date:     "2001-01-01",
			VAT:      "",
			Pct:      20,
			FileURL:  "https://test.storage.tld/v0/b/billable-677b6.a…61.jpeg",
			FileName: "1592770761.jpeg",
			Status:   entity.StatusRefused,
		},
		{
			ID:       "UIUZtnPQvnbFnB0ozvJh",
			Email:    "a@a",
			Type:     entity.ExpenseTypeOnlineService,
			Name:     "test3",
			Amount:   300,
			Date:     "2003-03-03",
			VAT:      "60",
			Pct:      20,
			FileURL:  "https://test.storage.tld/v0/b/billable-677b6.a…20.jpeg",
			FileName: "facture-client-php-exportee-dans-document-pdf-enregistre-sur-disque-dur.png",
			Status:   entity.StatusAccepted,
		},
		{
			ID:       "qcCK3SzECmaZAGRrHjaC",
			Email:    "a@a",
			Type:     entity.ExpenseTypeRestaurant,
			Name:     "test2",
			Amount:   200,
			Date:     "2002-02-02",
			VAT:      "40",
			Pct:      20,
			FileURL:  "https://test.storage.tld/v0/b/billable-677b6.a…f-1.jpg",
			FileName: "preview-facture-free-201801-pdf-1.jpg",
			Status:   entity.StatusRefused,
		},
	}
}
