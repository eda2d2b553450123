package customers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/internal/ledger"
	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
)

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*models.Customer
	byEmail   map[string]uuid.UUID
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: map[uuid.UUID]*models.Customer{},
		byEmail:   map[string]uuid.UUID{},
	}
}

func (f *fakeCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	if customer.Email != nil {
		if _, exists := f.byEmail[*customer.Email]; exists {
			return gorm.ErrDuplicatedKey
		}
	}
	customer.ID = uuid.New()
	copied := *customer
	f.customers[customer.ID] = &copied
	if customer.Email != nil {
		f.byEmail[*customer.Email] = customer.ID
	}
	return nil
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *customer
	return &copied, nil
}

func (f *fakeCustomerRepo) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.FindByID(ctx, id)
}

type fakeLedgerService struct {
	balances map[uuid.UUID]int
	entries  map[uuid.UUID][]models.PointLedgerEntry
}

func (f *fakeLedgerService) WithTx(tx *gorm.DB) ledger.Service { return f }

func (f *fakeLedgerService) Apply(ctx context.Context, input ledger.ApplyInput) (int, error) {
	return 0, nil
}

func (f *fakeLedgerService) Balance(ctx context.Context, customerID uuid.UUID) (int, error) {
	balance, ok := f.balances[customerID]
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return balance, nil
}

func (f *fakeLedgerService) History(ctx context.Context, customerID uuid.UUID, limit int) ([]models.PointLedgerEntry, error) {
	entries := f.entries[customerID]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func newTestService(t *testing.T, repo Repository, ledgerSvc ledger.Service) Service {
	t.Helper()
	svc, err := NewService(repo, ledgerSvc)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterNormalizesEmail(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newTestService(t, repo, &fakeLedgerService{})

	email := "  Hanako@Example.COM "
	created, err := svc.Register(context.Background(), RegisterCustomerInput{Name: "Hanako", Email: &email})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Email == nil || *created.Email != "hanako@example.com" {
		t.Fatalf("email not normalized: %v", created.Email)
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	svc := newTestService(t, newFakeCustomerRepo(), &fakeLedgerService{})

	_, err := svc.Register(context.Background(), RegisterCustomerInput{Name: "  "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPointHistoryCombinesBalanceAndEntries(t *testing.T) {
	repo := newFakeCustomerRepo()
	customerID := uuid.New()
	repo.customers[customerID] = &models.Customer{ID: customerID, Name: "Hanako", PointsBalance: 453}

	ledgerSvc := &fakeLedgerService{
		balances: map[uuid.UUID]int{customerID: 453},
		entries: map[uuid.UUID][]models.PointLedgerEntry{
			customerID: {
				{ID: uuid.New(), CustomerID: customerID, Delta: 153, Kind: enums.LedgerEntryKindEarned, Description: "payment code 12345", CreatedAt: time.Now()},
				{ID: uuid.New(), CustomerID: customerID, Delta: -200, Kind: enums.LedgerEntryKindSpent, Description: "payment code 12345", CreatedAt: time.Now()},
			},
		},
	}

	svc := newTestService(t, repo, ledgerSvc)
	history, err := svc.PointHistory(context.Background(), customerID, 10)
	if err != nil {
		t.Fatalf("point history: %v", err)
	}
	if history.Balance != 453 {
		t.Errorf("balance: want 453, got %d", history.Balance)
	}
	if len(history.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history.Entries))
	}
	if history.Entries[0].Kind != enums.LedgerEntryKindEarned {
		t.Errorf("unexpected first entry: %+v", history.Entries[0])
	}
}

func TestGetByIDUnknownCustomer(t *testing.T) {
	svc := newTestService(t, newFakeCustomerRepo(), &fakeLedgerService{})

	_, err := svc.GetByID(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
