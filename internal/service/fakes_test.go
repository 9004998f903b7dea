package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenplate/campus-client/internal/db"
	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/repository"
	"github.com/greenplate/campus-client/internal/repository/dao"
	"github.com/greenplate/campus-client/internal/state"
)

type repos struct {
	cart   *repository.CartRepository
	orders *repository.OrderRepository
	deals  *repository.DealRepository
}

func openRepos(t *testing.T) repos {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))

	return repos{
		cart:   repository.NewCartRepository(dao.NewCartDAO(gdb)),
		orders: repository.NewOrderRepository(dao.NewOrderDAO(gdb)),
		deals:  repository.NewDealRepository(dao.NewDealDAO(gdb)),
	}
}

func studentStore(uid string) *state.Store {
	store := state.NewStore()
	store.SignIn(domain.Identity{UID: uid, Email: uid + "@campus.edu", DisplayName: uid}, domain.RoleStudent, nil, true)
	return store
}

func staffStore(uid, stallID string, role domain.StaffRole) *state.Store {
	store := state.NewStore()
	store.SignIn(domain.Identity{UID: uid, Email: uid + "@campus.edu"}, domain.RoleStaff,
		&domain.StaffProfile{Role: role, StallID: stallID, Email: uid + "@campus.edu"}, true)
	return store
}

type fakeBackend struct {
	mu sync.Mutex

	calls []string

	intent    domain.OrderIntent
	intentErr error
	verifyErr error
	verified  []domain.OrderVerification

	orders    []domain.Order
	paid      []domain.Order
	ordersErr error
	onOrders  func()

	verifyStudentErr error
	verifyStaffErr   error
	activateErr      error
	profile          domain.StaffProfile
	profileErr       error

	menu    []domain.Stall
	menuErr error

	team    []domain.StaffMember
	teamErr error
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) CreateOrderIntent(_ context.Context, req domain.OrderIntentRequest) (domain.OrderIntent, error) {
	f.record("CreateOrderIntent")
	return f.intent, f.intentErr
}

func (f *fakeBackend) VerifyOrder(_ context.Context, v domain.OrderVerification) error {
	f.record("VerifyOrder")
	f.mu.Lock()
	f.verified = append(f.verified, v)
	f.mu.Unlock()
	return f.verifyErr
}

func (f *fakeBackend) GetOrders(context.Context) ([]domain.Order, error) {
	f.record("GetOrders")
	if f.onOrders != nil {
		f.onOrders()
	}
	return append([]domain.Order(nil), f.orders...), f.ordersErr
}

func (f *fakeBackend) GetPaidOrders(context.Context) ([]domain.Order, error) {
	f.record("GetPaidOrders")
	return append([]domain.Order(nil), f.paid...), f.ordersErr
}

func (f *fakeBackend) VerifyStudent(context.Context) error {
	f.record("VerifyStudent")
	return f.verifyStudentErr
}

func (f *fakeBackend) VerifyStaff(context.Context) error {
	f.record("VerifyStaff")
	return f.verifyStaffErr
}

func (f *fakeBackend) ActivateStaff(context.Context) error {
	f.record("ActivateStaff")
	return f.activateErr
}

func (f *fakeBackend) GetStaffProfile(context.Context) (domain.StaffProfile, error) {
	f.record("GetStaffProfile")
	return f.profile, f.profileErr
}

func (f *fakeBackend) GetMenu(context.Context) ([]domain.Stall, error) {
	f.record("GetMenu")
	return f.menu, f.menuErr
}

func (f *fakeBackend) ListStaff(context.Context) ([]domain.StaffMember, error) {
	f.record("ListStaff")
	return f.team, f.teamErr
}

func (f *fakeBackend) AddStaffMember(_ context.Context, email string) error {
	f.record("AddStaffMember:" + email)
	return nil
}

func (f *fakeBackend) DeleteStaffMember(_ context.Context, uid string) error {
	f.record("DeleteStaffMember:" + uid)
	return nil
}

func (f *fakeBackend) UpdateStaffEmail(_ context.Context, uid, newEmail string) error {
	f.record("UpdateStaffEmail:" + uid + ":" + newEmail)
	return nil
}

type fakeWidget struct {
	loadErr  error
	outcome  domain.PaymentOutcome
	openErr  error
	opened   []domain.WidgetOptions
	onOpen   func()
	loadHits int
}

func (f *fakeWidget) LoadSDK(context.Context) error {
	f.loadHits++
	return f.loadErr
}

func (f *fakeWidget) Open(_ context.Context, opts domain.WidgetOptions) (domain.PaymentOutcome, error) {
	f.opened = append(f.opened, opts)
	if f.onOpen != nil {
		f.onOpen()
	}
	return f.outcome, f.openErr
}

type fakeIdentity struct {
	identity  domain.Identity
	signInErr error
	tokenErr  error
	signOuts  int
	signedUp  bool
}

func (f *fakeIdentity) SignIn(_ context.Context, email, _ string) (domain.Identity, error) {
	if f.signInErr != nil {
		return domain.Identity{}, f.signInErr
	}
	return f.identity, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	f.signedUp = true
	return f.SignIn(ctx, email, password)
}

func (f *fakeIdentity) Token(context.Context, bool) (string, error) {
	return "token", f.tokenErr
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.signOuts++
	return nil
}

type noopLoader struct{}

func (noopLoader) Load(context.Context) error { return nil }

type fakeStalls map[string]string

func (f fakeStalls) StallName(_ context.Context, id string) (string, error) {
	return f[id], nil
}

var (
	wrap = domain.MenuItem{ItemID: "wrap", Name: "Paneer Wrap", UnitPrice: 8000, Category: "mains", IsAvailable: true}
	chai = domain.MenuItem{ItemID: "chai", Name: "Masala Chai", UnitPrice: 2000, Category: "drinks", IsAvailable: true}
)
