package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter entity.UserFilter, page entity.PageRequest) (*entity.Page[*entity.User], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.User]), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// MockNotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id string) (*entity.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Update(ctx context.Context, n *entity.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, filter entity.NotificationFilter, page entity.PageRequest) (*entity.Page[*entity.Notification], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Notification]), args.Error(1)
}

func (m *MockNotificationRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[entity.NotificationStatus]int64, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entity.NotificationStatus]int64), args.Error(1)
}

func (m *MockNotificationRepository) ListDueForRetry(ctx context.Context, now time.Time, limit int) ([]*entity.Notification, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

// MockRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(templateKey string, vars map[string]string) (string, error) {
	args := m.Called(templateKey, vars)
	return args.String(0), args.Error(1)
}

// MockMailSender
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(ctx context.Context, msg MailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishNotification(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, input QueueNotificationInput) (*entity.Notification, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Notification), args.Error(1)
}

// MockHasher
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Compare(hash, password string) error {
	return m.Called(hash, password).Error(0)
}

// MockExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id string) (*entity.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Expense), args.Error(1)
}

func (m *MockExpenseRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *MockExpenseRepository) List(ctx context.Context, filter entity.ExpenseFilter, page entity.PageRequest) (*entity.Page[*entity.Expense], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Expense]), args.Error(1)
}

func (m *MockExpenseRepository) Update(ctx context.Context, e *entity.Expense) error {
	return m.Called(ctx, e).Error(0)
}

// MockPropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, p *entity.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id string) (*entity.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}

func (m *MockPropertyRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) List(ctx context.Context, filter entity.PropertyFilter, page entity.PageRequest) (*entity.Page[*entity.Property], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Property]), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, p *entity.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) CreateUnit(ctx context.Context, u *entity.Unit) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockPropertyRepository) FindUnitByID(ctx context.Context, id string) (*entity.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Unit), args.Error(1)
}

func (m *MockPropertyRepository) ListUnits(ctx context.Context, propertyID string) ([]*entity.Unit, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Unit), args.Error(1)
}

func (m *MockPropertyRepository) UnitNumberExists(ctx context.Context, propertyID, unitNumber string) (bool, error) {
	args := m.Called(ctx, propertyID, unitNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) UpdateUnit(ctx context.Context, u *entity.Unit) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockPropertyRepository) CountUnitsByStatus(ctx context.Context, propertyID string, status entity.UnitStatus) (int, error) {
	args := m.Called(ctx, propertyID, status)
	return args.Int(0), args.Error(1)
}

// MockTenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, t *entity.Tenant) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id string) (*entity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantRepository) List(ctx context.Context, filter entity.TenantFilter, page entity.PageRequest) (*entity.Page[*entity.Tenant], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Tenant]), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, t *entity.Tenant) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockChequeRepository
type MockChequeRepository struct {
	mock.Mock
}

func (m *MockChequeRepository) CreateBatch(ctx context.Context, cheques []*entity.Cheque) error {
	return m.Called(ctx, cheques).Error(0)
}

func (m *MockChequeRepository) FindByID(ctx context.Context, id string) (*entity.Cheque, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Cheque), args.Error(1)
}

func (m *MockChequeRepository) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Cheque, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Cheque), args.Error(1)
}

func (m *MockChequeRepository) Update(ctx context.Context, c *entity.Cheque) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockChequeRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	return m.Called(ctx, tenantID).Error(0)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ExistsOpenByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter, page entity.PageRequest) (*entity.Page[*entity.Lead], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Lead]), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

// MockQuotationRepository
type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) Create(ctx context.Context, q *entity.Quotation) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuotationRepository) FindByID(ctx context.Context, id string) (*entity.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *MockQuotationRepository) List(ctx context.Context, filter entity.QuotationFilter, page entity.PageRequest) (*entity.Page[*entity.Quotation], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Quotation]), args.Error(1)
}

func (m *MockQuotationRepository) Update(ctx context.Context, q *entity.Quotation) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuotationRepository) ListSentValidBefore(ctx context.Context, before time.Time) ([]*entity.Quotation, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Quotation), args.Error(1)
}

// MockDashboardRepository
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) ChequeTotalsByStatus(ctx context.Context, f entity.DashboardFilter) ([]entity.GroupTotal, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GroupTotal), args.Error(1)
}

func (m *MockDashboardRepository) ExpenseTotalsByCategory(ctx context.Context, f entity.DashboardFilter) ([]entity.GroupTotal, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GroupTotal), args.Error(1)
}

func (m *MockDashboardRepository) MonthlyTotals(ctx context.Context, propertyID string, year int) ([]entity.MonthTotal, error) {
	args := m.Called(ctx, propertyID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MonthTotal), args.Error(1)
}

func (m *MockDashboardRepository) UnitCountsByStatus(ctx context.Context, propertyID string) ([]entity.GroupTotal, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GroupTotal), args.Error(1)
}

func (m *MockDashboardRepository) LeadCountsByStatus(ctx context.Context, f entity.DashboardFilter) ([]entity.GroupTotal, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GroupTotal), args.Error(1)
}

// MockTextDetector
type MockTextDetector struct {
	mock.Mock
}

func (m *MockTextDetector) DetectText(ctx context.Context, image []byte) ([]TextLine, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TextLine), args.Error(1)
}

// fakeAttemptStore is an in-process AttemptStore that ignores TTLs.
type fakeAttemptStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{counts: map[string]int64{}}
}

func (f *fakeAttemptStore) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeAttemptStore) Get(_ context.Context, key string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, false, f.err
	}
	n, ok := f.counts[key]
	return n, ok, nil
}

func (f *fakeAttemptStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.counts, key)
	return nil
}

// recordingSink collects audit events.
type recordingSink struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (r *recordingSink) Write(_ context.Context, e entity.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// MockWorkOrderRepository
type MockWorkOrderRepository struct {
	mock.Mock
}

func (m *MockWorkOrderRepository) Create(ctx context.Context, w *entity.WorkOrder) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWorkOrderRepository) FindByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *MockWorkOrderRepository) List(ctx context.Context, filter entity.WorkOrderFilter, page entity.PageRequest) (*entity.Page[*entity.WorkOrder], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.WorkOrder]), args.Error(1)
}

func (m *MockWorkOrderRepository) Update(ctx context.Context, w *entity.WorkOrder) error {
	return m.Called(ctx, w).Error(0)
}

// MockComplianceRepository
type MockComplianceRepository struct {
	mock.Mock
}

func (m *MockComplianceRepository) Create(ctx context.Context, c *entity.ComplianceRequirement) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockComplianceRepository) FindByID(ctx context.Context, id string) (*entity.ComplianceRequirement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ComplianceRequirement), args.Error(1)
}

func (m *MockComplianceRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockComplianceRepository) List(ctx context.Context, filter entity.ComplianceFilter, page entity.PageRequest) (*entity.Page[*entity.ComplianceRequirement], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.ComplianceRequirement]), args.Error(1)
}

func (m *MockComplianceRepository) ListOverdue(ctx context.Context, now time.Time) ([]*entity.ComplianceRequirement, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ComplianceRequirement), args.Error(1)
}

func (m *MockComplianceRepository) Update(ctx context.Context, c *entity.ComplianceRequirement) error {
	return m.Called(ctx, c).Error(0)
}

// MockDocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *entity.Document) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, ownerType entity.OwnerType, ownerID string) ([]*entity.Document, error) {
	args := m.Called(ctx, ownerType, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListExpiringBefore(ctx context.Context, before time.Time) ([]*entity.Document, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Document), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, d *entity.Document) error {
	return m.Called(ctx, d).Error(0)
}

// MockBlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	return m.Called(ctx, key, contentType, body).Error(0)
}

func (m *MockBlobStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
