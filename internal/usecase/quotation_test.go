package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type quotationDeps struct {
	repo    *MockQuotationRepository
	leads   *MockLeadRepository
	props   *MockPropertyRepository
	tenants *MockTenantRepository
	cheques *MockChequeRepository
}

var quotationNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newQuotationService() (*QuotationService, quotationDeps) {
	d := quotationDeps{
		repo:    new(MockQuotationRepository),
		leads:   new(MockLeadRepository),
		props:   new(MockPropertyRepository),
		tenants: new(MockTenantRepository),
		cheques: new(MockChequeRepository),
	}
	svc := NewQuotationService(d.repo, d.leads, d.props, d.tenants, d.cheques, nil, nil, nil)
	svc.now = func() time.Time { return quotationNow }
	return svc, d
}

func acceptedQuotation() (*entity.Quotation, *entity.Lead, *entity.Unit) {
	q := &entity.Quotation{
		ID:              "q-1",
		QuotationNumber: "QT-202602-0001",
		LeadID:          "l-1",
		PropertyID:      "p-1",
		UnitID:          "unit-1",
		AnnualRentCents: 1000000,
		NumberOfCheques: 3,
		LeaseStart:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		LeaseMonths:     12,
		ValidUntil:      quotationNow.Add(7 * 24 * time.Hour),
		Status:          entity.QuotationAccepted,
	}
	lead := &entity.Lead{ID: "l-1", FullName: "Omar Haddad", Email: "omar@example.com", Phone: "+971500000000", Status: entity.LeadQuotationSent}
	unit := &entity.Unit{ID: "unit-1", PropertyID: "p-1", UnitNumber: "1204", Status: entity.UnitVacant}
	return q, lead, unit
}

func (d quotationDeps) expectConvertPreconditions(q *entity.Quotation, lead *entity.Lead, unit *entity.Unit) {
	d.repo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
	d.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	d.tenants.On("ExistsByEmail", mock.Anything, lead.Email, "").Return(false, nil)
	d.props.On("FindUnitByID", mock.Anything, unit.ID).Return(unit, nil)
}

func TestQuotationService_Convert(t *testing.T) {
	svc, d := newQuotationService()
	q, lead, unit := acceptedQuotation()
	d.expectConvertPreconditions(q, lead, unit)

	var cheques []*entity.Cheque
	d.props.On("UpdateUnit", mock.Anything, unit).Return(nil)
	d.tenants.On("Create", mock.Anything, mock.AnythingOfType("*entity.Tenant")).Return(nil)
	d.cheques.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { cheques = args.Get(1).([]*entity.Cheque) }).
		Return(nil)
	d.leads.On("Update", mock.Anything, lead).Return(nil)
	d.repo.On("Update", mock.Anything, q).Return(nil)

	tenant, err := svc.Convert(context.Background(), Actor{UserID: "agent"}, "q-1")

	require.NoError(t, err)
	assert.Equal(t, entity.TenantPending, tenant.Status)
	assert.Equal(t, "omar@example.com", tenant.Email)
	assert.Equal(t, "q-1", tenant.QuotationID)
	assert.Equal(t, time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC), tenant.LeaseEnd)

	assert.Equal(t, entity.UnitReserved, unit.Status)
	assert.Equal(t, entity.LeadConverted, lead.Status)
	assert.Equal(t, entity.QuotationConverted, q.Status)
	assert.Equal(t, tenant.ID, q.TenantID)

	require.Len(t, cheques, 3)
	var total int64
	for _, c := range cheques {
		assert.Equal(t, tenant.ID, c.TenantID)
		total += c.AmountCents
	}
	assert.Equal(t, q.AnnualRentCents, total)
	d.tenants.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestQuotationService_Convert_CompensatesOnChequeFailure(t *testing.T) {
	svc, d := newQuotationService()
	q, lead, unit := acceptedQuotation()
	d.expectConvertPreconditions(q, lead, unit)

	var unitWrites []entity.UnitStatus
	var tenantID string
	d.props.On("UpdateUnit", mock.Anything, unit).
		Run(func(args mock.Arguments) { unitWrites = append(unitWrites, args.Get(1).(*entity.Unit).Status) }).
		Return(nil)
	d.tenants.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { tenantID = args.Get(1).(*entity.Tenant).ID }).
		Return(nil)
	d.cheques.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	d.tenants.On("Delete", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Convert(context.Background(), Actor{}, "q-1")

	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	assert.Contains(t, err.Error(), "create cheques")

	d.tenants.AssertCalled(t, "Delete", mock.Anything, tenantID)
	assert.Equal(t, []entity.UnitStatus{entity.UnitReserved, entity.UnitVacant}, unitWrites)
	d.cheques.AssertNotCalled(t, "DeleteByTenant", mock.Anything, mock.Anything)
	d.leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	d.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Equal(t, entity.QuotationAccepted, q.Status)
}

func TestQuotationService_Convert_DuplicateTenant(t *testing.T) {
	svc, d := newQuotationService()
	q, lead, unit := acceptedQuotation()
	d.expectConvertPreconditions(q, lead, unit)

	d.props.On("UpdateUnit", mock.Anything, unit).Return(nil)
	d.tenants.On("Create", mock.Anything, mock.Anything).Return(entity.ErrDuplicate)

	_, err := svc.Convert(context.Background(), Actor{}, "q-1")

	assert.Equal(t, CodeDuplicate, ErrorCode(err))
	d.props.AssertNumberOfCalls(t, "UpdateUnit", 2)
	assert.Equal(t, entity.UnitVacant, unit.Status)
	d.tenants.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestQuotationService_Convert_Preconditions(t *testing.T) {
	t.Run("not accepted", func(t *testing.T) {
		svc, d := newQuotationService()
		q, _, _ := acceptedQuotation()
		q.Status = entity.QuotationSent
		d.repo.On("FindByID", mock.Anything, "q-1").Return(q, nil)

		_, err := svc.Convert(context.Background(), Actor{}, "q-1")
		assert.Equal(t, CodeInvalidState, ErrorCode(err))
	})

	t.Run("tenant email exists", func(t *testing.T) {
		svc, d := newQuotationService()
		q, lead, _ := acceptedQuotation()
		d.repo.On("FindByID", mock.Anything, "q-1").Return(q, nil)
		d.leads.On("FindByID", mock.Anything, "l-1").Return(lead, nil)
		d.tenants.On("ExistsByEmail", mock.Anything, lead.Email, "").Return(true, nil)

		_, err := svc.Convert(context.Background(), Actor{}, "q-1")
		assert.Equal(t, CodeDuplicate, ErrorCode(err))
	})

	t.Run("unit occupied", func(t *testing.T) {
		svc, d := newQuotationService()
		q, lead, unit := acceptedQuotation()
		unit.Status = entity.UnitOccupied
		d.expectConvertPreconditions(q, lead, unit)

		_, err := svc.Convert(context.Background(), Actor{}, "q-1")
		assert.Equal(t, CodeInvalidState, ErrorCode(err))
		d.props.AssertNotCalled(t, "UpdateUnit", mock.Anything, mock.Anything)
	})
}

func TestQuotationService_Accept_ExpiresStaleQuotation(t *testing.T) {
	svc, d := newQuotationService()
	q, _, _ := acceptedQuotation()
	q.Status = entity.QuotationSent
	q.ValidUntil = quotationNow.Add(-time.Hour)

	d.repo.On("FindByID", mock.Anything, "q-1").Return(q, nil)
	d.repo.On("Update", mock.Anything, q).Return(nil)

	_, err := svc.Accept(context.Background(), Actor{}, "q-1")

	assert.Equal(t, CodeInvalidState, ErrorCode(err))
	assert.Equal(t, entity.QuotationExpired, q.Status)
}

func TestQuotationService_Reject(t *testing.T) {
	svc, d := newQuotationService()
	q, _, _ := acceptedQuotation()
	q.Status = entity.QuotationSent

	d.repo.On("FindByID", mock.Anything, "q-1").Return(q, nil)
	d.repo.On("Update", mock.Anything, q).Return(nil)

	out, err := svc.Reject(context.Background(), Actor{}, "q-1")

	require.NoError(t, err)
	assert.Equal(t, entity.QuotationRejected, out.Status)
	require.NotNil(t, out.RespondedAt)
	assert.Equal(t, quotationNow, *out.RespondedAt)

	_, err = svc.Accept(context.Background(), Actor{}, "q-1")
	assert.Equal(t, CodeInvalidState, ErrorCode(err))
}

func TestQuotationService_ExpireDue(t *testing.T) {
	svc, d := newQuotationService()
	a := &entity.Quotation{ID: "q-1", Status: entity.QuotationSent}
	b := &entity.Quotation{ID: "q-2", Status: entity.QuotationSent}

	d.repo.On("ListSentValidBefore", mock.Anything, quotationNow).Return([]*entity.Quotation{a, b}, nil)
	d.repo.On("Update", mock.Anything, a).Return(nil)
	d.repo.On("Update", mock.Anything, b).Return(errors.New("timeout"))

	n, err := svc.ExpireDue(context.Background(), quotationNow)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, entity.QuotationExpired, a.Status)
}

func TestQuotationService_Create_DefaultValidity(t *testing.T) {
	svc, d := newQuotationService()
	_, lead, unit := acceptedQuotation()
	lead.Status = entity.LeadContacted

	d.leads.On("FindByID", mock.Anything, "l-1").Return(lead, nil)
	d.props.On("FindUnitByID", mock.Anything, "unit-1").Return(unit, nil)
	d.repo.On("CountByNumberPrefix", mock.Anything, "QT-202603-").Return(0, nil)
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	q, err := svc.Create(context.Background(), Actor{UserID: "agent"}, CreateQuotationInput{
		LeadID:          "l-1",
		UnitID:          "unit-1",
		AnnualRentCents: 9000000,
		NumberOfCheques: 4,
		LeaseStart:      "2026-04-01",
		LeaseMonths:     12,
	})

	require.NoError(t, err)
	assert.Equal(t, "QT-202603-0001", q.QuotationNumber)
	assert.Equal(t, entity.QuotationDraft, q.Status)
	assert.Equal(t, quotationNow.Add(14*24*time.Hour), q.ValidUntil)
	assert.Equal(t, "p-1", q.PropertyID)
}
