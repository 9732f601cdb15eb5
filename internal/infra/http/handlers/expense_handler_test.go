package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type MockExpenseUseCase struct {
	mock.Mock
}

func (m *MockExpenseUseCase) expense(args mock.Arguments) (*entity.Expense, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Expense), args.Error(1)
}

func (m *MockExpenseUseCase) Create(ctx context.Context, actor usecase.Actor, input usecase.CreateExpenseInput) (*entity.Expense, error) {
	return m.expense(m.Called(ctx, actor, input))
}

func (m *MockExpenseUseCase) Get(ctx context.Context, id string) (*entity.Expense, error) {
	return m.expense(m.Called(ctx, id))
}

func (m *MockExpenseUseCase) List(ctx context.Context, filter entity.ExpenseFilter, page entity.PageRequest) (*entity.Page[*entity.Expense], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Expense]), args.Error(1)
}

func (m *MockExpenseUseCase) Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdateExpenseInput) (*entity.Expense, error) {
	return m.expense(m.Called(ctx, actor, id, input))
}

func (m *MockExpenseUseCase) Pay(ctx context.Context, actor usecase.Actor, id string, input usecase.PayExpenseInput) (*entity.Expense, error) {
	return m.expense(m.Called(ctx, actor, id, input))
}

func (m *MockExpenseUseCase) BatchPay(ctx context.Context, actor usecase.Actor, input usecase.BatchPayInput) (*usecase.BatchPayResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.BatchPayResult), args.Error(1)
}

func (m *MockExpenseUseCase) Cancel(ctx context.Context, actor usecase.Actor, id string) (*entity.Expense, error) {
	return m.expense(m.Called(ctx, actor, id))
}

func (m *MockExpenseUseCase) Delete(ctx context.Context, actor usecase.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func expenseRouter(uc ExpenseUseCase) http.Handler {
	r := chi.NewRouter()
	r.Route("/expenses", NewExpenseHandler(uc, zap.NewNop()).Routes)
	return r
}

func TestExpenseHandler_BatchPay_PartialFailure(t *testing.T) {
	uc := new(MockExpenseUseCase)
	input := usecase.BatchPayInput{ExpenseIDs: []string{"e-1", "e-2"}, PaymentMethod: "BANK_TRANSFER", PaymentReference: "TRX-77"}
	uc.On("BatchPay", mock.Anything, mock.Anything, input).Return(&usecase.BatchPayResult{
		TotalProcessed:   2,
		SuccessCount:     1,
		FailedCount:      1,
		TotalAmountCents: 150000,
		Results: []usecase.BatchPayItem{
			{ExpenseID: "e-1", Success: true},
			{ExpenseID: "e-2", Success: false},
		},
	}, nil)

	body := `{"expense_ids":["e-1","e-2"],"payment_method":"BANK_TRANSFER","payment_reference":"TRX-77"}`
	rec := httptest.NewRecorder()
	expenseRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/expenses/batch-pay", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got usecase.BatchPayResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 1, got.FailedCount)
	assert.Equal(t, int64(150000), got.TotalAmountCents)
	uc.AssertExpectations(t)
}

func TestExpenseHandler_Pay_AlreadyPaid(t *testing.T) {
	uc := new(MockExpenseUseCase)
	uc.On("Pay", mock.Anything, mock.Anything, "e-1", usecase.PayExpenseInput{PaymentMethod: "CASH"}).
		Return(nil, usecase.InvalidState("expense EXP-2026-0001 is already PAID"))

	rec := httptest.NewRecorder()
	expenseRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/expenses/e-1/pay", strings.NewReader(`{"payment_method":"CASH"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, usecase.CodeInvalidState, decodeError(t, rec).Code)
}

func TestExpenseHandler_List_DateRange(t *testing.T) {
	uc := new(MockExpenseUseCase)
	uc.On("List", mock.Anything, mock.MatchedBy(func(f entity.ExpenseFilter) bool {
		return f.Category == entity.CategoryUtilities &&
			f.DateFrom != nil && f.DateTo != nil &&
			f.DateFrom.Month() == 1 && f.DateTo.Month() == 3
	}), mock.Anything).Return(&entity.Page[*entity.Expense]{Items: []*entity.Expense{}}, nil)

	rec := httptest.NewRecorder()
	expenseRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses/?category=utilities&date_from=2026-01-01&date_to=2026-03-31", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

func TestExpenseHandler_Create_InvalidJSON(t *testing.T) {
	uc := new(MockExpenseUseCase)

	rec := httptest.NewRecorder()
	expenseRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/expenses/", strings.NewReader(`{"amount_cents":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}
