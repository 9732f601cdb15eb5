package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

var workOrderNow = time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)

func newWorkOrderService() (*WorkOrderService, *MockWorkOrderRepository, *MockPropertyRepository, *MockUserRepository, *MockNotifier) {
	repo := new(MockWorkOrderRepository)
	props := new(MockPropertyRepository)
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := NewWorkOrderService(repo, props, users, notifier, nil, nil)
	svc.now = func() time.Time { return workOrderNow }
	return svc, repo, props, users, notifier
}

func TestWorkOrderService_Create(t *testing.T) {
	svc, repo, props, _, _ := newWorkOrderService()

	props.On("FindByID", mock.Anything, "p-1").Return(&entity.Property{ID: "p-1"}, nil)
	props.On("FindUnitByID", mock.Anything, "u-1").Return(&entity.Unit{ID: "u-1", PropertyID: "p-1"}, nil)
	repo.On("CountByNumberPrefix", mock.Anything, "WO-202611-").Return(9, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.WorkOrder")).Return(nil)

	w, err := svc.Create(context.Background(), Actor{UserID: "pm"}, CreateWorkOrderInput{
		PropertyID: "p-1",
		UnitID:     "u-1",
		Title:      "Leaking AC drain",
	})

	require.NoError(t, err)
	assert.Equal(t, "WO-202611-0010", w.Number)
	assert.Equal(t, entity.PriorityMedium, w.Priority)
	assert.Equal(t, entity.WorkOrderOpen, w.Status)
	assert.Equal(t, "pm", w.CreatedBy)
}

func TestWorkOrderService_Create_Rejects(t *testing.T) {
	svc, repo, props, _, _ := newWorkOrderService()
	props.On("FindByID", mock.Anything, "p-1").Return(&entity.Property{ID: "p-1"}, nil)
	props.On("FindByID", mock.Anything, "p-9").Return(nil, entity.ErrNotFound)
	props.On("FindUnitByID", mock.Anything, "u-2").Return(&entity.Unit{ID: "u-2", PropertyID: "p-2", UnitNumber: "12"}, nil)

	_, err := svc.Create(context.Background(), Actor{}, CreateWorkOrderInput{PropertyID: "p-1", Title: "Paint", Priority: "someday"})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	_, err = svc.Create(context.Background(), Actor{}, CreateWorkOrderInput{PropertyID: "p-9", Title: "Paint"})
	assert.Equal(t, CodeNotFound, ErrorCode(err))

	_, err = svc.Create(context.Background(), Actor{}, CreateWorkOrderInput{PropertyID: "p-1", UnitID: "u-2", Title: "Paint"})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWorkOrderService_ChangeStatus_NotifiesAssignee(t *testing.T) {
	svc, repo, _, users, notifier := newWorkOrderService()
	w := &entity.WorkOrder{ID: "w-1", Number: "WO-202611-0001", Title: "Leak", Status: entity.WorkOrderOpen, AssignedTo: "tech-1"}

	repo.On("FindByID", mock.Anything, "w-1").Return(w, nil)
	repo.On("Update", mock.Anything, w).Return(nil)
	users.On("FindByID", mock.Anything, "tech-1").Return(&entity.User{ID: "tech-1", Email: "omar@example.com", FullName: "Omar"}, nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(in QueueNotificationInput) bool {
		return in.Type == entity.NotificationWorkOrderUpdated && in.RecipientEmail == "omar@example.com"
	})).Return(&entity.Notification{}, nil)

	_, err := svc.ChangeStatus(context.Background(), Actor{}, "w-1", entity.WorkOrderCompleted)
	assert.Equal(t, CodeInvalidState, ErrorCode(err))

	out, err := svc.ChangeStatus(context.Background(), Actor{}, "w-1", entity.WorkOrderInProgress)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderInProgress, out.Status)
	assert.Nil(t, out.CompletedAt)

	out, err = svc.ChangeStatus(context.Background(), Actor{}, "w-1", entity.WorkOrderCompleted)
	require.NoError(t, err)
	require.NotNil(t, out.CompletedAt)
	assert.Equal(t, workOrderNow, *out.CompletedAt)

	notifier.AssertNumberOfCalls(t, "Notify", 2)

	err = svc.Delete(context.Background(), Actor{}, "w-1")
	assert.Equal(t, CodeInvalidState, ErrorCode(err))
}
