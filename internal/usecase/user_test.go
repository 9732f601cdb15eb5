package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

func newUser(t *testing.T, id string, role entity.Role) *entity.User {
	t.Helper()
	u, err := entity.NewUser(id+"@example.com", "User "+id, "hash-"+id, role)
	require.NoError(t, err)
	u.ID = id
	return u
}

func TestUserService_Create(t *testing.T) {
	repo := new(MockUserRepository)
	hasher := new(MockHasher)
	notifier := new(MockNotifier)
	svc := NewUserService(repo, hasher, notifier, nil, nil)
	admin := Actor{UserID: "admin", Role: entity.RoleAdmin}

	repo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	hasher.On("Hash", "passw0rdX").Return("hashed", nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(in QueueNotificationInput) bool {
		return in.Type == entity.NotificationWelcome && in.RecipientEmail == "new@example.com"
	})).Return(&entity.Notification{}, nil)

	u, err := svc.Create(context.Background(), admin, CreateUserInput{
		Email:    "new@example.com",
		FullName: "New Person",
		Password: "passw0rdX",
		Role:     "leasing_agent",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleLeasingAgent, u.Role)
	assert.Equal(t, "hashed", u.PasswordHash)
	assert.True(t, u.Active)
	repo.AssertExpectations(t)
}

func TestUserService_Create_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		input CreateUserInput
		setup func(*MockUserRepository)
		code  string
	}{
		{
			name:  "weak password",
			actor: Actor{Role: entity.RoleAdmin},
			input: CreateUserInput{Email: "a@example.com", FullName: "Ana", Password: "short", Role: "VIEWER"},
			code:  CodeValidation,
		},
		{
			name:  "unknown role",
			actor: Actor{Role: entity.RoleAdmin},
			input: CreateUserInput{Email: "a@example.com", FullName: "Ana", Password: "passw0rdX", Role: "OWNER"},
			code:  CodeValidation,
		},
		{
			name:  "admin granting super admin",
			actor: Actor{Role: entity.RoleAdmin},
			input: CreateUserInput{Email: "a@example.com", FullName: "Ana", Password: "passw0rdX", Role: "SUPER_ADMIN"},
			code:  CodeAccessDenied,
		},
		{
			name:  "email taken",
			actor: Actor{Role: entity.RoleSuperAdmin},
			input: CreateUserInput{Email: "a@example.com", FullName: "Ana", Password: "passw0rdX", Role: "SUPER_ADMIN"},
			setup: func(r *MockUserRepository) {
				r.On("ExistsByEmail", mock.Anything, "a@example.com").Return(true, nil)
			},
			code: CodeDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.setup != nil {
				tt.setup(repo)
			}
			svc := NewUserService(repo, new(MockHasher), nil, nil, nil)

			_, err := svc.Create(context.Background(), tt.actor, tt.input)

			assert.Equal(t, tt.code, ErrorCode(err))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUserService_Deactivate_Self(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, nil, nil, nil, nil)

	_, err := svc.Deactivate(context.Background(), Actor{UserID: "u-1", Role: entity.RoleAdmin}, "u-1")

	assert.Equal(t, CodeInvalidState, ErrorCode(err))
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestUserService_SuperAdminGuard(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, nil, nil, nil, nil)
	target := newUser(t, "root", entity.RoleSuperAdmin)
	admin := Actor{UserID: "admin", Role: entity.RoleAdmin}

	repo.On("FindByID", mock.Anything, "root").Return(target, nil)

	_, err := svc.Deactivate(context.Background(), admin, "root")
	assert.Equal(t, CodeAccessDenied, ErrorCode(err))

	err = svc.Delete(context.Background(), admin, "root")
	assert.Equal(t, CodeAccessDenied, ErrorCode(err))

	err = svc.ChangePassword(context.Background(), admin, "root", ChangePasswordInput{NewPassword: "passw0rdX"})
	assert.Equal(t, CodeAccessDenied, ErrorCode(err))

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_Deactivate(t *testing.T) {
	repo := new(MockUserRepository)
	sink := &recordingSink{}
	svc := NewUserService(repo, nil, nil, NewAuditLogger(sink, nil), nil)
	target := newUser(t, "u-2", entity.RoleViewer)

	repo.On("FindByID", mock.Anything, "u-2").Return(target, nil)
	repo.On("Update", mock.Anything, target).Return(nil)

	u, err := svc.Deactivate(context.Background(), Actor{UserID: "admin", Role: entity.RoleAdmin}, "u-2")
	require.NoError(t, err)
	assert.False(t, u.Active)
	assert.Equal(t, []string{"USER_DEACTIVATED"}, sink.actions())

	_, err = svc.Deactivate(context.Background(), Actor{UserID: "admin", Role: entity.RoleAdmin}, "u-2")
	assert.Equal(t, CodeInvalidState, ErrorCode(err))
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Run("self with wrong current password", func(t *testing.T) {
		repo := new(MockUserRepository)
		hasher := new(MockHasher)
		svc := NewUserService(repo, hasher, nil, nil, nil)
		u := newUser(t, "u-1", entity.RoleViewer)

		repo.On("FindByID", mock.Anything, "u-1").Return(u, nil)
		hasher.On("Compare", "hash-u-1", "nope").Return(errors.New("mismatch"))

		err := svc.ChangePassword(context.Background(), Actor{UserID: "u-1", Role: entity.RoleViewer}, "u-1",
			ChangePasswordInput{CurrentPassword: "nope", NewPassword: "newpassw0rd"})

		assert.Equal(t, CodeValidation, ErrorCode(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("non admin resetting someone else", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockHasher), nil, nil, nil)
		repo.On("FindByID", mock.Anything, "u-2").Return(newUser(t, "u-2", entity.RoleViewer), nil)

		err := svc.ChangePassword(context.Background(), Actor{UserID: "u-1", Role: entity.RoleAccountant}, "u-2",
			ChangePasswordInput{NewPassword: "newpassw0rd"})

		assert.Equal(t, CodeAccessDenied, ErrorCode(err))
	})

	t.Run("admin reset notifies the user", func(t *testing.T) {
		repo := new(MockUserRepository)
		hasher := new(MockHasher)
		notifier := new(MockNotifier)
		svc := NewUserService(repo, hasher, notifier, nil, nil)
		u := newUser(t, "u-2", entity.RoleViewer)

		repo.On("FindByID", mock.Anything, "u-2").Return(u, nil)
		hasher.On("Hash", "newpassw0rd").Return("new-hash", nil)
		repo.On("Update", mock.Anything, u).Return(nil)
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(in QueueNotificationInput) bool {
			return in.Type == entity.NotificationPasswordChanged
		})).Return(nil, errors.New("queue down"))

		err := svc.ChangePassword(context.Background(), Actor{UserID: "admin", Role: entity.RoleAdmin}, "u-2",
			ChangePasswordInput{NewPassword: "newpassw0rd"})

		require.NoError(t, err)
		assert.Equal(t, "new-hash", u.PasswordHash)
		notifier.AssertExpectations(t)
	})
}

func TestUserService_Delete_Self(t *testing.T) {
	svc := NewUserService(new(MockUserRepository), nil, nil, nil, nil)

	err := svc.Delete(context.Background(), Actor{UserID: "u-1", Role: entity.RoleSuperAdmin}, "u-1")

	assert.Equal(t, CodeInvalidState, ErrorCode(err))
}
