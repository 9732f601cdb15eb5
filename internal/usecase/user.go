package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type CreateUserInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserInput struct {
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UserService struct {
	Repo     entity.UserRepository
	Hasher   PasswordHasher
	Notifier Notifier
	Audit    *AuditLogger
	logger   *zap.Logger
}

func NewUserService(repo entity.UserRepository, hasher PasswordHasher, notifier Notifier, audit *AuditLogger, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{Repo: repo, Hasher: hasher, Notifier: notifier, Audit: audit, logger: logger}
}

func (s *UserService) Create(ctx context.Context, actor Actor, input CreateUserInput) (*entity.User, error) {
	var errs []ValidationError
	errs = requireEmail(errs, "email", input.Email)
	errs = requireText(errs, "full_name", input.FullName, 2, 150)
	if !isValidPassword(input.Password) {
		errs = append(errs, ValidationError{"password", "must have at least 8 characters with letters and digits"})
	}
	role, ok := entity.ParseRole(input.Role)
	if !ok {
		errs = append(errs, ValidationError{"role", "is invalid"})
	}
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	if !entity.CanAssign(actor.Role, role) {
		return nil, AccessDenied("role %s cannot assign role %s", actor.Role, role)
	}

	exists, err := s.Repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, dbError("failed to check email", err)
	}
	if exists {
		return nil, Duplicate("a user with email %s already exists", input.Email)
	}

	hash, err := s.Hasher.Hash(input.Password)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}

	user, err := entity.NewUser(input.Email, input.FullName, hash, role)
	if err != nil {
		return nil, Validation("%s", err.Error())
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("a user with email %s already exists", input.Email)
		}
		return nil, dbError("failed to create user", err)
	}

	s.Audit.Record(ctx, actor, "USER_CREATED", "USER", user.ID, map[string]string{"role": string(role)})

	if s.Notifier != nil {
		if _, err := s.Notifier.Notify(ctx, QueueNotificationInput{
			Type:              entity.NotificationWelcome,
			RecipientEmail:    user.Email,
			RecipientName:     user.FullName,
			Subject:           "Welcome to Ligue Imóveis",
			TemplateKey:       "welcome",
			Variables:         map[string]string{"name": user.FullName, "role": string(user.Role)},
			RelatedEntityType: "USER",
			RelatedEntityID:   user.ID,
		}); err != nil {
			s.logger.Warn("welcome email not queued", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("user", id)
		}
		return nil, dbError("failed to load user", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, filter entity.UserFilter, page entity.PageRequest) (*entity.Page[*entity.User], error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, Validation("role %q is invalid", filter.Role)
	}
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list users", err)
	}
	return out, nil
}

func (s *UserService) Update(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*entity.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardSuperAdmin(actor, user); err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, Validation("full_name must not be empty")
		}
		user.FullName = name
	}
	if input.Role != nil {
		role, ok := entity.ParseRole(*input.Role)
		if !ok {
			return nil, Validation("role %q is invalid", *input.Role)
		}
		if role != user.Role {
			if !entity.CanAssign(actor.Role, role) {
				return nil, AccessDenied("role %s cannot assign role %s", actor.Role, role)
			}
			if user.ID == actor.UserID {
				return nil, InvalidState("cannot change your own role")
			}
			user.Role = role
		}
	}
	user.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, dbError("failed to update user", err)
	}
	s.Audit.Record(ctx, actor, "USER_UPDATED", "USER", user.ID, nil)
	return user, nil
}

func (s *UserService) Deactivate(ctx context.Context, actor Actor, id string) (*entity.User, error) {
	if id == actor.UserID {
		return nil, InvalidState("cannot deactivate your own account")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardSuperAdmin(actor, user); err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, InvalidState("user %s is already inactive", id)
	}

	user.Active = false
	user.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, dbError("failed to deactivate user", err)
	}
	s.Audit.Record(ctx, actor, "USER_DEACTIVATED", "USER", user.ID, nil)
	return user, nil
}

func (s *UserService) Activate(ctx context.Context, actor Actor, id string) (*entity.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardSuperAdmin(actor, user); err != nil {
		return nil, err
	}
	if user.Active {
		return nil, InvalidState("user %s is already active", id)
	}

	user.Active = true
	user.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, dbError("failed to activate user", err)
	}
	s.Audit.Record(ctx, actor, "USER_ACTIVATED", "USER", user.ID, nil)
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, actor Actor, id string, input ChangePasswordInput) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	self := user.ID == actor.UserID
	if !self {
		if err := guardSuperAdmin(actor, user); err != nil {
			return err
		}
		if actor.Role != entity.RoleSuperAdmin && actor.Role != entity.RoleAdmin {
			return AccessDenied("only administrators can reset another user's password")
		}
	} else if s.Hasher.Compare(user.PasswordHash, input.CurrentPassword) != nil {
		return Validation("current password is incorrect")
	}

	if !isValidPassword(input.NewPassword) {
		return Validation("new password must have at least 8 characters with letters and digits")
	}
	hash, err := s.Hasher.Hash(input.NewPassword)
	if err != nil {
		return &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, user); err != nil {
		return dbError("failed to update password", err)
	}
	s.Audit.Record(ctx, actor, "PASSWORD_CHANGED", "USER", user.ID, nil)

	if s.Notifier != nil {
		if _, err := s.Notifier.Notify(ctx, QueueNotificationInput{
			Type:              entity.NotificationPasswordChanged,
			RecipientEmail:    user.Email,
			RecipientName:     user.FullName,
			Subject:           "Your password was changed",
			TemplateKey:       "password_changed",
			Variables:         map[string]string{"name": user.FullName},
			RelatedEntityType: "USER",
			RelatedEntityID:   user.ID,
		}); err != nil {
			s.logger.Warn("password change email not queued", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if id == actor.UserID {
		return InvalidState("cannot delete your own account")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := guardSuperAdmin(actor, user); err != nil {
		return err
	}

	user.SoftDelete(actor.UserID, time.Now())
	if err := s.Repo.Update(ctx, user); err != nil {
		return dbError("failed to delete user", err)
	}
	s.Audit.Record(ctx, actor, "USER_DELETED", "USER", user.ID, nil)
	return nil
}

// guardSuperAdmin keeps non super admins away from super admin accounts.
func guardSuperAdmin(actor Actor, target *entity.User) error {
	if target.Role == entity.RoleSuperAdmin && actor.Role != entity.RoleSuperAdmin {
		return AccessDenied("only SUPER_ADMIN can modify a SUPER_ADMIN account")
	}
	return nil
}
