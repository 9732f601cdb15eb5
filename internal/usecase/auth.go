package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
)

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

type LoginOutput struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users    entity.UserRepository
	Attempts *LoginAttemptTracker
	Hasher   PasswordHasher
	Audit    *AuditLogger
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewAuthService(
	users entity.UserRepository,
	attempts *LoginAttemptTracker,
	hasher PasswordHasher,
	audit *AuditLogger,
	secret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		Users:    users,
		Attempts: attempts,
		Hasher:   hasher,
		Audit:    audit,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

var errInvalidCredentials = &DomainError{Code: CodeInvalidCredentials, Message: "invalid email or password"}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, Validation("email and password are required")
	}

	// Emails match case-insensitively, so the lockout counter must too.
	key := strings.ToLower(email)

	blocked, err := s.Attempts.IsBlocked(ctx, key)
	if err != nil {
		// A cache outage must not lock everybody out.
		s.logger.Warn("login attempt store unavailable", zap.Error(err))
	}
	if blocked {
		metrics.RecordLoginBlocked()
		return nil, &DomainError{Code: CodeAccountLocked, Message: "too many failed attempts, try again later"}
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, dbError("failed to load user", err)
	}
	if user == nil || !user.Active || s.Hasher.Compare(user.PasswordHash, input.Password) != nil {
		s.failed(ctx, key, input.IP)
		return nil, errInvalidCredentials
	}

	if err := s.Attempts.ResetAttempts(ctx, key); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.String("email", key), zap.Error(err))
	}

	now := time.Now()
	if err := s.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	token, err := s.IssueToken(user, now)
	if err != nil {
		return nil, &TechnicalError{Code: "TOKEN_ERROR", Message: "failed to issue token", Err: err}
	}

	s.Audit.Record(ctx, Actor{UserID: user.ID, Role: user.Role, IP: input.IP}, "LOGIN_SUCCESS", "USER", user.ID, nil)

	return &LoginOutput{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        user,
	}, nil
}

func (s *AuthService) failed(ctx context.Context, email, ip string) {
	metrics.RecordLoginFailure()
	count, err := s.Attempts.RecordFailedAttempt(ctx, email)
	if err != nil {
		s.logger.Warn("failed to record login attempt", zap.String("email", email), zap.Error(err))
	}
	s.Audit.Record(ctx, Actor{IP: ip}, "LOGIN_FAILED", "USER", "", map[string]string{
		"email":    email,
		"attempts": fmt.Sprint(count),
	})
}

func (s *AuthService) IssueToken(user *entity.User, now time.Time) (string, error) {
	claims := tokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) ParseToken(token string) (Actor, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Actor{}, errInvalidCredentials
	}
	role, ok := entity.ParseRole(claims.Role)
	if !ok || claims.Subject == "" {
		return Actor{}, errInvalidCredentials
	}
	return Actor{UserID: claims.Subject, Role: role}, nil
}
