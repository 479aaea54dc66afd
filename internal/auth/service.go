package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/config"
	"github.com/mrlokans/bookswap/internal/entities"
	"github.com/mrlokans/bookswap/internal/services"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const msgInvalidCredentials = "Invalid credentials"

// ClientInfo identifies the caller of an auth operation for rate limiting
// and the audit trail.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// EventLog records authentication outcomes. A nil err means success.
type EventLog interface {
	LogAuth(userID, action, ip, userAgent string, err error)
}

type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Faculty     string
	Department  string
	PhoneNumber string
}

// Service handles registration, login, logout and password changes.
type Service struct {
	users      services.UserStore
	tokens     *TokenManager
	limiter    *LoginLimiter
	events     EventLog
	bcryptCost int
}

// NewService wires the auth flows. limiter and events may be nil.
func NewService(users services.UserStore, tokens *TokenManager, limiter *LoginLimiter, events EventLog, cfg config.Auth) *Service {
	cost := cfg.BcryptCost
	if cost <= 0 {
		cost = 10
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		limiter:    limiter,
		events:     events,
		bcryptCost: cost,
	}
}

func (s *Service) logEvent(userID, action string, client ClientInfo, err error) {
	if s.events != nil {
		s.events.LogAuth(userID, action, client.IP, client.UserAgent, err)
	}
}

func (in *RegisterInput) validate() error {
	var fields []services.FieldError
	require := func(field string, value *string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			fields = append(fields, services.FieldError{Field: field, Message: field + " is required"})
		}
	}
	require("firstName", &in.FirstName)
	require("lastName", &in.LastName)
	require("email", &in.Email)
	require("faculty", &in.Faculty)
	require("department", &in.Department)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if in.Email != "" && (len(in.Email) > 254 || !emailPattern.MatchString(in.Email)) {
		fields = append(fields, services.FieldError{Field: "email", Message: "invalid email format"})
	}
	if err := ValidatePassword(in.Password); err != nil {
		fields = append(fields, services.FieldError{Field: "password", Message: err.Error()})
	}
	if in.PhoneNumber != "" && !services.ValidPhoneNumber(in.PhoneNumber) {
		fields = append(fields, services.FieldError{Field: "phoneNumber", Message: "invalid phone number"})
	}

	if len(fields) > 0 {
		return services.Validation("invalid registration", fields...)
	}
	return nil
}

// Register creates an account and returns a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput, client ClientInfo) (string, *entities.User, error) {
	if err := in.validate(); err != nil {
		return "", nil, err
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return "", nil, services.Conflict("Email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, services.Internal("check existing user", err)
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return "", nil, services.Internal("hash password", err)
	}

	user := &entities.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Faculty:      in.Faculty,
		Department:   in.Department,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, services.Conflict("Email already registered")
		}
		return "", nil, services.Internal("create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, services.Internal("issue token", err)
	}

	s.logEvent(user.ID, "register", client, nil)
	return token, user, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error.
func (s *Service) Login(ctx context.Context, email, password string, client ClientInfo) (string, *entities.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, services.Validation("Email and password are required")
	}

	if s.limiter != nil {
		if allowed, retryAfter := s.limiter.Allow(client.IP, email); !allowed {
			return "", nil, services.RateLimited("Too many login attempts", retryAfter)
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, services.Internal("find user", err)
	}
	if err == nil {
		err = CheckPassword(password, user.PasswordHash)
		if err != nil && !errors.Is(err, ErrInvalidPassword) {
			return "", nil, services.Internal("check password", err)
		}
	}
	if err != nil {
		return "", nil, s.loginFailed(user, client, email)
	}

	if s.limiter != nil {
		s.limiter.RecordSuccess(client.IP, email)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, services.Internal("issue token", err)
	}

	s.logEvent(user.ID, "login", client, nil)
	return token, user, nil
}

func (s *Service) loginFailed(user *entities.User, client ClientInfo, email string) error {
	if user != nil {
		s.logEvent(user.ID, "login", client, ErrInvalidPassword)
	}
	if s.limiter != nil {
		if locked, retryAfter := s.limiter.RecordFailure(client.IP, email); locked {
			return services.RateLimited("Too many login attempts", retryAfter)
		}
	}
	return services.Unauthorized(msgInvalidCredentials)
}

// Authenticate verifies a bearer token and returns its claims.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenRevoked) {
			return nil, services.Unauthorized("Invalid or expired token")
		}
		return nil, services.Internal("verify token", err)
	}
	return claims, nil
}

// Logout revokes token until it expires.
func (s *Service) Logout(ctx context.Context, userID, token string, client ClientInfo) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) {
			return services.Unauthorized("Invalid or expired token")
		}
		return services.Internal("revoke token", err)
	}
	s.logEvent(userID, "logout", client, nil)
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string, client ClientInfo) error {
	if current == "" {
		return services.Validation("invalid password change",
			services.FieldError{Field: "currentPassword", Message: "currentPassword is required"})
	}
	if err := ValidatePassword(next); err != nil {
		return services.Validation("invalid password change",
			services.FieldError{Field: "newPassword", Message: err.Error()})
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.NotFound("User")
	}
	if err != nil {
		return services.Internal("get user", err)
	}

	if err := CheckPassword(current, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			s.logEvent(userID, "password_change", client, err)
			return services.Unauthorized("Current password is incorrect")
		}
		return services.Internal("check password", err)
	}

	hash, err := HashPassword(next, s.bcryptCost)
	if err != nil {
		return services.Internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return services.Internal("update password", err)
	}

	s.logEvent(userID, "password_change", client, nil)
	return nil
}
