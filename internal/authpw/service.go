// Package authpw provides email/password sign-in and account creation.
package authpw

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"placement/api/internal/rbac"
	"placement/api/internal/store"
	"placement/api/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already registered")
)

const MinPasswordLength = 8

// UserStore defines the storage interface for auth
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) error
}

// Service provides email/password authentication
type Service struct {
	store UserStore
	cost  int
	now   func() time.Time
}

func NewService(store UserStore) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithCost returns a copy of the service hashing at the given bcrypt cost.
func (s *Service) WithCost(cost int) *Service {
	clone := *s
	clone.cost = cost
	return &clone
}

type SignInRequest struct {
	Email    string
	Password string
}

// SignIn authenticates a user. Unknown emails and wrong passwords return
// the same error.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (store.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return store.User{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return store.User{}, ErrInvalidCredentials
	}
	return user, nil
}

type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// CreateUser validates and stores a new account with a bcrypt hash.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (store.User, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" || req.Role == "" {
		return store.User{}, fmt.Errorf("%w: name, email, password and role are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return store.User{}, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if len(req.Password) < MinPasswordLength {
		return store.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	if !rbac.Valid(req.Role) {
		return store.User{}, fmt.Errorf("%w: role must be Admin, Manager or Officer", ErrInvalidInput)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return store.User{}, err
	}

	now := s.now().UTC()
	user := store.User{
		ID:           util.NewID("usr"),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return store.User{}, ErrEmailExists
		}
		return store.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
