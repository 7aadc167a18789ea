package authpw

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"placement/api/internal/store"
)

// mockUserStore is a mock implementation of UserStore for testing
type mockUserStore struct {
	users      map[string]store.User
	emailIndex map[string]string // email -> userID
	failCreate error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:      make(map[string]store.User),
		emailIndex: make(map[string]string),
	}
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	if userID, ok := m.emailIndex[email]; ok {
		return m.users[userID], nil
	}
	return store.User{}, store.ErrNotFound
}

func (m *mockUserStore) CreateUser(ctx context.Context, user store.User) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, ok := m.emailIndex[user.Email]; ok {
		return store.ErrDuplicateEmail
	}
	m.users[user.ID] = user
	m.emailIndex[user.Email] = user.ID
	return nil
}

func newTestService(s UserStore) *Service {
	return NewService(s).WithCost(bcrypt.MinCost)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	mockStore := newMockUserStore()
	svc := newTestService(mockStore)

	t.Run("successful create", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, CreateUserRequest{
			Name:     "Mike Officer",
			Email:    " Officer@Placement.test ",
			Password: "password123",
			Role:     "Officer",
		})
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if user.Email != "officer@placement.test" {
			t.Fatalf("email = %q, want normalized address", user.Email)
		}
		if !strings.HasPrefix(user.ID, "usr_") {
			t.Fatalf("id = %q, want usr_ prefix", user.ID)
		}
		if user.PasswordHash == "password123" {
			t.Fatal("password stored in plain text")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserRequest{
			Name:     "Other",
			Email:    "officer@placement.test",
			Password: "password123",
			Role:     "Manager",
		})
		if !errors.Is(err, ErrEmailExists) {
			t.Fatalf("CreateUser() error = %v, want ErrEmailExists", err)
		}
	})

	invalid := []struct {
		name string
		req  CreateUserRequest
	}{
		{name: "missing name", req: CreateUserRequest{Email: "a@b.test", Password: "password123", Role: "Admin"}},
		{name: "bad email", req: CreateUserRequest{Name: "A", Email: "not-an-email", Password: "password123", Role: "Admin"}},
		{name: "short password", req: CreateUserRequest{Name: "A", Email: "a@b.test", Password: "short", Role: "Admin"}},
		{name: "unknown role", req: CreateUserRequest{Name: "A", Email: "a@b.test", Password: "password123", Role: "Director"}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateUser(ctx, tc.req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("CreateUser() error = %v, want ErrInvalidInput", err)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		failing := newMockUserStore()
		failing.failCreate = errors.New("db down")
		_, err := newTestService(failing).CreateUser(ctx, CreateUserRequest{Name: "A", Email: "a@b.test", Password: "password123", Role: "Admin"})
		if err == nil || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrEmailExists) {
			t.Fatalf("CreateUser() error = %v, want wrapped store error", err)
		}
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	mockStore := newMockUserStore()
	svc := newTestService(mockStore)

	created, err := svc.CreateUser(ctx, CreateUserRequest{
		Name:     "John Admin",
		Email:    "admin@placement.test",
		Password: "password123",
		Role:     "Admin",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	t.Run("successful sign in", func(t *testing.T) {
		user, err := svc.SignIn(ctx, SignInRequest{Email: "ADMIN@placement.test", Password: "password123"})
		if err != nil {
			t.Fatalf("SignIn() error = %v", err)
		}
		if user.ID != created.ID {
			t.Fatalf("SignIn() user = %q, want %q", user.ID, created.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, SignInRequest{Email: "admin@placement.test", Password: "wrongpassword"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("SignIn() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, SignInRequest{Email: "nobody@placement.test", Password: "password123"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("SignIn() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.SignIn(ctx, SignInRequest{Email: "admin@placement.test"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("SignIn() error = %v, want ErrInvalidInput", err)
		}
	})
}
