package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/easystock/internal/model"
	"github.com/hitoshi/easystock/internal/repository"
)

// memoryUsers はUserWriterとUserRepositoryのインメモリ実装。
type memoryUsers struct {
	users map[string]*model.User
}

func (m *memoryUsers) Create(ctx context.Context, user *model.User) error {
	if m.users == nil {
		m.users = map[string]*model.User{}
	}
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrUserExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.users[email], nil
}

func TestRegisterUser_ThenLoginWithStoreVerifier(t *testing.T) {
	users := &memoryUsers{}
	ctx := context.Background()

	user, err := RegisterUser(ctx, users, " owner@example.com ", "correct horse")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if user.Email != "owner@example.com" {
		t.Errorf("email = %q, want trimmed address", user.Email)
	}
	if !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Errorf("password hash = %q, want argon2id PHC string", user.PasswordHash)
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	claims, err := NewStoreVerifier(users).Verify(ctx, map[string]any{
		"email":    "owner@example.com",
		"password": "correct horse",
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims["email"] != "owner@example.com" {
		t.Errorf("claims = %v, want email only", claims)
	}
}

func TestRegisterUser_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "long enough"},
		{"not an address", "owner", "long enough"},
		{"short password", "owner@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &memoryUsers{}
			_, err := RegisterUser(context.Background(), users, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidRegistration) {
				t.Errorf("error = %v, want ErrInvalidRegistration", err)
			}
			if len(users.users) != 0 {
				t.Error("no user should be stored for invalid input")
			}
		})
	}
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	users := &memoryUsers{}
	ctx := context.Background()

	if _, err := RegisterUser(ctx, users, "owner@example.com", "password-1"); err != nil {
		t.Fatalf("first RegisterUser failed: %v", err)
	}
	_, err := RegisterUser(ctx, users, "owner@example.com", "password-2")
	if !errors.Is(err, repository.ErrUserExists) {
		t.Errorf("error = %v, want ErrUserExists", err)
	}
}
