package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/hitoshi/easystock/internal/model"
	"github.com/hitoshi/easystock/internal/repository"
)

// minPasswordLength は登録時のパスワードの最小文字数。
const minPasswordLength = 8

// ErrInvalidRegistration は登録内容が不正であることを示す。
var ErrInvalidRegistration = errors.New("invalid registration")

// RegisterUser はパスワードをArgon2idでハッシュ化してユーザーを保存する。
// AUTH_MODE=credentials で使うログイン資格情報を作成する。
func RegisterUser(ctx context.Context, users repository.UserWriter, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email %q is not a valid address", ErrInvalidRegistration, email)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, minPasswordLength)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
