package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/easystock/internal/model"
	"github.com/hitoshi/easystock/internal/repository"
)

// CredentialVerifier はログイン時に送信された内容を検証し、
// トークンに署名してよいclaimsを返す。
// 検証とトークン発行は別の手順として扱う。
type CredentialVerifier interface {
	Verify(ctx context.Context, submitted map[string]any) (map[string]any, error)
}

// OpenVerifier は送信されたオブジェクトをそのままclaimsとして返す。
// 資格情報の照合を行わないため、AUTH_MODE=open の場合のみ使用する。
type OpenVerifier struct{}

// Verify は送信内容をそのまま返す。
func (OpenVerifier) Verify(_ context.Context, submitted map[string]any) (map[string]any, error) {
	return submitted, nil
}

// StoreVerifier はusersコレクションに保存されたパスワードハッシュで照合する。
// 成功時はサーバー側で組み立てたclaims（email のみ）を返し、
// クライアントが送信した他のフィールドはトークンに含めない。
type StoreVerifier struct {
	users repository.UserRepository
}

// NewStoreVerifier はStoreVerifierを生成する。
func NewStoreVerifier(users repository.UserRepository) *StoreVerifier {
	return &StoreVerifier{users: users}
}

// Verify はemailとpasswordを照合する。
func (v *StoreVerifier) Verify(ctx context.Context, submitted map[string]any) (map[string]any, error) {
	email, _ := submitted["email"].(string)
	password, _ := submitted["password"].(string)
	if email == "" || password == "" {
		return nil, model.NewInvalidCredentialsError()
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("stored password hash is malformed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidCredentialsError()
	}
	if !ok {
		return nil, model.NewInvalidCredentialsError()
	}

	return map[string]any{"email": user.Email}, nil
}
