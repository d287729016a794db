// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/easystock/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// claimsContextKey はリクエストコンテキストにデコード済みclaimsを格納するためのキー。
var claimsContextKey = contextKey("claims")

// TokenVerifier はBearerトークンの検証に必要なインターフェース。
// auth.TokenServiceの部分集合として定義する。
type TokenVerifier interface {
	Verify(token string) (map[string]any, error)
}

// TokenVerifierFunc は関数をTokenVerifierとして扱うためのアダプタ。
type TokenVerifierFunc func(token string) (map[string]any, error)

// Verify はf(token)を呼び出す。
func (f TokenVerifierFunc) Verify(token string) (map[string]any, error) {
	return f(token)
}

// AuthFailureRecorder は認証失敗を記録する。nilの場合は記録しない。
type AuthFailureRecorder interface {
	RecordAuthFailure(reason string)
}

// NewBearerAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// トークンがない場合は401、検証に失敗した場合は403を返す。
// 検証に成功した場合はデコード済みclaimsをリクエストコンテキストに注入する。
func NewBearerAuthMiddleware(verifier TokenVerifier, recorder AuthFailureRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				recordAuthFailure(recorder, "missing_token")
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. 署名と有効期限を検証
			claims, err := verifier.Verify(token)
			if err != nil {
				slog.Warn("bearer token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				recordAuthFailure(recorder, "invalid_token")
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			// 3. デコード済みclaimsをコンテキストに注入
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// bearerToken は "Bearer <token>" 形式のヘッダー値からトークンを取り出す。
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func recordAuthFailure(recorder AuthFailureRecorder, reason string) {
	if recorder != nil {
		recorder.RecordAuthFailure(reason)
	}
}

// ClaimsFromContext はリクエストコンテキストからデコード済みclaimsを取得する。
// Bearer認証ミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (map[string]any, error) {
	claims, ok := ctx.Value(claimsContextKey).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("token claims not found in context")
	}
	return claims, nil
}

// EmailFromContext はコンテキストのclaimsからemailを取得する。
func EmailFromContext(ctx context.Context) (string, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	email, _ := claims["email"].(string)
	return email, nil
}

// ContextWithClaims はコンテキストにclaimsを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims map[string]any) context.Context {
	if email, ok := claims["email"].(string); ok {
		reportEmail(ctx, email)
	}
	return context.WithValue(ctx, claimsContextKey, claims)
}
