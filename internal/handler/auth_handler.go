// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/easystock/internal/model"
)

// AuthServiceInterface はログインハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, submitted map[string]any) (string, error)
}

// LoginRecorder はログイン結果のメトリクスを記録する。nilの場合は記録しない。
type LoginRecorder interface {
	RecordTokenIssued()
	RecordAuthFailure(reason string)
}

// AuthHandler はログインのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	recorder LoginRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, recorder LoginRecorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		recorder: recorder,
	}
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Token string `json:"token"`
}

// Login は送信されたJSONオブジェクトを検証し、アクセストークンを発行する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	submitted, err := decodeDocument(w, r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), map[string]any(submitted))
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidCredentials {
			if h.recorder != nil {
				h.recorder.RecordAuthFailure("invalid_credentials")
			}
			slog.Warn("login rejected", slog.String("path", r.URL.Path))
		}
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordTokenIssued()
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
