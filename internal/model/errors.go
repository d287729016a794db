package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, inventory, system
	Action   string // クライアント向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidID          = "INVALID_ID"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidPagination  = "INVALID_PAGINATION"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewUnauthorizedError はBearerトークン未指定エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Error 401 - Unauthorized!",
		Category: "auth",
		Action:   "Send an Authorization: Bearer <token> header obtained from /login.",
	}
}

// NewForbiddenError は無効・期限切れトークンのエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "Error 403 - Forbidden",
		Category: "auth",
		Action:   "Log in again to obtain a new token.",
	}
}

// NewInvalidIDError は不正な形式のドキュメントIDエラーを生成する。
func NewInvalidIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("invalid inventory id: %s", id),
		Category: "validation",
		Action:   "Use the 24 character hex id returned by the server.",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("invalid request body: %s", reason),
		Category: "validation",
		Action:   "Send a JSON object as the request body.",
	}
}

// NewInvalidPaginationError はページ指定のエラーを生成する。
func NewInvalidPaginationError(param string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPagination,
		Message:  fmt.Sprintf("%s must not be negative", param),
		Category: "validation",
		Action:   "Use zero or positive integers for page and size.",
	}
}

// NewInvalidCredentialsError はログイン資格情報の検証失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "email or password is incorrect",
		Category: "auth",
		Action:   "Check the email and password and try again.",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "internal server error",
		Category: "system",
		Action:   "Please try again later.",
	}
}
