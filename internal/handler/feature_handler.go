package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/easystock/internal/model"
)

// FeatureServiceInterface は機能紹介ハンドラーが必要とするサービスインターフェース。
type FeatureServiceInterface interface {
	List(ctx context.Context) ([]model.Document, error)
}

// FeatureHandler は機能紹介のHTTPハンドラー。
type FeatureHandler struct {
	service FeatureServiceInterface
}

// NewFeatureHandler はFeatureHandlerを生成する。
func NewFeatureHandler(service FeatureServiceInterface) *FeatureHandler {
	return &FeatureHandler{service: service}
}

// ListFeatures は機能紹介の一覧を返す。
// GET /features
func (h *FeatureHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(features))
}
