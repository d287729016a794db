package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/easystock/internal/inventory"
	"github.com/hitoshi/easystock/internal/middleware"
	"github.com/hitoshi/easystock/internal/model"
)

// InventoryServiceInterface は在庫ハンドラーが必要とするサービスインターフェース。
type InventoryServiceInterface interface {
	List(ctx context.Context, page model.Page) ([]model.Document, error)
	ListByOwner(ctx context.Context, email string) ([]model.Document, error)
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id string) (model.Document, error)
	Create(ctx context.Context, doc model.Document) (*model.InsertResult, error)
	Update(ctx context.Context, id string, fields model.Document) (*model.UpdateResult, error)
	Delete(ctx context.Context, id string) (*model.DeleteResult, error)
}

// InventoryHandler は在庫アイテムのHTTPハンドラー。
type InventoryHandler struct {
	service InventoryServiceInterface
}

// NewInventoryHandler はInventoryHandlerを生成する。
func NewInventoryHandler(service InventoryServiceInterface) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// countResponse は件数取得のレスポンス。
type countResponse struct {
	Count int64 `json:"count"`
}

// ListInventories は全アイテムを新しい順で返す。
// GET /inventories?page=N&size=M
func (h *InventoryHandler) ListInventories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := inventory.ParsePage(q.Get("page"), q.Get("size"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items, err := h.service.List(r.Context(), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(items))
}

// CountInventories はアイテムの概算件数を返す。
// GET /numberOfItems
func (h *InventoryHandler) CountInventories(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Count(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

// ListMyInventories はトークンのemailに一致するアイテムを返す。
// GET /myInventories（Bearer認証必須）
// クエリのemailは参照しない。ハンドラー内のエラーはすべて403とする。
func (h *InventoryHandler) ListMyInventories(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	items, err := h.service.ListByOwner(r.Context(), email)
	if err != nil {
		slog.Warn("failed to list owner inventories",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	writeJSON(w, http.StatusOK, nonNil(items))
}

// GetInventory は指定IDのアイテムを返す。見つからない場合はnullを返す。
// GET /inventory/{id}
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// nilのbson.Mはnullとしてエンコードされる
	writeJSON(w, http.StatusOK, item)
}

// CreateInventory はアイテムを追加する。
// POST /inventory
func (h *InventoryHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(w, r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.service.Create(r.Context(), doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// UpdateInventory は指定IDのアイテムを更新する。存在しない場合は作成する。
// PUT /inventory/{id} および PUT /update-stock/{id}
func (h *InventoryHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeDocument(w, r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// DeleteInventory は指定IDのアイテムを削除する。
// DELETE /inventory/{id}
func (h *InventoryHandler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// nonNil は空の一覧をnullではなく[]としてエンコードするために使う。
func nonNil(items []model.Document) []model.Document {
	if items == nil {
		return []model.Document{}
	}
	return items
}
