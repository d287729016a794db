// Package inventory は在庫アイテムの管理機能を提供する。
package inventory

import (
	"context"

	"github.com/hitoshi/easystock/internal/model"
	"github.com/hitoshi/easystock/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service は在庫アイテムの取得・更新を行うサービス。
// 各操作はリポジトリを1回だけ呼び出す。
type Service struct {
	repo repository.InventoryRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.InventoryRepository) *Service {
	return &Service{repo: repo}
}

// List は全アイテムを新しい順で返す。pageがUnboundedの場合は全件を返す。
func (s *Service) List(ctx context.Context, page model.Page) ([]model.Document, error) {
	return s.repo.Find(ctx, repository.InventoryFilter{}, page)
}

// ListByOwner はemailが一致するアイテムを新しい順で返す。
// emailはトークンから取り出した値のみを渡すこと。
// emailが空の場合は全件一致を避けるため空の一覧を返す。
func (s *Service) ListByOwner(ctx context.Context, email string) ([]model.Document, error) {
	if email == "" {
		return []model.Document{}, nil
	}
	return s.repo.Find(ctx, repository.InventoryFilter{Email: email}, model.Page{})
}

// Count はアイテムの概算件数を返す。
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.EstimatedCount(ctx)
}

// Get は指定IDのアイテムを返す。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, id string) (model.Document, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, oid)
}

// Create はアイテムを追加する。
func (s *Service) Create(ctx context.Context, doc model.Document) (*model.InsertResult, error) {
	return s.repo.Insert(ctx, doc)
}

// Update は指定IDのアイテムにfieldsを反映する。存在しない場合は作成する。
// PUT /update-stock/{id} と PUT /inventory/{id} の両方がこの操作を使う。
func (s *Service) Update(ctx context.Context, id string, fields model.Document) (*model.UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, oid, fields)
}

// Delete は指定IDのアイテムを削除する。
func (s *Service) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Delete(ctx, oid)
}

// ParseID は24桁の16進文字列をObjectIDに変換する。
// 形式が不正な場合はINVALID_IDのAPIErrorを返す。
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, model.NewInvalidIDError(id)
	}
	return oid, nil
}
