// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/easystock/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryFilter は在庫アイテム検索の条件を表す。
// Emailが空の場合は全件を対象とする。
type InventoryFilter struct {
	Email string
}

// InventoryRepository は在庫アイテムの永続化インターフェース。
// 各メソッドはデータベースへの呼び出しを1回だけ行う。
type InventoryRepository interface {
	// Find は条件に一致するアイテムを_idの降順で返す。
	// pageがUnboundedの場合は全件を返す。
	Find(ctx context.Context, filter InventoryFilter, page model.Page) ([]model.Document, error)

	// FindByID は指定IDのアイテムを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id primitive.ObjectID) (model.Document, error)

	// EstimatedCount はコレクションのメタデータから概算件数を返す。
	EstimatedCount(ctx context.Context) (int64, error)

	// Insert はアイテムを追加する。_idはデータベース側で採番する。
	Insert(ctx context.Context, doc model.Document) (*model.InsertResult, error)

	// Upsert は指定IDのアイテムにfieldsを$setする。存在しない場合は作成する。
	Upsert(ctx context.Context, id primitive.ObjectID, fields model.Document) (*model.UpdateResult, error)

	// Delete は指定IDのアイテムを削除する。
	Delete(ctx context.Context, id primitive.ObjectID) (*model.DeleteResult, error)
}

// FeatureRepository は機能紹介ドキュメントの読み取りインターフェース。
type FeatureRepository interface {
	// FindAll は全ての機能紹介を返す。
	FindAll(ctx context.Context) ([]model.Document, error)
}

// UserRepository はログイン資格情報の読み取りインターフェース。
type UserRepository interface {
	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserWriter はログイン資格情報の書き込みインターフェース。
type UserWriter interface {
	// Create はユーザーを追加する。emailが重複する場合はErrUserExistsを返す。
	Create(ctx context.Context, user *model.User) error
}
