// Package model はドメインモデルを定義する。
package model

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document はスキーマを持たないドキュメントを表す。
// 在庫アイテムと機能紹介はどちらも任意のフィールドを持つため、bson.Mで扱う。
// _id はObjectIDのままJSONに書き出すと24桁の16進文字列になる。
type Document = bson.M

// InsertResult はinsertOneの結果をそのままクライアントへ返すための形式。
// クライアントが_idを指定した場合はその値（文字列や数値）がInsertedIDに入る。
type InsertResult struct {
	Acknowledged bool `json:"acknowledged"`
	InsertedID   any  `json:"insertedId"`
}

// UpdateResult はupdateOne（upsert）の結果をそのままクライアントへ返すための形式。
// 既存ドキュメントが更新された場合、UpsertedIDはnullになる。
type UpdateResult struct {
	Acknowledged  bool                `json:"acknowledged"`
	MatchedCount  int64               `json:"matchedCount"`
	ModifiedCount int64               `json:"modifiedCount"`
	UpsertedCount int64               `json:"upsertedCount"`
	UpsertedID    *primitive.ObjectID `json:"upsertedId"`
}

// DeleteResult はdeleteOneの結果をそのままクライアントへ返すための形式。
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Page はskip/limitによるページ指定を表す。
// Limitが0の場合は件数制限なし。
type Page struct {
	Skip  int64
	Limit int64
}

// Unbounded はページ指定がないことを示す。
func (p Page) Unbounded() bool {
	return p.Skip == 0 && p.Limit == 0
}
