package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/easystock/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInventoryRepo はMongoDBのinventoriesコレクションを使ったInventoryRepositoryの実装。
type MongoInventoryRepo struct {
	coll *mongo.Collection
}

// NewMongoInventoryRepo はMongoInventoryRepoを生成する。
func NewMongoInventoryRepo(coll *mongo.Collection) *MongoInventoryRepo {
	return &MongoInventoryRepo{coll: coll}
}

// Find は条件に一致するアイテムを新しい順（_id降順）で取得する。
func (r *MongoInventoryRepo) Find(ctx context.Context, filter InventoryFilter, page model.Page) ([]model.Document, error) {
	opts := findOptions(page)

	cursor, err := r.coll.Find(ctx, inventoryQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("在庫アイテムの検索に失敗しました: %w", err)
	}

	docs := make([]model.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("在庫アイテムのデコードに失敗しました: %w", err)
	}

	return docs, nil
}

// FindByID は指定IDのアイテムを取得する。見つからない場合はnilを返す。
func (r *MongoInventoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (model.Document, error) {
	var doc model.Document
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("在庫アイテムの取得に失敗しました: %w", err)
	}
	return doc, nil
}

// EstimatedCount はコレクションの概算件数を返す。
func (r *MongoInventoryRepo) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("在庫アイテム数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// Insert はアイテムを1件追加する。
func (r *MongoInventoryRepo) Insert(ctx context.Context, doc model.Document) (*model.InsertResult, error) {
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("在庫アイテムの追加に失敗しました: %w", err)
	}

	return &model.InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

// Upsert は指定IDのアイテムにfieldsを$setで反映する。
// 一致するドキュメントがない場合は、そのIDで新規作成する。
func (r *MongoInventoryRepo) Upsert(ctx context.Context, id primitive.ObjectID, fields model.Document) (*model.UpdateResult, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": withoutID(fields)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("在庫アイテムの更新に失敗しました: %w", err)
	}

	result := &model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if upserted, ok := res.UpsertedID.(primitive.ObjectID); ok {
		result.UpsertedID = &upserted
	}

	return result, nil
}

// Delete は指定IDのアイテムを1件削除する。
func (r *MongoInventoryRepo) Delete(ctx context.Context, id primitive.ObjectID) (*model.DeleteResult, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("在庫アイテムの削除に失敗しました: %w", err)
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// inventoryQuery はInventoryFilterをMongoDBのクエリに変換する。
func inventoryQuery(filter InventoryFilter) bson.M {
	if filter.Email == "" {
		return bson.M{}
	}
	return bson.M{"email": filter.Email}
}

// findOptions は_id降順のソートとページ指定を設定したFindOptionsを返す。
// ページ指定がない場合は全件を返す。
func findOptions(page model.Page) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if page.Unbounded() {
		return opts
	}
	if page.Skip > 0 {
		opts.SetSkip(page.Skip)
	}
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	return opts
}

// withoutID は_idを除いたコピーを返す。
// 更新ボディに_idが含まれると$setがimmutable fieldエラーになるため。
func withoutID(fields model.Document) model.Document {
	if _, ok := fields["_id"]; !ok {
		return fields
	}
	out := make(model.Document, len(fields))
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}
