package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/easystock/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoFeatureRepo はMongoDBのfeaturesコレクションを使ったFeatureRepositoryの実装。
type MongoFeatureRepo struct {
	coll *mongo.Collection
}

// NewMongoFeatureRepo はMongoFeatureRepoを生成する。
func NewMongoFeatureRepo(coll *mongo.Collection) *MongoFeatureRepo {
	return &MongoFeatureRepo{coll: coll}
}

// FindAll は全ての機能紹介を格納順で返す。
func (r *MongoFeatureRepo) FindAll(ctx context.Context) ([]model.Document, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("機能紹介の検索に失敗しました: %w", err)
	}

	docs := make([]model.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("機能紹介のデコードに失敗しました: %w", err)
	}
	return docs, nil
}
