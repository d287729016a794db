package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hitoshi/easystock/internal/database"
	"github.com/hitoshi/easystock/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// コンパイル時チェック：Mongo実装が各インターフェースを満たすことを検証
var (
	_ InventoryRepository = (*MongoInventoryRepo)(nil)
	_ FeatureRepository   = (*MongoFeatureRepo)(nil)
	_ UserRepository      = (*MongoUserRepo)(nil)
	_ UserWriter          = (*MongoUserRepo)(nil)
)

// setupTestStore はテスト用DBに接続する。接続できない場合はテストをスキップする。
// テスト終了時にデータベースを削除する。
func setupTestStore(t *testing.T) *database.Store {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	dbName := fmt.Sprintf("easystock_repo_test_%d", time.Now().UnixNano())
	store, err := database.Connect(context.Background(), database.ConnectConfig{
		URI:            uri,
		Database:       dbName,
		ConnectTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		_ = store.Collection(database.InventoriesCollection).Database().Drop(ctx)
		_ = store.Close(ctx)
	})
	return store
}

func TestInventoryQuery(t *testing.T) {
	if got := inventoryQuery(InventoryFilter{}); len(got) != 0 {
		t.Errorf("empty filter should match all, got %v", got)
	}

	got := inventoryQuery(InventoryFilter{Email: "owner@example.com"})
	if got["email"] != "owner@example.com" {
		t.Errorf("email filter = %v, want owner@example.com", got["email"])
	}
}

func TestFindOptions_SortsByIDDescending(t *testing.T) {
	opts := findOptions(model.Page{})

	sort, ok := opts.Sort.(bson.D)
	if !ok || len(sort) != 1 || sort[0].Key != "_id" || sort[0].Value != -1 {
		t.Errorf("sort = %v, want {_id: -1}", opts.Sort)
	}
	if opts.Skip != nil {
		t.Errorf("skip should be unset for unbounded page, got %d", *opts.Skip)
	}
	if opts.Limit != nil {
		t.Errorf("limit should be unset for unbounded page, got %d", *opts.Limit)
	}
}

func TestFindOptions_AppliesSkipAndLimit(t *testing.T) {
	opts := findOptions(model.Page{Skip: 10, Limit: 5})

	if opts.Skip == nil || *opts.Skip != 10 {
		t.Errorf("skip = %v, want 10", opts.Skip)
	}
	if opts.Limit == nil || *opts.Limit != 5 {
		t.Errorf("limit = %v, want 5", opts.Limit)
	}
}

func TestFindOptions_FirstPageSetsOnlyLimit(t *testing.T) {
	opts := findOptions(model.Page{Skip: 0, Limit: 5})

	if opts.Skip != nil {
		t.Errorf("skip should be unset for the first page, got %d", *opts.Skip)
	}
	if opts.Limit == nil || *opts.Limit != 5 {
		t.Errorf("limit = %v, want 5", opts.Limit)
	}
}

func TestMongoInventoryRepo_Insert_EchoesClientSuppliedID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("string id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoInventoryRepo(mt.Coll)

		res, err := repo.Insert(context.Background(), model.Document{"_id": "sku-1", "name": "bolt"})
		if err != nil {
			mt.Fatalf("Insert failed: %v", err)
		}
		if !res.Acknowledged || res.InsertedID != "sku-1" {
			mt.Errorf("Insert = %+v, want acknowledged with insertedId sku-1", res)
		}
	})

	mt.Run("generated id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoInventoryRepo(mt.Coll)

		res, err := repo.Insert(context.Background(), model.Document{"name": "nut"})
		if err != nil {
			mt.Fatalf("Insert failed: %v", err)
		}
		if _, ok := res.InsertedID.(primitive.ObjectID); !ok {
			mt.Errorf("InsertedID = %T, want primitive.ObjectID", res.InsertedID)
		}
	})
}

func TestWithoutID(t *testing.T) {
	fields := model.Document{"_id": "abc", "quantity": 3}

	got := withoutID(fields)
	if _, ok := got["_id"]; ok {
		t.Error("_id should be removed")
	}
	if got["quantity"] != 3 {
		t.Errorf("quantity = %v, want 3", got["quantity"])
	}
	if _, ok := fields["_id"]; !ok {
		t.Error("original document should not be modified")
	}
}

func TestMongoInventoryRepo_PaginationReturnsNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	repo := NewMongoInventoryRepo(store.Collection(database.InventoriesCollection))
	ctx := context.Background()

	// ObjectIDは生成順に増加するため、挿入順がそのまま古い順になる
	var ids []primitive.ObjectID
	for i := 0; i < 12; i++ {
		res, err := repo.Insert(ctx, model.Document{"name": fmt.Sprintf("item-%02d", i)})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		ids = append(ids, res.InsertedID.(primitive.ObjectID))
	}

	docs, err := repo.Find(ctx, InventoryFilter{}, model.Page{Skip: 5, Limit: 5})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("len(docs) = %d, want 5", len(docs))
	}

	// 降順で6〜10番目 = 挿入順で index 6..2
	for i, doc := range docs {
		want := ids[len(ids)-6-i]
		if doc["_id"] != want {
			t.Errorf("docs[%d]._id = %v, want %v", i, doc["_id"], want)
		}
	}

	all, err := repo.Find(ctx, InventoryFilter{}, model.Page{})
	if err != nil {
		t.Fatalf("Find(all) failed: %v", err)
	}
	if len(all) != 12 {
		t.Errorf("len(all) = %d, want 12", len(all))
	}
}

func TestMongoInventoryRepo_FilterByEmail(t *testing.T) {
	store := setupTestStore(t)
	repo := NewMongoInventoryRepo(store.Collection(database.InventoriesCollection))
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "a@example.com"} {
		if _, err := repo.Insert(ctx, model.Document{"email": email}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	docs, err := repo.Find(ctx, InventoryFilter{Email: "a@example.com"}, model.Page{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("len(docs) = %d, want 2", len(docs))
	}
}

func TestMongoInventoryRepo_InsertFindUpsertDelete(t *testing.T) {
	store := setupTestStore(t)
	repo := NewMongoInventoryRepo(store.Collection(database.InventoriesCollection))
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, model.Document{"name": "Laptop", "quantity": int32(4), "email": "a@example.com"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	id, ok := inserted.InsertedID.(primitive.ObjectID)
	if !ok {
		t.Fatalf("InsertedID = %T, want primitive.ObjectID", inserted.InsertedID)
	}

	doc, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if doc == nil || doc["name"] != "Laptop" || doc["quantity"] != int32(4) {
		t.Fatalf("FindByID returned %v", doc)
	}

	updated, err := repo.Upsert(ctx, id, model.Document{"quantity": int32(2)})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if updated.MatchedCount != 1 || updated.ModifiedCount != 1 || updated.UpsertedID != nil {
		t.Errorf("Upsert(existing) = %+v", updated)
	}

	count, err := repo.EstimatedCount(ctx)
	if err != nil {
		t.Fatalf("EstimatedCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("EstimatedCount = %d, want 1", count)
	}

	deleted, err := repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", deleted.DeletedCount)
	}

	doc, err = repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID after delete failed: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil after delete, got %v", doc)
	}
}

func TestMongoInventoryRepo_UpsertCreatesMissingDocument(t *testing.T) {
	store := setupTestStore(t)
	repo := NewMongoInventoryRepo(store.Collection(database.InventoriesCollection))
	ctx := context.Background()

	id := primitive.NewObjectID()
	res, err := repo.Upsert(ctx, id, model.Document{"_id": "ignored", "name": "Monitor"})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if res.UpsertedCount != 1 || res.UpsertedID == nil || *res.UpsertedID != id {
		t.Errorf("Upsert(missing) = %+v, want upserted id %v", res, id)
	}
}

func TestMongoFeatureRepo_FindAll_EmptyCollectionReturnsEmptySlice(t *testing.T) {
	store := setupTestStore(t)
	repo := NewMongoFeatureRepo(store.Collection(database.FeaturesCollection))

	docs, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("FindAll = %v, want empty non-nil slice", docs)
	}
}

func TestMongoUserRepo_FindByEmail(t *testing.T) {
	store := setupTestStore(t)
	coll := store.Collection(database.UsersCollection)
	repo := NewMongoUserRepo(coll)
	ctx := context.Background()

	if _, err := coll.InsertOne(ctx, model.User{Email: "a@example.com", PasswordHash: "hash"}); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}

	user, err := repo.FindByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if user == nil || user.PasswordHash != "hash" {
		t.Errorf("FindByEmail = %+v", user)
	}

	missing, err := repo.FindByEmail(ctx, "missing@example.com")
	if err != nil {
		t.Fatalf("FindByEmail(missing) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}
}

func TestMongoUserRepo_Create_RejectsDuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	coll := store.Collection(database.UsersCollection)
	ctx := context.Background()

	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		t.Fatalf("CreateOne index failed: %v", err)
	}

	repo := NewMongoUserRepo(coll)
	user := &model.User{Email: "dup@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.ID.IsZero() {
		t.Error("Create should set the inserted id")
	}

	err := repo.Create(ctx, &model.User{Email: "dup@example.com", PasswordHash: "other"})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("Create(duplicate) error = %v, want ErrUserExists", err)
	}
}
