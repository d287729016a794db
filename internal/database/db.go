package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// コレクション名
const (
	InventoriesCollection = "inventories"
	FeaturesCollection    = "features"
	UsersCollection       = "users"
)

// maxBackoff は接続リトライ間隔の上限。
const maxBackoff = 30 * time.Second

// ConnectConfig はMongoDB接続の設定を保持する。
type ConnectConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration // 1回の接続試行（接続+Ping）のタイムアウト
	Retries        int           // 初回を除くリトライ回数
	Backoff        time.Duration // 初回リトライまでの待機時間。以降2倍ずつ増加
}

// Store はプロセス全体で共有するMongoDB接続を表す。
// mongo.Clientは内部でコネクションプールを持ち、並行利用に対して安全である。
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore は接続済みのクライアントからStoreを生成する。
func NewStore(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

// Collection は指定された名前のコレクションを返す。
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// Ping はプライマリへの疎通を確認する。ヘルスチェックから利用する。
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close はクライアントを切断する。
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Connect はMongoDBへ接続し、Pingが成功したStoreを返す。
// 接続に失敗した場合は指数バックオフでリトライし、全試行が失敗するとエラーを返す。
func Connect(ctx context.Context, cfg ConnectConfig) (*Store, error) {
	client, err := withRetry(ctx, cfg.Retries, cfg.Backoff, func(ctx context.Context) (*mongo.Client, error) {
		return dial(ctx, cfg.URI, cfg.ConnectTimeout)
	})
	if err != nil {
		return nil, err
	}
	return NewStore(client, cfg.Database), nil
}

// dial は1回分の接続とPingを行う。Pingに失敗した場合はクライアントを切断する。
func dial(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// withRetry はattemptが成功するまで最大retries回リトライする。
// 待機時間はbackoffから2倍ずつ増加し、maxBackoffで頭打ちになる。
func withRetry[T any](ctx context.Context, retries int, backoff time.Duration, attempt func(context.Context) (T, error)) (T, error) {
	var zero T
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for i := 0; i <= retries; i++ {
		v, err := attempt(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if i == retries {
			break
		}

		delay := CalculateBackoff(backoff, i)
		slog.Warn("database connection attempt failed",
			slog.Int("attempt", i+1),
			slog.Duration("retry_in", delay),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("database connection cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("database connection failed after %d attempts: %w", retries+1, lastErr)
}

// CalculateBackoff はn回目（0始まり）のリトライ前に待機する時間を返す。
// baseから2倍ずつ増加し、最大30秒。
func CalculateBackoff(base time.Duration, n int) time.Duration {
	delay := base
	for i := 0; i < n; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}
