// Package app はコマンドの解析と依存関係のワイヤリングを行い、各モードを起動する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/easystock/internal/auth"
	"github.com/hitoshi/easystock/internal/config"
	"github.com/hitoshi/easystock/internal/database"
	"github.com/hitoshi/easystock/internal/feature"
	"github.com/hitoshi/easystock/internal/handler"
	"github.com/hitoshi/easystock/internal/inventory"
	"github.com/hitoshi/easystock/internal/logger"
	"github.com/hitoshi/easystock/internal/metrics"
	"github.com/hitoshi/easystock/internal/middleware"
	"github.com/hitoshi/easystock/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "5000"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.Port),
		slog.String("database", cfg.DBName),
		slog.String("auth_mode", string(cfg.AuthMode)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandCreateUser:
		return runCreateUser(ctx, cfg, args[1:])
	default:
		return runServe(ctx, cfg)
	}
}

// connect は設定に従ってデータストアに接続する。
// 初回接続はDB_CONNECT_RETRIES回まで指数バックオフで再試行する。
func connect(ctx context.Context, cfg *config.Config) (*database.Store, error) {
	slog.Info("connecting to database",
		slog.String("uri", redactURI(cfg.DatabaseURI())),
		slog.Int("retries", cfg.DBConnectRetries),
	)

	store, err := database.Connect(ctx, database.ConnectConfig{
		URI:            cfg.DatabaseURI(),
		Database:       cfg.DBName,
		ConnectTimeout: cfg.DBConnectTimeout,
		Retries:        cfg.DBConnectRetries,
		Backoff:        cfg.DBConnectBackoff,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return store, nil
}

// newCredentialVerifier はAUTH_MODEに応じたログイン時の資格情報検証を返す。
func newCredentialVerifier(mode config.AuthMode, users repository.UserRepository) auth.CredentialVerifier {
	if mode == config.AuthModeCredentials {
		return auth.NewStoreVerifier(users)
	}
	slog.Warn("AUTH_MODE=open: login signs the submitted object without checking credentials")
	return auth.OpenVerifier{}
}

// newRouter はデータストアと設定から全依存関係を組み立て、HTTPハンドラーを返す。
// 戻り値のstopはレートリミッターのバックグラウンド処理を停止する。
func newRouter(cfg *config.Config, store *database.Store, reg *prometheus.Registry) (http.Handler, func()) {
	// 1. リポジトリの初期化
	inventoryRepo := repository.NewMongoInventoryRepo(store.Collection(database.InventoriesCollection))
	featureRepo := repository.NewMongoFeatureRepo(store.Collection(database.FeaturesCollection))
	userRepo := repository.NewMongoUserRepo(store.Collection(database.UsersCollection))

	// 2. 認証の初期化
	tokens := auth.NewTokenService(cfg.JWTAccessToken, cfg.TokenTTL)
	authService := auth.NewService(newCredentialVerifier(cfg.AuthMode, userRepo), tokens)

	// 3. メトリクスとレート制限
	collector := metrics.NewCollector(reg)
	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigFromPerMinute(cfg.RateLimitGeneral, cfg.RateLimitLogin),
	)

	// 4. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		TokenVerifier:     tokens,
		Metrics:           collector,

		AuthService: authService,

		InventoryService: inventory.NewService(inventoryRepo),
		FeatureService:   feature.NewService(featureRepo),

		Pinger:         store,
		MetricsHandler: metrics.Handler(reg),
	})

	return router, rateLimiter.Stop
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	store, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			slog.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}()

	// 2. ルーターの構築
	reg := prometheus.NewRegistry()
	router, stopLimiter := newRouter(cfg, store, reg)
	defer stopLimiter()

	// 3. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はインデックス作成と機能紹介の初期データ投入を実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	uri, err := cfg.MigrationURI()
	if err != nil {
		return err
	}

	slog.Info("running database migrations", slog.String("uri", redactURI(uri)))

	if err := database.RunMigrations(uri); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runCreateUser はAUTH_MODE=credentials用のログインユーザーを作成する。
// 引数は <email> <password>。
func runCreateUser(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: easystock create-user <email> <password>")
	}

	store, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	users := repository.NewMongoUserRepo(store.Collection(database.UsersCollection))
	user, err := auth.RegisterUser(ctx, users, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created",
		slog.String("email", user.Email),
		slog.String("id", user.ID.Hex()),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	endpoint := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// redactURI は接続URIのパスワードをマスクする。
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
