package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/easystock/internal/metrics"
	"github.com/hitoshi/easystock/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	TokenVerifier     middleware.TokenVerifier
	Metrics           metrics.MetricsCollector

	// ログイン
	AuthService AuthServiceInterface

	// 在庫・機能紹介
	InventoryService InventoryServiceInterface
	FeatureService   FeatureServiceInterface

	// 稼働確認
	Pinger         Pinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RealIP → RequestID → Logging → Metrics → SecurityHeaders → CORS → RateLimit(General)
//
// /myInventories のみBearer認証を要求し、/login にはログイン専用のレート制限を追加する。
// Metricsがnilの場合はメトリクスを記録しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))

	var authRecorder middleware.AuthFailureRecorder
	var loginRecorder LoginRecorder
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
		authRecorder = deps.Metrics
		loginRecorder = deps.Metrics
	}

	r.Use(middleware.NewSecurityHeadersMiddleware())
	// CORS ミドルウェアはプリフライトをレート制限より先に処理する
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.GeneralMiddleware())
	}

	authHandler := NewAuthHandler(deps.AuthService, loginRecorder)
	inventoryHandler := NewInventoryHandler(deps.InventoryService)
	featureHandler := NewFeatureHandler(deps.FeatureService)
	healthHandler := NewHealthHandler(deps.Pinger)

	// --- 稼働確認 ---
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- ログイン ---
	if deps.RateLimiter != nil {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
	} else {
		r.Post("/login", authHandler.Login)
	}

	// --- 在庫（認証不要） ---
	r.Get("/inventories", inventoryHandler.ListInventories)
	r.Get("/numberOfItems", inventoryHandler.CountInventories)
	r.Post("/inventory", inventoryHandler.CreateInventory)
	r.Get("/inventory/{id}", inventoryHandler.GetInventory)
	r.Put("/inventory/{id}", inventoryHandler.UpdateInventory)
	r.Delete("/inventory/{id}", inventoryHandler.DeleteInventory)
	r.Put("/update-stock/{id}", inventoryHandler.UpdateInventory)

	// --- 在庫（Bearer認証必須） ---
	r.With(middleware.NewBearerAuthMiddleware(deps.TokenVerifier, authRecorder)).
		Get("/myInventories", inventoryHandler.ListMyInventories)

	// --- 機能紹介 ---
	r.Get("/features", featureHandler.ListFeatures)

	return r
}
