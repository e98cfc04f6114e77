package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/knowledgelink/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger          *slog.Logger
	SessionVerifier middleware.TokenVerifier
	AllowedOrigins  []string
	// HTTPMetricsはnilを許容する（メトリクス記録をスキップ）。
	HTTPMetrics middleware.HTTPStatusRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// リンク
	LinkService LinkServiceInterface

	// ヘルスチェック
	Health HealthStatus

	// MetricsHandlerはnilを許容する（/metricsを公開しない）。
	MetricsHandler http.Handler

	// Staticはnilを許容する（静的配信なし）。
	Static *StaticHandler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → CORS
//
// セッション検証は認証が必要なルートのグループにのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	linkHandler := NewLinkHandler(deps.LinkService)
	healthHandler := NewHealthHandler(deps.Health)

	sessionMW := middleware.NewSessionMiddleware(deps.SessionVerifier)

	r.Route("/api", func(r chi.Router) {
		// --- 認証不要のルート ---
		r.Get("/health", healthHandler.Health)
		r.Get("/auth/login", authHandler.Login)
		r.Get("/auth/callback", authHandler.Callback)
		r.Post("/auth/logout", authHandler.Logout)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(sessionMW)

			r.Get("/auth/me", authHandler.Me)
			r.Post("/links", linkHandler.CreateLink)
			r.Get("/links", linkHandler.ListLinks)
			r.Get("/search", linkHandler.SearchLinks)
		})
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 未マッチのパスはフロントエンドの静的配信にフォールバックする
	if deps.Static != nil {
		r.NotFound(deps.Static.ServeHTTP)
	}

	return r
}
