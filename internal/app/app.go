// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/knowledgelink/internal/auth"
	"github.com/hitoshi/knowledgelink/internal/config"
	"github.com/hitoshi/knowledgelink/internal/database"
	"github.com/hitoshi/knowledgelink/internal/extract"
	"github.com/hitoshi/knowledgelink/internal/gemini"
	"github.com/hitoshi/knowledgelink/internal/handler"
	"github.com/hitoshi/knowledgelink/internal/link"
	"github.com/hitoshi/knowledgelink/internal/logger"
	"github.com/hitoshi/knowledgelink/internal/metrics"
	"github.com/hitoshi/knowledgelink/internal/repository"
	"github.com/hitoshi/knowledgelink/internal/security"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) *config.Config {
	// ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	return config.Load()
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg := Init(w)

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.Bool("mongo_enabled", cfg.MongoEnabled),
		slog.Bool("gemini_enabled", cfg.GeminiEnabled),
		slog.Bool("oauth_enabled", cfg.OAuthEnabled),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// 外部依存（MongoDB・Gemini・Google OAuth）はすべて任意であり、
// 未設定でもサーバーは起動する。未設定の依存に関わる操作は
// 実行時に設定エラーまたは縮退動作となる。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. MongoDB接続（任意）
	var userRepo repository.UserRepository
	var linkRepo repository.LinkRepository
	mongoAvailable := false

	if cfg.MongoEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		client, err := database.Connect(ctx, cfg.MongoURI)
		cancel()
		if err != nil {
			// 接続失敗でも起動は継続し、DB依存の操作のみ実行時エラーにする
			slog.Error("mongodb connection failed, continuing without store",
				slog.String("error", err.Error()),
			)
		} else {
			slog.Info("mongodb connection established", slog.String("db", cfg.MongoDBName))
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					slog.Error("mongodb disconnect failed", slog.String("error", err.Error()))
				}
			}()

			db := client.Database(cfg.MongoDBName)
			userRepo = repository.NewMongoUserRepo(db)
			linkRepo = repository.NewMongoLinkRepo(db, cfg.MongoVectorIndex)
			mongoAvailable = true
		}
	}

	// 2. セキュリティサービスと抽出器の初期化
	ssrfGuard := security.NewSSRFGuard()
	extractor := extract.NewExtractor(ssrfGuard.NewSafeClient(cfg.FetchTimeout), ssrfGuard)

	// 3. Geminiクライアントの初期化（APIキー未設定時は縮退モード）
	geminiClient := gemini.NewClient(gemini.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Timeout: 30 * time.Second,
	})

	// 4. 認証サービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURI:  cfg.GoogleRedirectURI,
	})
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresSeconds)
	authService := auth.NewService(oauthProvider, userRepo, tokenManager, cfg.OAuthEnabled)

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. リンクサービスの初期化
	linkService := link.NewService(linkRepo, extractor, geminiClient, geminiClient, collector)

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:          slog.Default(),
		SessionVerifier: authService,
		AllowedOrigins:  cfg.AllowedOrigins,
		HTTPMetrics:     collector,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieSecure: cfg.CookieSecure,
		},

		LinkService: linkService,

		Health: handler.HealthStatus{
			MongoEnabled:  mongoAvailable,
			GeminiEnabled: cfg.GeminiEnabled,
		},

		MetricsHandler: metrics.Handler(registry),
		Static:         handler.NewStaticHandler(cfg.FrontendStaticDir),
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // 保存時の抽出・要約・埋め込みを含むため長め
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /api/health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/api/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
