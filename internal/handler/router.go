package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gitdeck/internal/middleware"
	"github.com/hitoshi/gitdeck/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	Logger            *slog.Logger
	StatusMetrics     middleware.StatusRecorder

	// 観測
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// アップストリーム
	Clients   ClientFactory
	Sanitizer security.CommentSanitizerService
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit → Session
//
// /healthと/metricsはレート制限の外に配置する。
// 認証ルート（/auth/*）はセッションミドルウェアの外、レート制限の中に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusMetrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	repoHandler := NewRepoHandler(deps.Clients)
	pullHandler := NewPullHandler(deps.Clients)
	commentHandler := NewCommentHandler(deps.Clients, deps.Sanitizer)

	// --- レート制限の外 ---

	r.Get("/health", healthCheck)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- レート制限の中 ---

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware())

		// 認証ルート（OAuthフロー）
		r.Route("/auth", func(r chi.Router) {
			r.Get("/github", authHandler.Login)
			r.Get("/github/callback", authHandler.Callback)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		// プロキシエンドポイント。セッション必須（フェイルクローズ）。
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))

			r.Route("/api/repos", func(r chi.Router) {
				r.Get("/", repoHandler.ListRepos)
				r.Get("/stats", repoHandler.Stats)

				r.Route("/{owner}/{repo}", func(r chi.Router) {
					r.Get("/branches", repoHandler.Branches)
					r.Get("/files", repoHandler.Files)
					r.Get("/contents", repoHandler.Contents)

					r.Route("/pulls", func(r chi.Router) {
						r.Get("/", pullHandler.List)
						r.Post("/", pullHandler.Create)

						r.Route("/{number}", func(r chi.Router) {
							r.Get("/", pullHandler.Get)
							r.Get("/comments", commentHandler.List)
							r.Post("/comments", commentHandler.Create)
						})
					})
				})
			})
		})
	})

	// 未知のルートにもJSONで応答する
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Route not found", "")
	})

	return r
}

// healthCheck は死活監視用のエンドポイント。認証不要。
// GET /health
func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
