package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitRecorder はレート制限による拒否の記録インターフェース。
type RateLimitRecorder interface {
	RecordRateLimited()
}

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	Requests        int           // ウィンドウあたりの許可リクエスト数
	Window          time.Duration // レート計算のウィンドウ幅
	Burst           int           // バーストサイズ。0の場合はRequestsと同じ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
	Metrics         RateLimitRecorder
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 要件: IPごとに100 req/15min
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Requests:        100,
		Window:          15 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// ipLimiter はIPごとのレートリミッターとアクセス時刻を保持する。
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter はクライアントIPごとのレート制限を管理する。
// 認証前のリクエストにも適用されるため、識別子はセッションではなくIPを使用する。
type RateLimiter struct {
	rateLimit rate.Limit
	burst     int
	config    RateLimiterConfig

	mu       sync.RWMutex
	limiters map[string]*ipLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	burst := config.Burst
	if burst <= 0 {
		burst = config.Requests
	}

	rl := &RateLimiter{
		rateLimit: rate.Limit(float64(config.Requests) / config.Window.Seconds()),
		burst:     burst,
		config:    config,
		limiters:  make(map[string]*ipLimiter),
		stopCh:    make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware はIPごとのレート制限ミドルウェアを返す。
// 認証前を含むすべてのAPIリクエストに適用する。
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			limiter := rl.getOrCreateLimiter(ip)

			if !limiter.Allow() {
				if rl.config.Metrics != nil {
					rl.config.Metrics.RecordRateLimited()
				}
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("path", r.URL.Path),
				)
				rl.writeRateLimitResponse(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimiterCount は現在管理されているリミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) LimiterCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// getOrCreateLimiter はIPのリミッターを取得または作成する。
func (rl *RateLimiter) getOrCreateLimiter(ip string) *rate.Limiter {
	rl.mu.RLock()
	il, exists := rl.limiters[ip]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		il.lastAccess = time.Now()
		rl.mu.Unlock()
		return il.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// ダブルチェック
	if il, exists := rl.limiters[ip]; exists {
		il.lastAccess = time.Now()
		return il.limiter
	}

	limiter := rate.NewLimiter(rl.rateLimit, rl.burst)
	rl.limiters[ip] = &ipLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.mu.Lock()
	for ip, il := range rl.limiters {
		if now.Sub(il.lastAccess) > ttl {
			delete(rl.limiters, ip)
		}
	}
	rl.mu.Unlock()
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func (rl *RateLimiter) writeRateLimitResponse(w http.ResponseWriter) {
	retryAfterSec := int(math.Ceil(1.0 / float64(rl.rateLimit)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteError(w, http.StatusTooManyRequests,
		"Too many requests from this IP, please try again later.", "")
}

// clientIP はリクエストからクライアントIPを特定する。
// リバースプロキシ背後を想定し、X-Forwarded-Forの先頭値を優先する。
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
