package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv は必須環境変数をテスト用の値で設定する。
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_CLIENT_ID", "test-client-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "test-client-secret")
	t.Setenv("GITHUB_REDIRECT_URL", "http://localhost:8080/auth/github/callback")
	t.Setenv("BASE_URL", "http://localhost:5173")
}

func TestLoad_AllRequiredSet(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.GitHubClientID != "test-client-id" {
		t.Errorf("GitHubClientID = %q, want %q", cfg.GitHubClientID, "test-client-id")
	}
	if cfg.BaseURL != "http://localhost:5173" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:5173")
	}
}

func TestLoad_MissingRequired_ReturnsError(t *testing.T) {
	t.Setenv("GITHUB_CLIENT_ID", "")
	t.Setenv("GITHUB_CLIENT_SECRET", "")
	t.Setenv("GITHUB_REDIRECT_URL", "http://localhost:8080/auth/github/callback")
	t.Setenv("BASE_URL", "http://localhost:5173")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required env vars")
	}

	// 不足している変数名がエラーメッセージに含まれること
	if !strings.Contains(err.Error(), "GITHUB_CLIENT_ID") {
		t.Errorf("error should name GITHUB_CLIENT_ID: %v", err)
	}
	if !strings.Contains(err.Error(), "GITHUB_CLIENT_SECRET") {
		t.Errorf("error should name GITHUB_CLIENT_SECRET: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_MAX_AGE", "")
	t.Setenv("RATE_LIMIT_REQUESTS", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want 86400", cfg.SessionMaxAge)
	}
	if cfg.RateLimitRequests != 100 {
		t.Errorf("RateLimitRequests = %d, want 100", cfg.RateLimitRequests)
	}
	if cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("RateLimitWindow = %v, want 15m", cfg.RateLimitWindow)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 10s", cfg.UpstreamTimeout)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
}

func TestLoad_CookieSecureDerivedFromBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BASE_URL", "https://dashboard.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.CookieSecure {
		t.Error("CookieSecure should be true for https BASE_URL")
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_MAX_AGE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want default 86400", cfg.SessionMaxAge)
	}
}
