// Package auth はOAuth認証フローとセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/gitdeck/internal/model"
	"github.com/hitoshi/gitdeck/internal/repository"
)

// OAuthResult はOAuthハンドシェイク完了時に得られる結果を表す。
// アクセストークンはセッションにのみ保存され、クライアントには渡らない。
type OAuthResult struct {
	Identity    model.UserIdentity
	AccessToken string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// LoginURL はOAuth認可URLを生成する。
	LoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthResult, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	sessions repository.SessionRepository
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, sessions repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		oauth:    oauth,
		sessions: sessions,
		config:   config,
	}
}

// LoginURL はOAuth認可URLを生成する。
func (s *Service) LoginURL(state string) string {
	return s.oauth.LoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// コード交換またはプロフィール取得に失敗した場合はセッションを作成しない。
// 失敗はプロセスに対して非致命的で、要求元のブラウザセッションに閉じる。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	result, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	session, err := s.createSession(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in",
		slog.Int64("user_id", session.Identity.ID),
		slog.String("username", session.Identity.Username),
	)

	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// CurrentUser はセッションから現在のユーザーアイデンティティを取得する。
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*model.UserIdentity, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	identity := session.Identity
	return &identity, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, result *OAuthResult) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:          sessionID,
		Identity:    result.Identity,
		AccessToken: result.AccessToken,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
