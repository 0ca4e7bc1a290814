// Package repository はセッションストアのインターフェースと実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/gitdeck/internal/model"
)

// SessionRepository はセッションの永続化を抽象化する。
// デフォルトのインメモリ実装と、DATABASE_URL設定時のPostgres実装を差し替え可能。
type SessionRepository interface {
	// Create はセッションを保存する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。
	// 存在しない、または期限切れの場合はnilを返す（期限はアクセス時に遅延評価する）。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しない場合もエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
