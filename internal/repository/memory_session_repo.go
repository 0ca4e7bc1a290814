package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/gitdeck/internal/model"
)

// MemorySessionRepo はプロセス内メモリを使用したセッションリポジトリ。
// デフォルトのセッションストアで、外部依存なしで動作する。
// プロセス再起動で全セッションが失われるが、再ログインで回復するため許容する。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]*model.Session),
	}
}

// Create はセッションを保存する。
func (r *MemorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 呼び出し側の後続変更から隔離するためコピーを保持する
	s := *session
	r.sessions[session.ID] = &s
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返し、
// エントリをその場で破棄する。
func (r *MemorySessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if session.Expired(time.Now()) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return nil, nil
	}

	s := *session
	return &s, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *MemorySessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
func (r *MemorySessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len は現在保持しているセッション数を返す。テスト用。
func (r *MemorySessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// compile-time interface check
var _ SessionRepository = (*MemorySessionRepo)(nil)
