package model

import "time"

// Session はユーザーのログインセッションを表す。
// このシステムがサーバー側に保持する唯一の状態であり、
// アクセストークンはクライアントに公開されず、アップストリーム呼び出しにのみ使用される。
type Session struct {
	ID          string // Cookie値として発行される暗号論的に安全なランダムID
	Identity    UserIdentity
	AccessToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired はセッションが指定時刻の時点で期限切れかどうかを返す。
// 期限チェックは能動的なスイープではなく、アクセス時に遅延評価される。
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
