// Package model はドメインモデルを定義する。
package model

// UserIdentity はOAuthログイン時にGitHubプロフィールから導出されるユーザー情報を表す。
// セッションの生存期間中はイミュータブルで、次回ログイン時に再導出される。
type UserIdentity struct {
	ID          int64
	Username    string
	DisplayName string
	AvatarURL   string
}
