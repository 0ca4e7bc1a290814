package model

import "fmt"

// APIError はクライアントに返すエラーの統一フォーマットを表す。
// CodeはレスポンスのerrorフィールドとしてそのままJSONに現れる短い種別文字列。
// Messageは任意の詳細説明で、空の場合レスポンスから省略される。
type APIError struct {
	Status   int    // HTTPステータスコード
	Code     string // 外部に見えるエラー種別
	Message  string // 任意の詳細
	Category string // カテゴリ: auth, validation, upstream, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Code)
}

// NewAuthenticationRequiredError は未認証エラーを生成する。
// 有効なセッションを持たないリクエストはアップストリーム呼び出し前に
// このエラーで遮断される。
func NewAuthenticationRequiredError() *APIError {
	return &APIError{
		Status:   401,
		Code:     "Authentication required",
		Category: "auth",
	}
}

// NewValidationError は入力検証エラーを生成する。
// 検証エラーはエンドポイント内で捕捉され、アップストリームには到達しない。
func NewValidationError(code string) *APIError {
	return &APIError{
		Status:   400,
		Code:     code,
		Category: "validation",
	}
}

// NewValidationErrorWithDetail は詳細メッセージ付きの入力検証エラーを生成する。
func NewValidationErrorWithDetail(code, message string) *APIError {
	return &APIError{
		Status:   400,
		Code:     code,
		Message:  message,
		Category: "validation",
	}
}

// NewInternalError は予期しないサーバー内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Status:   500,
		Code:     "Internal server error",
		Category: "system",
	}
}
