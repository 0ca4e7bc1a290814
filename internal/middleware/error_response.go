package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/gitdeck/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// errorフィールドには短い種別文字列、messageには任意の詳細が入る。
type ErrorResponseBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:   code,
		Message: message,
	})
}

// WriteAPIError はAPIErrorを統一フォーマットで書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteError(w, apiErr.Status, apiErr.Code, apiErr.Message)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteAPIError(w, model.NewInternalError())
}
