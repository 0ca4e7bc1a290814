package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON はJSONレスポンスを書き込む。
// エンコード失敗はヘッダー送信後のため、ログのみ記録する。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
