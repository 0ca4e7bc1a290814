package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/gitdeck/internal/github"
	"github.com/hitoshi/gitdeck/internal/middleware"
)

// writeUpstreamError はアップストリームエラーを安定した外部フォーマットに正規化して書き込む。
//
//	403 → {"error": "Permission denied"}
//	404 → {"error": "Not found"}
//	その他 → {"error": "Failed to <action>"}（ステータスがあれば転送、なければ500）
//
// 生のアップストリームエラーやスタックトレースは境界を越えない。
func writeUpstreamError(w http.ResponseWriter, err error, action string) {
	var ghErr *github.Error
	if errors.As(err, &ghErr) {
		switch ghErr.StatusCode {
		case http.StatusForbidden:
			middleware.WriteError(w, http.StatusForbidden, "Permission denied", "")
			return
		case http.StatusNotFound:
			middleware.WriteError(w, http.StatusNotFound, "Not found", "")
			return
		}
		status := ghErr.StatusCode
		if status < 400 {
			// ネットワーク障害等、HTTPステータスに到達しなかった場合
			status = http.StatusInternalServerError
		}
		middleware.WriteError(w, status, "Failed to "+action, "")
		return
	}

	slog.Error("unexpected error in proxy endpoint",
		slog.String("action", action),
		slog.String("error", err.Error()),
	)
	middleware.WriteError(w, http.StatusInternalServerError, "Failed to "+action, "")
}
