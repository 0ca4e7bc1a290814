package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gitdeck/internal/middleware"
	"github.com/hitoshi/gitdeck/internal/model"
	"github.com/hitoshi/gitdeck/internal/security"
)

// CommentHandler はプルリクエストコメントのプロキシエンドポイントを提供する。
type CommentHandler struct {
	clients   ClientFactory
	sanitizer security.CommentSanitizerService
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(clients ClientFactory, sanitizer security.CommentSanitizerService) *CommentHandler {
	return &CommentHandler{
		clients:   clients,
		sanitizer: sanitizer,
	}
}

// parsePullNumber はURLパラメータからプルリクエスト番号を取得する。
func parsePullNumber(r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		return 0, false
	}
	return number, true
}

// List はプルリクエストのコメント一覧を返す。最大100件のパススルー。
// GET /api/repos/{owner}/{repo}/pulls/{number}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	number, ok := parsePullNumber(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid pull request number", "")
		return
	}

	comments, err := client.ListIssueComments(r.Context(), owner, repo, number)
	if err != nil {
		writeUpstreamError(w, err, "fetch comments")
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// createCommentInput はコメント投稿のリクエストボディ。
type createCommentInput struct {
	Body string `json:"body"`
}

// Create はプルリクエストにコメントを投稿する。
// 空・空白のみの本文はアップストリーム呼び出し前に400で拒否し、
// 本文はサニタイズしてからプロキシする。
// POST /api/repos/{owner}/{repo}/pulls/{number}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	number, ok := parsePullNumber(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid pull request number", "")
		return
	}

	var input createCommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	body := strings.TrimSpace(input.Body)
	if body == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Comment body is required", "")
		return
	}

	body = h.sanitizer.Sanitize(body)

	comment, err := client.CreateIssueComment(r.Context(), owner, repo, number, body)
	if err != nil {
		writeUpstreamError(w, err, "add comment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Comment added successfully",
		"comment": map[string]any{
			"id":         comment.ID,
			"body":       comment.Body,
			"user":       comment.User,
			"created_at": comment.CreatedAt,
		},
	})
}
