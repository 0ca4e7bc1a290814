package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/gitdeck/internal/github"
	"github.com/hitoshi/gitdeck/internal/middleware"
	"github.com/hitoshi/gitdeck/internal/model"
)

// RepoHandler はリポジトリ関連のプロキシエンドポイントを提供する。
type RepoHandler struct {
	clients ClientFactory
}

// NewRepoHandler はRepoHandlerを生成する。
func NewRepoHandler(clients ClientFactory) *RepoHandler {
	return &RepoHandler{clients: clients}
}

// clientFromRequest はコンテキストのセッションからクライアントを生成する。
// セッションミドルウェアを通過したリクエストでのみ成功する。
func clientFromRequest(r *http.Request, factory ClientFactory) (GitHubClient, error) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return factory(session.AccessToken), nil
}

// ListRepos は認証済みユーザーのリポジトリ一覧を返す。
// フォークは除外し、更新日時順（アップストリーム順）で最大100件返す。
// GET /api/repos
func (h *RepoHandler) ListRepos(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	repos, err := client.ListRepositories(r.Context())
	if err != nil {
		writeUpstreamError(w, err, "fetch repositories")
		return
	}

	// フォークを除外
	filtered := make([]github.Repository, 0, len(repos))
	for _, repo := range repos {
		if !repo.Fork {
			filtered = append(filtered, repo)
		}
	}

	writeJSON(w, http.StatusOK, filtered)
}

// Stats はユーザーの統計情報を返す。
// アップストリームに集計エンドポイントは存在しないため、
// プロフィールとリポジトリ一覧からローカルで算出する。
// GET /api/repos/stats
func (h *RepoHandler) Stats(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	user, err := client.GetAuthenticatedUser(r.Context())
	if err != nil {
		writeUpstreamError(w, err, "fetch user stats")
		return
	}

	repos, err := client.ListRepositories(r.Context())
	if err != nil {
		writeUpstreamError(w, err, "fetch user stats")
		return
	}

	totalStars := 0
	totalForks := 0
	privateRepos := 0
	for _, repo := range repos {
		totalStars += repo.StargazersCount
		totalForks += repo.ForksCount
		if repo.Private {
			privateRepos++
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"totalRepos":   len(repos),
		"totalStars":   totalStars,
		"totalForks":   totalForks,
		"followers":    user.Followers,
		"following":    user.Following,
		"publicRepos":  len(repos) - privateRepos,
		"privateRepos": privateRepos,
	})
}

// branchSummary はブランチ一覧レスポンスの1要素。
type branchSummary struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
}

// Branches はリポジトリのブランチ一覧とデフォルトブランチ名を返す。
// リポジトリメタデータとブランチ一覧は独立のため並行に取得する。
// GET /api/repos/{owner}/{repo}/branches
func (h *RepoHandler) Branches(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	var (
		repository *github.Repository
		branches   []github.Branch
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		repository, err = client.GetRepository(ctx, owner, repo)
		return err
	})
	g.Go(func() error {
		var err error
		branches, err = client.ListBranches(ctx, owner, repo)
		return err
	})

	if err := g.Wait(); err != nil {
		writeUpstreamError(w, err, "fetch branches")
		return
	}

	summaries := make([]branchSummary, 0, len(branches))
	for _, b := range branches {
		summaries = append(summaries, branchSummary{
			Name:      b.Name,
			Protected: b.Protected,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"default_branch": repository.DefaultBranch,
		"branches":       summaries,
	})
}

// Files はリポジトリのファイルツリーを返す。
// recursive=false以外ではサブディレクトリを含む全エントリを取得し、
// pathが指定されている場合はそのプレフィックスでローカルにフィルタする。
// GET /api/repos/{owner}/{repo}/files?path&recursive
func (h *RepoHandler) Files(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	prefix := r.URL.Query().Get("path")
	recursive := r.URL.Query().Get("recursive") != "false"

	tree, err := client.GetTree(r.Context(), owner, repo, recursive)
	if err != nil {
		writeUpstreamError(w, err, "fetch file tree")
		return
	}

	entries := tree.Entries
	if prefix != "" {
		filtered := make([]github.TreeEntry, 0, len(entries))
		for _, entry := range entries {
			if strings.HasPrefix(entry.Path, prefix) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	writeJSON(w, http.StatusOK, entries)
}

// Contents は指定パスのコンテンツを返す。
// アップストリームはファイルならオブジェクト、ディレクトリなら配列を返すため、
// 形状を解釈せずそのままパススルーする。
// GET /api/repos/{owner}/{repo}/contents?path
func (h *RepoHandler) Contents(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	path := r.URL.Query().Get("path")

	raw, err := client.GetContents(r.Context(), owner, repo, path)
	if err != nil {
		writeUpstreamError(w, err, "fetch contents")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
