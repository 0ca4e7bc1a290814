package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/gitdeck/internal/github"
	"github.com/hitoshi/gitdeck/internal/middleware"
	"github.com/hitoshi/gitdeck/internal/model"
)

// pullListLimit は一覧レスポンスの最大件数。
const pullListLimit = 100

// PullHandler はプルリクエスト関連のプロキシエンドポイントを提供する。
type PullHandler struct {
	clients ClientFactory
}

// NewPullHandler はPullHandlerを生成する。
func NewPullHandler(clients ClientFactory) *PullHandler {
	return &PullHandler{clients: clients}
}

// List はプルリクエスト一覧を返す。
// state=allの場合はopen/closedを並行取得して連結し、更新日時降順でソート後
// 100件に切り詰める。同一タイムスタンプの順序はアップストリーム順を保持する。
// GET /api/repos/{owner}/{repo}/pulls?state=open|closed|all
func (h *PullHandler) List(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	state := r.URL.Query().Get("state")
	if state == "" {
		state = "all"
	}
	if state != "open" && state != "closed" && state != "all" {
		middleware.WriteError(w, http.StatusBadRequest,
			"Invalid state parameter", "State must be one of: open, closed, all")
		return
	}

	if state != "all" {
		// openは作成日時順、closedは更新日時順で取得する
		sortKey := "created"
		if state == "closed" {
			sortKey = "updated"
		}
		pulls, err := client.ListPullRequests(r.Context(), owner, repo, github.PullListOptions{
			State:     state,
			Sort:      sortKey,
			Direction: "desc",
			PerPage:   pullListLimit,
		})
		if err != nil {
			writeUpstreamError(w, err, "fetch pull requests")
			return
		}
		writeJSON(w, http.StatusOK, pulls)
		return
	}

	var open, closed []github.PullRequest

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		open, err = client.ListPullRequests(ctx, owner, repo, github.PullListOptions{
			State:     "open",
			Sort:      "created",
			Direction: "desc",
			PerPage:   50,
		})
		return err
	})
	g.Go(func() error {
		var err error
		closed, err = client.ListPullRequests(ctx, owner, repo, github.PullListOptions{
			State:     "closed",
			Sort:      "updated",
			Direction: "desc",
			PerPage:   50,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		writeUpstreamError(w, err, "fetch pull requests")
		return
	}

	merged := make([]github.PullRequest, 0, len(open)+len(closed))
	merged = append(merged, open...)
	merged = append(merged, closed...)

	// 安定ソートで同一タイムスタンプの連結順を保持する
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].UpdatedAt.After(merged[j].UpdatedAt)
	})

	if len(merged) > pullListLimit {
		merged = merged[:pullListLimit]
	}

	writeJSON(w, http.StatusOK, merged)
}

// Get は指定番号のプルリクエストを返す。
// GET /api/repos/{owner}/{repo}/pulls/{number}
func (h *PullHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		middleware.WriteError(w, http.StatusBadRequest,
			"Invalid pull request number", "")
		return
	}

	pull, err := client.GetPullRequest(r.Context(), owner, repo, number)
	if err != nil {
		writeUpstreamError(w, err, "fetch pull request")
		return
	}

	writeJSON(w, http.StatusOK, pull)
}

// createPullRequestInput はプルリクエスト作成のリクエストボディ。
type createPullRequestInput struct {
	Title               string `json:"title"`
	Head                string `json:"head"`
	Base                string `json:"base"`
	Body                string `json:"body"`
	Draft               bool   `json:"draft"`
	MaintainerCanModify *bool  `json:"maintainer_can_modify"`
}

// Create はプルリクエストを作成する。
// 入力検証（必須フィールド、base==head）はアップストリーム呼び出し前にローカルで行い、
// その後base/headブランチの存在を並行に検証する。いずれかのルックアップ失敗は
// 「ブランチが存在しない」として扱い、エラーとして伝播しない。
// POST /api/repos/{owner}/{repo}/pulls
func (h *PullHandler) Create(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r, h.clients)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAuthenticationRequiredError())
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	var input createPullRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Head = strings.TrimSpace(input.Head)
	input.Base = strings.TrimSpace(input.Base)

	if input.Title == "" || input.Head == "" || input.Base == "" {
		middleware.WriteError(w, http.StatusBadRequest,
			"Missing required fields: title, head, base", "")
		return
	}

	// ブランチルックアップ前に同一ブランチ指定を拒否する
	if input.Head == input.Base {
		middleware.WriteError(w, http.StatusBadRequest,
			"Base and head cannot be the same branch", "")
		return
	}

	// base/headの存在確認を並行に行う。ルックアップ失敗は存在しない扱い。
	var baseExists, headExists bool

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		if _, err := client.GetBranch(ctx, owner, repo, input.Base); err == nil {
			baseExists = true
		}
		return nil
	})
	g.Go(func() error {
		if _, err := client.GetBranch(ctx, owner, repo, input.Head); err == nil {
			headExists = true
		}
		return nil
	})
	_ = g.Wait() // 各ゴルーチンはnilを返す

	if !baseExists || !headExists {
		var side string
		switch {
		case !baseExists && !headExists:
			side = "Base and Head"
		case !baseExists:
			side = "Base"
		default:
			side = "Head"
		}
		middleware.WriteError(w, http.StatusBadRequest,
			"Invalid branch selection",
			fmt.Sprintf("%s branch not found in %s/%s", side, owner, repo))
		return
	}

	maintainerCanModify := true
	if input.MaintainerCanModify != nil {
		maintainerCanModify = *input.MaintainerCanModify
	}

	pull, err := client.CreatePullRequest(r.Context(), owner, repo, github.NewPullRequest{
		Title:               input.Title,
		Head:                input.Head,
		Base:                input.Base,
		Body:                input.Body,
		Draft:               input.Draft,
		MaintainerCanModify: maintainerCanModify,
	})
	if err != nil {
		writeUpstreamError(w, err, "create pull request")
		return
	}

	writeJSON(w, http.StatusCreated, pull)
}
