package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/hitoshi/gitdeck/internal/github"
	"github.com/hitoshi/gitdeck/internal/middleware"
	"github.com/hitoshi/gitdeck/internal/model"
)

// errNotStubbed はモックに実装が設定されていない呼び出しを検出する。
var errNotStubbed = errors.New("mock method not stubbed")

// mockGitHubClient はテスト用のGitHubClient実装。
// 必要なメソッドのみ関数フィールドで差し替える。
type mockGitHubClient struct {
	getAuthenticatedUserFunc func(ctx context.Context) (*github.User, error)
	listRepositoriesFunc     func(ctx context.Context) ([]github.Repository, error)
	getRepositoryFunc        func(ctx context.Context, owner, repo string) (*github.Repository, error)
	listBranchesFunc         func(ctx context.Context, owner, repo string) ([]github.Branch, error)
	getBranchFunc            func(ctx context.Context, owner, repo, branch string) (*github.Branch, error)
	listPullRequestsFunc     func(ctx context.Context, owner, repo string, opt github.PullListOptions) ([]github.PullRequest, error)
	getPullRequestFunc       func(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	createPullRequestFunc    func(ctx context.Context, owner, repo string, input github.NewPullRequest) (*github.PullRequest, error)
	getTreeFunc              func(ctx context.Context, owner, repo string, recursive bool) (*github.Tree, error)
	getContentsFunc          func(ctx context.Context, owner, repo, path string) (json.RawMessage, error)
	createIssueCommentFunc   func(ctx context.Context, owner, repo string, number int, body string) (*github.Comment, error)
	listIssueCommentsFunc    func(ctx context.Context, owner, repo string, number int) ([]github.Comment, error)
}

func (m *mockGitHubClient) GetAuthenticatedUser(ctx context.Context) (*github.User, error) {
	if m.getAuthenticatedUserFunc == nil {
		return nil, errNotStubbed
	}
	return m.getAuthenticatedUserFunc(ctx)
}

func (m *mockGitHubClient) ListRepositories(ctx context.Context) ([]github.Repository, error) {
	if m.listRepositoriesFunc == nil {
		return nil, errNotStubbed
	}
	return m.listRepositoriesFunc(ctx)
}

func (m *mockGitHubClient) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	if m.getRepositoryFunc == nil {
		return nil, errNotStubbed
	}
	return m.getRepositoryFunc(ctx, owner, repo)
}

func (m *mockGitHubClient) ListBranches(ctx context.Context, owner, repo string) ([]github.Branch, error) {
	if m.listBranchesFunc == nil {
		return nil, errNotStubbed
	}
	return m.listBranchesFunc(ctx, owner, repo)
}

func (m *mockGitHubClient) GetBranch(ctx context.Context, owner, repo, branch string) (*github.Branch, error) {
	if m.getBranchFunc == nil {
		return nil, errNotStubbed
	}
	return m.getBranchFunc(ctx, owner, repo, branch)
}

func (m *mockGitHubClient) ListPullRequests(ctx context.Context, owner, repo string, opt github.PullListOptions) ([]github.PullRequest, error) {
	if m.listPullRequestsFunc == nil {
		return nil, errNotStubbed
	}
	return m.listPullRequestsFunc(ctx, owner, repo, opt)
}

func (m *mockGitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	if m.getPullRequestFunc == nil {
		return nil, errNotStubbed
	}
	return m.getPullRequestFunc(ctx, owner, repo, number)
}

func (m *mockGitHubClient) CreatePullRequest(ctx context.Context, owner, repo string, input github.NewPullRequest) (*github.PullRequest, error) {
	if m.createPullRequestFunc == nil {
		return nil, errNotStubbed
	}
	return m.createPullRequestFunc(ctx, owner, repo, input)
}

func (m *mockGitHubClient) GetTree(ctx context.Context, owner, repo string, recursive bool) (*github.Tree, error) {
	if m.getTreeFunc == nil {
		return nil, errNotStubbed
	}
	return m.getTreeFunc(ctx, owner, repo, recursive)
}

func (m *mockGitHubClient) GetContents(ctx context.Context, owner, repo, path string) (json.RawMessage, error) {
	if m.getContentsFunc == nil {
		return nil, errNotStubbed
	}
	return m.getContentsFunc(ctx, owner, repo, path)
}

func (m *mockGitHubClient) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*github.Comment, error) {
	if m.createIssueCommentFunc == nil {
		return nil, errNotStubbed
	}
	return m.createIssueCommentFunc(ctx, owner, repo, number, body)
}

func (m *mockGitHubClient) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]github.Comment, error) {
	if m.listIssueCommentsFunc == nil {
		return nil, errNotStubbed
	}
	return m.listIssueCommentsFunc(ctx, owner, repo, number)
}

// compile-time interface check
var _ GitHubClient = (*mockGitHubClient)(nil)

// factoryFor は常に同じモックを返すClientFactoryを返す。
func factoryFor(mock *mockGitHubClient) ClientFactory {
	return func(token string) GitHubClient {
		return mock
	}
}

// authedSession はテスト用の有効なセッションを返す。
func authedSession() *model.Session {
	now := time.Now()
	return &model.Session{
		ID: "test-session",
		Identity: model.UserIdentity{
			ID:          42,
			Username:    "octocat",
			DisplayName: "The Octocat",
		},
		AccessToken: "gho_testtoken",
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
}

// serveAuthed はセッションをコンテキストに注入してリクエストを処理する。
func serveAuthed(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(middleware.ContextWithSession(req.Context(), authedSession()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
