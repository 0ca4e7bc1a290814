// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"

	"github.com/hitoshi/gitdeck/internal/github"
)

// GitHubClient はプロキシエンドポイントが必要とするアップストリーム操作のインターフェース。
// github.Clientの部分集合として定義し、テストでのモック差し替えを可能にする。
type GitHubClient interface {
	GetAuthenticatedUser(ctx context.Context) (*github.User, error)
	ListRepositories(ctx context.Context) ([]github.Repository, error)
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error)
	ListBranches(ctx context.Context, owner, repo string) ([]github.Branch, error)
	GetBranch(ctx context.Context, owner, repo, branch string) (*github.Branch, error)
	ListPullRequests(ctx context.Context, owner, repo string, opt github.PullListOptions) ([]github.PullRequest, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	CreatePullRequest(ctx context.Context, owner, repo string, input github.NewPullRequest) (*github.PullRequest, error)
	GetTree(ctx context.Context, owner, repo string, recursive bool) (*github.Tree, error)
	GetContents(ctx context.Context, owner, repo, path string) (json.RawMessage, error)
	CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*github.Comment, error)
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]github.Comment, error)
}

// compile-time interface check
var _ GitHubClient = (*github.Client)(nil)

// ClientFactory はセッションのアクセストークンに束縛されたクライアントを生成する。
// クライアントはリクエストごとに生成し、リクエスト間で共有・キャッシュしない。
type ClientFactory func(token string) GitHubClient
