// Package github はGitHub REST APIのクライアントを提供する。
// クライアントはリクエストごとにセッションのアクセストークンに束縛して生成し、
// リクエスト間で共有・キャッシュしない。
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// defaultBaseURL はGitHub REST APIのエンドポイント。
const defaultBaseURL = "https://api.github.com"

// Error はアップストリームAPIの失敗を表す。
// StatusCodeが0の場合はHTTPレスポンスに到達しなかった（ネットワーク障害等）。
type Error struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	return fmt.Sprintf("github: %d %s", e.StatusCode, e.Message)
}

// UpstreamRecorder はアップストリーム呼び出しのメトリクス記録インターフェース。
type UpstreamRecorder interface {
	RecordUpstreamRequest(operation string, statusCode int)
	ObserveUpstreamLatency(operation string, duration time.Duration)
}

// ClientConfig はClientの生成パラメータ。
type ClientConfig struct {
	// BaseURL はテスト・GitHub Enterprise用のオーバーライド。空の場合は公式API。
	BaseURL string
	// HTTPClient はリクエストに使用するHTTPクライアント。nilの場合はデフォルト。
	HTTPClient *http.Client
	// Logger は失敗ログの出力先。nilの場合はslog.Default()。
	Logger *slog.Logger
	// Metrics はアップストリーム呼び出しの記録先。nilの場合は記録しない。
	Metrics UpstreamRecorder
}

// Client はひとつのアクセストークンに束縛されたGitHub APIクライアント。
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    UpstreamRecorder
}

// NewClient は指定トークンに束縛されたClientを生成する。
func NewClient(token string, config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{
		token:      token,
		baseURL:    config.BaseURL,
		httpClient: config.HTTPClient,
		logger:     config.Logger,
		metrics:    config.Metrics,
	}
}

// GetAuthenticatedUser は認証済みユーザーのプロフィールを取得する。
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "get_user", http.MethodGet, "/user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRepositories は認証済みユーザーのリポジトリを更新日時順に最大100件取得する。
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	query := url.Values{
		"sort":     {"updated"},
		"per_page": {"100"},
	}
	var repos []Repository
	if err := c.do(ctx, "list_repos", http.MethodGet, "/user/repos", query, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepository はリポジトリのメタデータを取得する。
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	var repository Repository
	if err := c.do(ctx, "get_repo", http.MethodGet, path, nil, nil, &repository); err != nil {
		return nil, err
	}
	return &repository, nil
}

// ListBranches はリポジトリのブランチを最大100件取得する。
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]Branch, error) {
	path := fmt.Sprintf("/repos/%s/%s/branches", url.PathEscape(owner), url.PathEscape(repo))
	query := url.Values{"per_page": {"100"}}
	var branches []Branch
	if err := c.do(ctx, "list_branches", http.MethodGet, path, query, nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// GetBranch は指定ブランチを取得する。ブランチ存在確認に使用する。
func (c *Client) GetBranch(ctx context.Context, owner, repo, branch string) (*Branch, error) {
	path := fmt.Sprintf("/repos/%s/%s/branches/%s",
		url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))
	var b Branch
	if err := c.do(ctx, "get_branch", http.MethodGet, path, nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListPullRequests はリポジトリのプルリクエスト一覧を取得する。
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string, opt PullListOptions) ([]PullRequest, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls", url.PathEscape(owner), url.PathEscape(repo))

	query := url.Values{}
	if opt.State != "" {
		query.Set("state", opt.State)
	}
	if opt.Sort != "" {
		query.Set("sort", opt.Sort)
	}
	if opt.Direction != "" {
		query.Set("direction", opt.Direction)
	}
	if opt.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opt.PerPage))
	}

	var pulls []PullRequest
	if err := c.do(ctx, "list_pulls", http.MethodGet, path, query, nil, &pulls); err != nil {
		return nil, err
	}
	return pulls, nil
}

// GetPullRequest は指定番号のプルリクエストを取得する。
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", url.PathEscape(owner), url.PathEscape(repo), number)
	var pull PullRequest
	if err := c.do(ctx, "get_pull", http.MethodGet, path, nil, nil, &pull); err != nil {
		return nil, err
	}
	return &pull, nil
}

// CreatePullRequest はプルリクエストを作成する。
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, input NewPullRequest) (*PullRequest, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls", url.PathEscape(owner), url.PathEscape(repo))
	var pull PullRequest
	if err := c.do(ctx, "create_pull", http.MethodPost, path, nil, input, &pull); err != nil {
		return nil, err
	}
	return &pull, nil
}

// GetTree はリポジトリのHEADツリーを取得する。
// recursiveがtrueの場合はサブディレクトリを含む全エントリを返す。
func (c *Client) GetTree(ctx context.Context, owner, repo string, recursive bool) (*Tree, error) {
	path := fmt.Sprintf("/repos/%s/%s/git/trees/HEAD", url.PathEscape(owner), url.PathEscape(repo))
	query := url.Values{}
	if recursive {
		query.Set("recursive", "true")
	}
	var tree Tree
	if err := c.do(ctx, "get_tree", http.MethodGet, path, query, nil, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// GetContents は指定パスのコンテンツを取得する。
// アップストリームはファイルの場合オブジェクト、ディレクトリの場合配列を返すため、
// 生のJSONをそのまま返してクライアントへパススルーする。
func (c *Client) GetContents(ctx context.Context, owner, repo, path string) (json.RawMessage, error) {
	apiPath := fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(owner), url.PathEscape(repo), path)
	var raw json.RawMessage
	if err := c.do(ctx, "get_contents", http.MethodGet, apiPath, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CreateIssueComment はイシュー（プルリクエスト）にコメントを投稿する。
// GitHubのPRコメントはイシューコメントAPIを使用する。
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*Comment, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", url.PathEscape(owner), url.PathEscape(repo), number)
	input := map[string]string{"body": body}
	var comment Comment
	if err := c.do(ctx, "create_comment", http.MethodPost, path, nil, input, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListIssueComments はイシュー（プルリクエスト）のコメントを最大100件取得する。
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]Comment, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", url.PathEscape(owner), url.PathEscape(repo), number)
	query := url.Values{"per_page": {"100"}}
	var comments []Comment
	if err := c.do(ctx, "list_comments", http.MethodGet, path, query, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// githubErrorBody はGitHubのエラーレスポンスボディ。
type githubErrorBody struct {
	Message string `json:"message"`
}

// do はHTTPリクエストを実行し、レスポンスをoutにデコードする。
// 4xx/5xxは*Errorとして返し、メトリクスが設定されていれば結果を記録する。
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "gitdeck/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.ObserveUpstreamLatency(operation, time.Since(start))
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamRequest(operation, 0)
		}
		c.logger.Error("upstream request failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return &Error{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(operation, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errBody githubErrorBody
		// エラーボディのパース失敗は無視してステータスのみ伝える
		_ = json.Unmarshal(respBody, &errBody)

		c.logger.Warn("upstream returned error status",
			slog.String("operation", operation),
			slog.Int("status", resp.StatusCode),
			slog.String("message", errBody.Message),
		)
		return &Error{StatusCode: resp.StatusCode, Message: errBody.Message}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
