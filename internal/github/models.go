package github

import "time"

// User はGitHubユーザーのプロフィールを表す。
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`
}

// Repository はリポジトリのメタデータを表す。
// ローカルには永続化せず、リクエストごとにアップストリームから取得する。
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Owner           User      `json:"owner"`
	Description     string    `json:"description"`
	Private         bool      `json:"private"`
	Fork            bool      `json:"fork"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	DefaultBranch   string    `json:"default_branch"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	WatchersCount   int       `json:"watchers_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	Visibility      string    `json:"visibility"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

// Ref はプルリクエストのhead/baseブランチ参照を表す。
type Ref struct {
	Label string `json:"label"`
	Ref   string `json:"ref"`
	SHA   string `json:"sha"`
}

// PullRequest はプルリクエストのメタデータを表す。
type PullRequest struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	State     string     `json:"state"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Draft     bool       `json:"draft"`
	User      User       `json:"user"`
	Head      Ref        `json:"head"`
	Base      Ref        `json:"base"`
	HTMLURL   string     `json:"html_url"`
	Comments  int        `json:"comments"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

// BranchCommit はブランチの先頭コミットを表す。
type BranchCommit struct {
	SHA string `json:"sha"`
	URL string `json:"url"`
}

// Branch はリポジトリのブランチを表す。
type Branch struct {
	Name      string       `json:"name"`
	Protected bool         `json:"protected"`
	Commit    BranchCommit `json:"commit"`
}

// TreeEntry はGitツリーの1エントリ（ファイルまたはディレクトリ）を表す。
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int    `json:"size,omitempty"`
	URL  string `json:"url"`
}

// Tree はGitツリー取得のレスポンスを表す。
type Tree struct {
	SHA       string      `json:"sha"`
	Truncated bool        `json:"truncated"`
	Entries   []TreeEntry `json:"tree"`
}

// Comment はイシュー・プルリクエストのコメントを表す。
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      User      `json:"user"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PullListOptions はプルリクエスト一覧取得のクエリパラメータ。
type PullListOptions struct {
	State     string // open, closed, all
	Sort      string // created, updated
	Direction string // asc, desc
	PerPage   int
}

// NewPullRequest はプルリクエスト作成のリクエストボディ。
type NewPullRequest struct {
	Title               string `json:"title"`
	Head                string `json:"head"`
	Base                string `json:"base"`
	Body                string `json:"body,omitempty"`
	Draft               bool   `json:"draft"`
	MaintainerCanModify bool   `json:"maintainer_can_modify"`
}
