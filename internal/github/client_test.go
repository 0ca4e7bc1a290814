package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("gho_testtoken", ClientConfig{BaseURL: srv.URL})
	return client, srv
}

func TestClient_ListRepositories_SendsAuthAndQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" {
			t.Errorf("path = %q, want /user/repos", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer gho_testtoken" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("sort"); got != "updated" {
			t.Errorf("sort = %q, want updated", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}
		w.Write([]byte(`[{"id":1,"name":"repo1","fork":false,"stargazers_count":5},{"id":2,"name":"repo2","fork":true}]`))
	})

	repos, err := client.ListRepositories(context.Background())
	if err != nil {
		t.Fatalf("ListRepositories returned error: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("len(repos) = %d, want 2", len(repos))
	}
	if repos[0].Name != "repo1" || repos[0].StargazersCount != 5 {
		t.Errorf("unexpected first repo: %+v", repos[0])
	}
	if !repos[1].Fork {
		t.Error("second repo should be a fork")
	}
}

func TestClient_ErrorStatus_ReturnsTypedError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com"}`))
	})

	_, err := client.GetRepository(context.Background(), "owner", "missing")
	if err == nil {
		t.Fatal("expected error")
	}

	var ghErr *Error
	if !errors.As(err, &ghErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if ghErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", ghErr.StatusCode)
	}
	if ghErr.Message != "Not Found" {
		t.Errorf("Message = %q, want Not Found", ghErr.Message)
	}
}

func TestClient_PermissionDenied(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Resource not accessible by integration"}`))
	})

	_, err := client.ListBranches(context.Background(), "owner", "private-repo")

	var ghErr *Error
	if !errors.As(err, &ghErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if ghErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", ghErr.StatusCode)
	}
}

func TestClient_NetworkFailure_ReturnsErrorWithZeroStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 接続先を閉じてネットワーク障害を再現

	client := NewClient("gho_testtoken", ClientConfig{BaseURL: srv.URL})

	_, err := client.GetAuthenticatedUser(context.Background())
	var ghErr *Error
	if !errors.As(err, &ghErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if ghErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for network failure", ghErr.StatusCode)
	}
}

func TestClient_CreatePullRequest_PostsBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/repos/o/r/pulls" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		var input map[string]any
		if err := json.Unmarshal(body, &input); err != nil {
			t.Fatalf("request body is not valid JSON: %v", err)
		}
		if input["title"] != "t" || input["head"] != "feature" || input["base"] != "main" {
			t.Errorf("unexpected body: %v", input)
		}
		if input["maintainer_can_modify"] != true {
			t.Errorf("maintainer_can_modify = %v, want true", input["maintainer_can_modify"])
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":10,"number":42,"state":"open","title":"t"}`))
	})

	pull, err := client.CreatePullRequest(context.Background(), "o", "r", NewPullRequest{
		Title:               "t",
		Head:                "feature",
		Base:                "main",
		MaintainerCanModify: true,
	})
	if err != nil {
		t.Fatalf("CreatePullRequest returned error: %v", err)
	}
	if pull.Number != 42 {
		t.Errorf("Number = %d, want 42", pull.Number)
	}
}

func TestClient_ListPullRequests_QueryParams(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != "open" {
			t.Errorf("state = %q, want open", q.Get("state"))
		}
		if q.Get("sort") != "created" {
			t.Errorf("sort = %q, want created", q.Get("sort"))
		}
		if q.Get("direction") != "desc" {
			t.Errorf("direction = %q, want desc", q.Get("direction"))
		}
		if q.Get("per_page") != "50" {
			t.Errorf("per_page = %q, want 50", q.Get("per_page"))
		}
		w.Write([]byte(`[]`))
	})

	_, err := client.ListPullRequests(context.Background(), "o", "r", PullListOptions{
		State:     "open",
		Sort:      "created",
		Direction: "desc",
		PerPage:   50,
	})
	if err != nil {
		t.Fatalf("ListPullRequests returned error: %v", err)
	}
}

func TestClient_GetTree_RecursiveFlag(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/o/r/git/trees/HEAD" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("recursive"); got != "true" {
			t.Errorf("recursive = %q, want true", got)
		}
		w.Write([]byte(`{"sha":"abc","truncated":false,"tree":[{"path":"src/main.go","type":"blob","sha":"def"}]}`))
	})

	tree, err := client.GetTree(context.Background(), "o", "r", true)
	if err != nil {
		t.Fatalf("GetTree returned error: %v", err)
	}
	if len(tree.Entries) != 1 || tree.Entries[0].Path != "src/main.go" {
		t.Errorf("unexpected tree: %+v", tree)
	}
}

func TestClient_GetContents_PassesThroughRawJSON(t *testing.T) {
	// ディレクトリの場合アップストリームは配列を返す
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/o/r/contents/src" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"name":"main.go","type":"file"},{"name":"util","type":"dir"}]`))
	})

	raw, err := client.GetContents(context.Background(), "o", "r", "src")
	if err != nil {
		t.Fatalf("GetContents returned error: %v", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("raw contents should be a JSON array: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestClient_CreateIssueComment(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/o/r/issues/7/comments" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var input map[string]string
		_ = json.Unmarshal(body, &input)
		if input["body"] != "looks good" {
			t.Errorf("body = %q, want %q", input["body"], "looks good")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":55,"body":"looks good","user":{"login":"octocat"},"created_at":"2024-01-02T03:04:05Z"}`))
	})

	comment, err := client.CreateIssueComment(context.Background(), "o", "r", 7, "looks good")
	if err != nil {
		t.Fatalf("CreateIssueComment returned error: %v", err)
	}
	if comment.ID != 55 || comment.User.Login != "octocat" {
		t.Errorf("unexpected comment: %+v", comment)
	}
}
