package contentstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	githubAPIVersion     = "2022-11-28"
	defaultGitHubBaseURL = "https://api.github.com"
	// DefaultCommitMessage is the commit message of admin console saves.
	DefaultCommitMessage = "Update booth configuration from admin console"
	userAgent            = "booth-festa-admin"
	maxResponseBytes     = 8 << 20
)

type GitHubConfig struct {
	// BaseURL defaults to the public GitHub API.
	BaseURL string
	// Repo is "owner/name".
	Repo   string
	Branch string
	Token  string
	// CommitMessage defaults to DefaultCommitMessage.
	CommitMessage string
	HTTPClient    *http.Client
}

// GitHubStore keeps files in a GitHub repository through the contents API.
// The version token is the blob sha of the file.
type GitHubStore struct {
	baseURL    string
	repo       string
	branch     string
	token      string
	message    string
	httpClient *http.Client
}

func NewGitHubStore(cfg GitHubConfig) (*GitHubStore, error) {
	owner, name, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("github store: repo must be owner/name (got %q)", cfg.Repo)
	}
	if cfg.Token == "" {
		return nil, errors.New("github store: token is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGitHubBaseURL
	}
	message := cfg.CommitMessage
	if message == "" {
		message = DefaultCommitMessage
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &GitHubStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		repo:       url.PathEscape(owner) + "/" + url.PathEscape(name),
		branch:     cfg.Branch,
		token:      cfg.Token,
		message:    message,
		httpClient: httpClient,
	}, nil
}

type contentResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

func (s *GitHubStore) Load(ctx context.Context, path string) (string, string, error) {
	endpoint := s.contentsURL(path)
	if s.branch != "" {
		endpoint += "?ref=" + url.QueryEscape(s.branch)
	}
	status, body, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", &TransportError{Op: "load", Path: path, Err: err}
	}
	switch {
	case status == http.StatusNotFound:
		return "", "", ErrNotFound
	case status != http.StatusOK:
		return "", "", &TransportError{Op: "load", Path: path, StatusCode: status, Err: errors.New(errorMessage(body))}
	}

	var resp contentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", &TransportError{Op: "load", Path: path, StatusCode: status, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if resp.Encoding != "base64" {
		return "", "", &TransportError{Op: "load", Path: path, StatusCode: status, Err: fmt.Errorf("unsupported content encoding %q", resp.Encoding)}
	}
	// The API wraps base64 content at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return "", "", &TransportError{Op: "load", Path: path, StatusCode: status, Err: fmt.Errorf("decoding content: %w", err)}
	}
	return string(raw), resp.SHA, nil
}

func (s *GitHubStore) Save(ctx context.Context, path, text, token string) (string, error) {
	payload, err := json.Marshal(putRequest{
		Message: s.message,
		Content: base64.StdEncoding.EncodeToString([]byte(text)),
		SHA:     token,
		Branch:  s.branch,
	})
	if err != nil {
		return "", fmt.Errorf("github store: encoding request: %w", err)
	}
	status, body, err := s.do(ctx, http.MethodPut, s.contentsURL(path), payload)
	if err != nil {
		return "", &TransportError{Op: "save", Path: path, Err: err}
	}
	switch {
	case status == http.StatusConflict, status == http.StatusPreconditionFailed:
		return "", ErrConflict
	case status == http.StatusUnprocessableEntity && strings.Contains(errorMessage(body), "sha"):
		// Creating a file that already exists, or a malformed sha.
		return "", ErrConflict
	case status == http.StatusNotFound:
		return "", ErrNotFound
	case status != http.StatusOK && status != http.StatusCreated:
		return "", &TransportError{Op: "save", Path: path, StatusCode: status, Err: errors.New(errorMessage(body))}
	}

	var resp putResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &TransportError{Op: "save", Path: path, StatusCode: status, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return resp.Content.SHA, nil
}

func (s *GitHubStore) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/repos/" + s.repo + "/contents/" + strings.Join(segments, "/")
}

func (s *GitHubStore) do(ctx context.Context, method, endpoint string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if len(body) == 0 {
		return "empty response"
	}
	return strings.TrimSpace(string(body))
}
