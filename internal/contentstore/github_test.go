package contentstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContents imitates the contents endpoint for a single repository.
type fakeContents struct {
	t        *testing.T
	mu       sync.Mutex
	files    map[string]string
	shas     map[string]string
	revision int
	lastPut  putRequest
	failWith int
}

func newFakeContents(t *testing.T) *fakeContents {
	return &fakeContents{t: t, files: map[string]string{}, shas: map[string]string{}}
}

func (f *fakeContents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	assert.Equal(f.t, "Bearer secret-token", r.Header.Get("Authorization"))
	assert.Equal(f.t, githubAPIVersion, r.Header.Get("X-GitHub-Api-Version"))
	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		_, _ = w.Write([]byte(`{"message":"Server Error"}`))
		return
	}

	path, ok := strings.CutPrefix(r.URL.Path, "/repos/festa/site/contents/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		assert.Equal(f.t, "main", r.URL.Query().Get("ref"))
		text, ok := f.files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		// Wrap like the real API does.
		enc := base64.StdEncoding.EncodeToString([]byte(text))
		var wrapped strings.Builder
		for len(enc) > 60 {
			wrapped.WriteString(enc[:60] + "\n")
			enc = enc[60:]
		}
		wrapped.WriteString(enc)
		_ = json.NewEncoder(w).Encode(contentResponse{SHA: f.shas[path], Content: wrapped.String(), Encoding: "base64"})
	case http.MethodPut:
		var req putRequest
		if !assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.lastPut = req
		current, exists := f.shas[path]
		switch {
		case exists && req.SHA == "":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"Invalid request.\n\n\"sha\" wasn't supplied."}`))
			return
		case exists && req.SHA != current:
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"config.js does not match ` + req.SHA + `"}`))
			return
		}
		raw, err := base64.StdEncoding.DecodeString(req.Content)
		if !assert.NoError(f.t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.revision++
		sha := strings.Repeat(string(rune('a'+f.revision)), 40)
		f.files[path] = string(raw)
		f.shas[path] = sha
		status := http.StatusOK
		if !exists {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"content":{"sha":"` + sha + `"}}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestGitHubStore(t *testing.T, fake *fakeContents) *GitHubStore {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	store, err := NewGitHubStore(GitHubConfig{
		BaseURL: srv.URL,
		Repo:    "festa/site",
		Branch:  "main",
		Token:   "secret-token",
	})
	require.NoError(t, err)
	return store
}

func TestNewGitHubStore_Validation(t *testing.T) {
	_, err := NewGitHubStore(GitHubConfig{Repo: "no-slash", Token: "x"})
	assert.Error(t, err)

	_, err = NewGitHubStore(GitHubConfig{Repo: "a/b"})
	assert.Error(t, err)

	store, err := NewGitHubStore(GitHubConfig{Repo: "a/b", Token: "x"})
	require.NoError(t, err)
	assert.Equal(t, defaultGitHubBaseURL+"/repos/a/b/contents/apply/config.js", store.contentsURL("apply/config.js"))
}

func TestGitHubStore_LoadSaveRoundTrip(t *testing.T) {
	fake := newFakeContents(t)
	fake.files["apply/config.js"] = "const CONFIG = { memberDiscount: 2000 }; // 日本語"
	fake.shas["apply/config.js"] = "sha-1"
	store := newTestGitHubStore(t, fake)
	ctx := context.Background()

	text, token, err := store.Load(ctx, "apply/config.js")
	require.NoError(t, err)
	assert.Equal(t, "const CONFIG = { memberDiscount: 2000 }; // 日本語", text)
	assert.Equal(t, "sha-1", token)

	next, err := store.Save(ctx, "apply/config.js", "const CONFIG = {};\n", token)
	require.NoError(t, err)
	assert.NotEqual(t, token, next)
	assert.Equal(t, DefaultCommitMessage, fake.lastPut.Message)
	assert.Equal(t, "main", fake.lastPut.Branch)
	assert.Equal(t, "sha-1", fake.lastPut.SHA)

	text, token, err = store.Load(ctx, "apply/config.js")
	require.NoError(t, err)
	assert.Equal(t, "const CONFIG = {};\n", text)
	assert.Equal(t, next, token)
}

func TestGitHubStore_StaleTokenConflicts(t *testing.T) {
	fake := newFakeContents(t)
	fake.files["apply/config.js"] = "v1"
	fake.shas["apply/config.js"] = "sha-1"
	store := newTestGitHubStore(t, fake)
	ctx := context.Background()

	_, err := store.Save(ctx, "apply/config.js", "v2", "sha-1")
	require.NoError(t, err)

	_, err = store.Save(ctx, "apply/config.js", "v2-other", "sha-1")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.Save(ctx, "apply/config.js", "v3", "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGitHubStore_CreateWithEmptyToken(t *testing.T) {
	store := newTestGitHubStore(t, newFakeContents(t))

	token, err := store.Save(context.Background(), "apply/config.js", "new", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestGitHubStore_NotFound(t *testing.T) {
	store := newTestGitHubStore(t, newFakeContents(t))

	_, _, err := store.Load(context.Background(), "apply/missing.js")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubStore_ServerErrorIsTransport(t *testing.T) {
	fake := newFakeContents(t)
	fake.failWith = http.StatusBadGateway
	store := newTestGitHubStore(t, fake)

	_, _, err := store.Load(context.Background(), "apply/config.js")

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
	assert.Equal(t, "load", terr.Op)
	assert.Contains(t, err.Error(), "Server Error")
}

func TestGitHubStore_UnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	store, err := NewGitHubStore(GitHubConfig{BaseURL: srv.URL, Repo: "festa/site", Token: "secret-token"})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "apply/config.js", "x", "sha")

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.StatusCode)
	assert.NotErrorIs(t, err, ErrConflict)
}
