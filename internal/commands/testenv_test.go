package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/chameleoncloud/trovi/internal/config"
)

const (
	testRealm      = "chameleon"
	testClientID   = "cli"
	testSecret     = "secret"
	testTroviToken = "trovi-token"
)

// TestEnv provides an isolated configuration directory and a fake server
// acting as both the identity provider and the Trovi API.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Server  *httptest.Server

	mux      *http.ServeMux
	mu       sync.Mutex
	requests []RecordedRequest
}

// RecordedRequest captures an API call that reached a registered route.
type RecordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   []byte
}

// NewTestEnv creates a sandboxed environment. Connection settings point at
// the fake server through TROVI_* environment variables.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tempDir := t.TempDir()
	t.Setenv("TROVI_CONFIG_DIR", filepath.Join(tempDir, "config"))
	t.Setenv("TROVI_CACHE_DIR", filepath.Join(tempDir, "cache"))
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{
		config.EnvKeycloakURL, config.EnvKeycloakRealm, config.EnvOIDCClientID, config.EnvOIDCClientSecret,
		config.EnvAdmin, config.EnvBaseURL, config.EnvPortalURL, config.EnvScopes,
		config.EnvOIDCDiscovery, config.EnvProfile,
	} {
		t.Setenv(key, "")
	}
	config.SetActiveProfile("")
	t.Cleanup(func() { config.SetActiveProfile("") })
	keyring.MockInit()

	env := &TestEnv{t: t, TempDir: tempDir, mux: http.NewServeMux()}

	env.mux.HandleFunc("POST /realms/"+testRealm+"/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"identity","token_type":"Bearer","expires_in":60}`))
	})
	env.mux.HandleFunc("POST /token/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"access_token":"` + testTroviToken + `","token_type":"Bearer"}`))
	})

	env.Server = httptest.NewServer(env.mux)
	t.Cleanup(env.Server.Close)

	return env
}

// Connect exports the settings needed to reach the fake server.
func (e *TestEnv) Connect() {
	e.t.Setenv(config.EnvKeycloakURL, e.Server.URL)
	e.t.Setenv(config.EnvKeycloakRealm, testRealm)
	e.t.Setenv(config.EnvOIDCClientID, testClientID)
	e.t.Setenv(config.EnvOIDCClientSecret, testSecret)
	e.t.Setenv(config.EnvBaseURL, e.Server.URL)
}

// Handle registers an authenticated Trovi route and records its requests.
func (e *TestEnv) Handle(pattern string, h http.HandlerFunc) {
	e.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != testTroviToken {
			http.Error(w, `{"detail":"missing token"}`, http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		e.mu.Lock()
		e.requests = append(e.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		})
		e.mu.Unlock()
		h(w, r)
	})
}

// HandlePublic registers a route that needs no Trovi token, such as a
// pre-signed download URL.
func (e *TestEnv) HandlePublic(pattern string, h http.HandlerFunc) {
	e.mux.HandleFunc(pattern, h)
}

// HandleJSON registers a route that replies with a fixed status and body.
func (e *TestEnv) HandleJSON(pattern string, status int, body string) {
	e.Handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// Requests returns the recorded API calls.
func (e *TestEnv) Requests() []RecordedRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]RecordedRequest(nil), e.requests...)
}

// Result holds the streams of one command run.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Run executes the root command with args and the given stdin.
func (e *TestEnv) Run(stdin string, args ...string) Result {
	e.t.Helper()

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// MustRun runs the command and fails the test on error.
func (e *TestEnv) MustRun(args ...string) Result {
	e.t.Helper()
	res := e.Run("", args...)
	if res.Err != nil {
		e.t.Fatalf("trovi %s failed: %v\nstderr: %s", strings.Join(args, " "), res.Err, res.Stderr)
	}
	return res
}

// WriteFile writes content under the temp directory and returns its path.
func (e *TestEnv) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.TempDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// decodeBody unmarshals a recorded request body.
func decodeBody(t *testing.T, req RecordedRequest) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("Failed to decode %s %s body %q: %v", req.Method, req.Path, req.Body, err)
	}
	return body
}
