package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yndnr/metacall-deploy-go/internal/cli/config"
	"github.com/yndnr/metacall-deploy-go/internal/cli/connection"
	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// mockDashboard is an httptest server speaking the dashboard auth API.
type mockDashboard struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]string // email -> password
	tokens    map[string]string // email -> token
	valid     map[string]bool
	refreshed map[string]string // old -> new
	hits      map[string]int
}

func newMockDashboard(t *testing.T) *mockDashboard {
	t.Helper()
	m := &mockDashboard{
		accounts:  make(map[string]string),
		tokens:    make(map[string]string),
		valid:     make(map[string]bool),
		refreshed: make(map[string]string),
		hits:      make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Close)
	return m
}

func (m *mockDashboard) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[r.URL.Path]++

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "jwt ")

	switch r.URL.Path {
	case connection.PathLogin:
		var body struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		if pw, ok := m.accounts[body.Email]; ok && pw == body.Password {
			jsonResponse(w, http.StatusOK, m.tokens[body.Email])
			return
		}
		textResponse(w, http.StatusUnauthorized, "Invalid email or password")
	case connection.PathValidate:
		if m.valid[token] {
			jsonResponse(w, http.StatusOK, true)
			return
		}
		textResponse(w, http.StatusUnauthorized, "Invalid token")
	case connection.PathRefresh:
		if fresh, ok := m.refreshed[token]; ok {
			m.valid[fresh] = true
			jsonResponse(w, http.StatusOK, fresh)
			return
		}
		textResponse(w, http.StatusUnauthorized, "Invalid token")
	default:
		http.NotFound(w, r)
	}
}

func (m *mockDashboard) addAccount(email, password, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[email] = password
	m.tokens[email] = token
	m.valid[token] = true
}

func (m *mockDashboard) accept(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid[token] = true
}

func (m *mockDashboard) allowRefresh(old, fresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed[old] = fresh
}

func (m *mockDashboard) hitCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// textResponse writes a plain text error, as the dashboard does.
func textResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(message))
}

// cliResult holds the output of one invocation.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// testEnv isolates an invocation: a fresh configuration directory and no
// token or interactive overrides from the caller's environment.
func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("METACALL_API_KEY", "")
	t.Setenv("METACALL_DEPLOY_INTERACTIVE", "false")
	t.Setenv("METACALL_DEPLOY_SERVER_URL", "")
	t.Setenv("METACALL_DEPLOY_METRICS_FILE", "")
	t.Setenv("METACALL_DEPLOY_NON_INTERACTIVE", "")
	dir := filepath.Join(t.TempDir(), "conf")
	t.Setenv("METACALL_DEPLOY_CONF_DIR", dir)
	return dir
}

// run executes the CLI with stdin as operator input.
func run(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer

	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := app.RunContext(ctx, append([]string{"metacall-deploy"}, args...))
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// jwtExpiring returns an HS256 token whose exp claim is now+d.
func jwtExpiring(t *testing.T, d time.Duration) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(d).Unix(),
		"d":   d.String(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func storeToken(t *testing.T, dir, token string) {
	t.Helper()
	if err := config.NewStore(dir).Save(domain.TokenPatch(token)); err != nil {
		t.Fatal(err)
	}
}

func storedRecord(t *testing.T, dir string) *domain.CredentialRecord {
	t.Helper()
	rec, err := config.NewStore(dir).Load()
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func recordExists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, config.FileName))
	return err == nil
}
