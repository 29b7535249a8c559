package command

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/metacall-deploy-go/internal/cli/connection"
	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

func TestLogin_StoredTokenValid(t *testing.T) {
	dir := testEnv(t)
	dash := newMockDashboard(t)
	stored := jwtExpiring(t, 30*24*time.Hour)
	dash.accept(stored)
	storeToken(t, dir, stored)

	res := run(t, "", "-u", dash.URL, "login")
	if res.err != nil {
		t.Fatalf("login error = %v\nstderr: %s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "Login Successful!") {
		t.Errorf("stdout = %q", res.stdout)
	}
	if dash.hitCount(connection.PathRefresh) != 0 || dash.hitCount(connection.PathLogin) != 0 {
		t.Error("a fresh valid token needs neither refresh nor login")
	}
	if got := storedRecord(t, dir).Token; got != stored {
		t.Errorf("stored token changed")
	}
}

func TestLogin_FlagTokenPersisted(t *testing.T) {
	dir := testEnv(t)
	dash := newMockDashboard(t)
	flagToken := jwtExpiring(t, 20*24*time.Hour)
	dash.accept(flagToken)

	res := run(t, "", "-u", dash.URL, "--token", flagToken, "login")
	if res.err != nil {
		t.Fatalf("login error = %v", res.err)
	}
	if dash.hitCount(connection.PathRefresh) != 0 {
		t.Error("20 days left is above the 15 day threshold, refresh must not be called")
	}
	if got := storedRecord(t, dir).Token; got != flagToken {
		t.Errorf("stored token = %q, want the flag token", got)
	}
}

func TestLogin_InvalidFlagToken(t *testing.T) {
	testEnv(t)
	dash := newMockDashboard(t)

	res := run(t, "", "-u", dash.URL, "-t", "bogus", "login")
	if code := ExitCode(res.err); code != ExitAuth {
		t.Errorf("exit code = %d, want %d (err = %v)", code, ExitAuth, res.err)
	}
}

func TestLogin_EmailPasswordFlags(t *testing.T) {
	dir := testEnv(t)
	dash := newMockDashboard(t)
	token := jwtExpiring(t, 30*24*time.Hour)
	dash.addAccount("user@example.com", "secret", token)

	res := run(t, "", "-u", dash.URL, "-e", "user@example.com", "-p", "secret", "login")
	if res.err != nil {
		t.Fatalf("login error = %v", res.err)
	}
	if got := storedRecord(t, dir).Token; got != token {
		t.Errorf("stored token = %q, want the login token", got)
	}
}

func TestLogin_WrongPasswordNonInteractive(t *testing.T) {
	dir := testEnv(t)
	dash := newMockDashboard(t)
	dash.addAccount("user@example.com", "secret", "tok")

	res := run(t, "", "-u", dash.URL, "-e", "user@example.com", "-p", "nope", "login")
	if code := ExitCode(res.err); code != ExitAuth {
		t.Fatalf("exit code = %d, want %d (err = %v)", code, ExitAuth, res.err)
	}
	if n := dash.hitCount(connection.PathLogin); n != 1 {
		t.Errorf("login attempts = %d, want exactly 1 without a terminal", n)
	}
	if recordExists(dir) {
		t.Error("a failed login must not write the record")
	}
}

func TestLogin_NothingSuppliedNonInteractive(t *testing.T) {
	testEnv(t)
	dash := newMockDashboard(t)

	res := run(t, "", "-u", dash.URL, "login")
	if code := ExitCode(res.err); code != ExitUsage {
		t.Errorf("exit code = %d, want %d (err = %v)", code, ExitUsage, res.err)
	}
}

func TestLogin_InteractiveMenu(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("METACALL_DEPLOY_INTERACTIVE", "true")
	dash := newMockDashboard(t)
	token := jwtExpiring(t, 30*24*time.Hour)
	dash.addAccount("user@example.com", "secret", token)

	// Menu choice 2 is email and password.
	res := run(t, "2\nuser@example.com\nsecret\n", "-u", dash.URL, "login")
	if res.err != nil {
		t.Fatalf("login error = %v\nstderr: %s", res.err, res.stderr)
	}
	for _, want := range []string{"1) ", "Email: ", "Password: "} {
		if !strings.Contains(res.stderr, want) {
			t.Errorf("prompts on stderr missing %q:\n%s", want, res.stderr)
		}
	}
	if strings.Contains(res.stdout, "Email") {
		t.Error("prompts must not go to stdout")
	}
	if got := storedRecord(t, dir).Token; got != token {
		t.Errorf("stored token = %q, want the login token", got)
	}
}

func TestLogin_InteractiveRetry(t *testing.T) {
	testEnv(t)
	t.Setenv("METACALL_DEPLOY_INTERACTIVE", "1")
	dash := newMockDashboard(t)
	dash.addAccount("user@example.com", "secret", jwtExpiring(t, 30*24*time.Hour))

	input := "user@example.com\nwrong\nuser@example.com\nsecret\n"
	res := run(t, input, "-u", dash.URL, "login", "--method", "login")
	if res.err != nil {
		t.Fatalf("login error = %v\nstderr: %s", res.err, res.stderr)
	}
	if n := dash.hitCount(connection.PathLogin); n != 2 {
		t.Errorf("login attempts = %d, want 2", n)
	}
	if !strings.Contains(res.stderr, "please try again") {
		t.Errorf("missing retry notice:\n%s", res.stderr)
	}
}

func TestLogin_NonInteractiveFlagWinsOverEnv(t *testing.T) {
	testEnv(t)
	t.Setenv("METACALL_DEPLOY_INTERACTIVE", "true")
	dash := newMockDashboard(t)

	res := run(t, "user@example.com\n", "-u", dash.URL, "--non-interactive", "login")
	if code := ExitCode(res.err); code != ExitUsage {
		t.Errorf("exit code = %d, want %d (err = %v)", code, ExitUsage, res.err)
	}
}

func TestLogin_Dev(t *testing.T) {
	dir := testEnv(t)

	res := run(t, "", "--dev", "login")
	if res.err != nil {
		t.Fatalf("login --dev error = %v", res.err)
	}
	if !strings.Contains(res.stderr, domain.DefaultDevURL) {
		t.Errorf("stderr should name the dev URL:\n%s", res.stderr)
	}
	if recordExists(dir) {
		t.Error("dev mode must not persist anything")
	}
}

func TestLogin_EnvToken(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("METACALL_API_KEY", "env-token")
	dash := newMockDashboard(t)

	res := run(t, "", "-u", dash.URL, "-t", "flag-token", "login")
	if res.err != nil {
		t.Fatalf("login error = %v", res.err)
	}
	if dash.hitCount(connection.PathValidate) != 0 {
		t.Error("the env token is used as-is")
	}
	if !strings.Contains(res.stderr, "METACALL_API_KEY") {
		t.Errorf("stderr should mention the env override:\n%s", res.stderr)
	}
	if recordExists(dir) {
		t.Error("the env token is never persisted")
	}
}

func TestLogin_ServiceUnreachable(t *testing.T) {
	dir := testEnv(t)
	dash := newMockDashboard(t)
	url := dash.URL
	dash.Close()
	storeToken(t, dir, "stored")

	res := run(t, "", "-u", url, "login")
	if code := ExitCode(res.err); code != ExitTransport {
		t.Errorf("exit code = %d, want %d (err = %v)", code, ExitTransport, res.err)
	}
	if got := storedRecord(t, dir).Token; got != "stored" {
		t.Error("a transport failure must leave the record alone")
	}
}

func TestLogin_WrongServerURL(t *testing.T) {
	dir := testEnv(t)
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)
	storeToken(t, dir, "stored")

	res := run(t, "", "-u", server.URL, "login")
	if code := ExitCode(res.err); code != ExitTransport {
		t.Errorf("exit code = %d, want %d (err = %v)", code, ExitTransport, res.err)
	}
	if got := storedRecord(t, dir).Token; got != "stored" {
		t.Error("a 404 says nothing about the token; the record must stay")
	}
}

func TestLogin_UnknownMethod(t *testing.T) {
	testEnv(t)

	res := run(t, "", "login", "--method", "carrier-pigeon")
	if code := ExitCode(res.err); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
}
