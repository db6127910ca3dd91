package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tastetrail/tastetrail/internal/api"
	"github.com/tastetrail/tastetrail/internal/api/handler"
	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
	"github.com/tastetrail/tastetrail/internal/core/service"
	"github.com/tastetrail/tastetrail/internal/infrastructure/db/memory"
	"github.com/tastetrail/tastetrail/internal/infrastructure/storage"
)

type cliEnv struct {
	t           *testing.T
	url         string
	sessionFile string
	repo        *memory.UserRepository
	userCalls   atomic.Int32
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	env := &cliEnv{
		t:           t,
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
		repo:        memory.NewUserRepository(),
	}
	e := api.NewRouter(api.Deps{
		Auth:      service.NewAuthService(env.repo, memory.NewRevocationStore(), "secret", time.Hour),
		Users:     service.NewUserService(env.repo),
		Readiness: map[string]handler.Pinger{},
		Log:       zerolog.Nop(),
		Registry:  prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/users") {
			env.userCalls.Add(1)
		}
		e.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	env.url = srv.URL
	return env
}

func (env *cliEnv) run(args ...string) (string, string, int) {
	env.t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(append([]string{"--api-url", env.url, "--session-file", env.sessionFile, "--log-level", "off"}, args...))
	code := runMain(func() error { return root.ExecuteContext(context.Background()) }, &stderr)
	return strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), code
}

func (env *cliEnv) expect(wantCode int, wantOut string, args ...string) string {
	env.t.Helper()
	out, errOut, code := env.run(args...)
	if code != wantCode {
		env.t.Fatalf("%v: exit code %d, want %d (stdout=%q stderr=%q)", args, code, wantCode, out, errOut)
	}
	if wantOut != "" && !strings.Contains(out, wantOut) {
		env.t.Fatalf("%v: stdout %q does not contain %q", args, out, wantOut)
	}
	return out
}

func signupArgs(email string) []string {
	return []string{"signup", "--name", "Cook", "--email", email, "--password", "secret1", "--image", "https://img.example/c.png"}
}

func TestCLI_ResumeAfterLogin(t *testing.T) {
	env := newCLIEnv(t)
	env.expect(0, "allow user-dashboard", signupArgs("cook@example.com")...)
	env.expect(0, "logged out", "logout")

	env.expect(exitAuthRequired, "redirect /login?next=%2Fdashboard%2Fmeal-planner", "open", "/dashboard/meal-planner")
	env.expect(0, "allow meal-planner", "login", "--email", "cook@example.com", "--password", "secret1", "--next", "/dashboard/meal-planner")
	env.expect(0, "role=user", "whoami")
}

func TestCLI_LoginRejected(t *testing.T) {
	env := newCLIEnv(t)
	env.expect(0, "", signupArgs("cook@example.com")...)
	env.expect(0, "", "logout")

	_, errOut, code := env.run("login", "--email", "cook@example.com", "--password", "wrong-pass")
	if code != exitFailure || !strings.Contains(errOut, "invalid email or password") {
		t.Fatalf("expected rejection, got code=%d stderr=%q", code, errOut)
	}
	if _, err := os.Stat(env.sessionFile); !os.IsNotExist(err) {
		t.Fatalf("rejected login must not write a session: %v", err)
	}
}

func TestCLI_SignupValidation(t *testing.T) {
	env := newCLIEnv(t)
	_, errOut, code := env.run("signup", "--name", "Cook", "--email", "nope", "--password", "1", "--image", "x")
	if code != exitFailure || !strings.Contains(errOut, "email must be a valid email") {
		t.Fatalf("expected validation failure, got code=%d stderr=%q", code, errOut)
	}
}

func TestCLI_AdminCommandsAreGated(t *testing.T) {
	env := newCLIEnv(t)

	env.expect(exitAuthRequired, "", "users")
	env.expect(0, "", signupArgs("cook@example.com")...)
	env.expect(exitForbidden, "", "users")
	env.expect(exitForbidden, "redirect /forbidden", "open", "/dashboard/manage-recipe")
	if n := env.userCalls.Load(); n != 0 {
		t.Fatalf("gated commands must not reach the server, saw %d /users calls", n)
	}

	admin, err := env.repo.FindByEmail(context.Background(), "cook@example.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if _, err := env.repo.SetRole(context.Background(), admin.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}
	env.expect(0, "", signupArgs("ben@example.com")...)
	env.expect(0, "allow admin-dashboard", "login", "--email", "cook@example.com", "--password", "secret1")

	out := env.expect(0, "ben@example.com", "users")
	if !strings.Contains(out, "cook@example.com") {
		t.Fatalf("expected both users listed, got %q", out)
	}
	env.expect(0, "ben@example.com", "users") // listing twice is harmless
	adminsOnly := env.expect(0, "cook@example.com", "users", "--admins")
	if strings.Contains(adminsOnly, "ben@example.com") {
		t.Fatalf("--admins listed a regular user: %q", adminsOnly)
	}

	ben, _ := env.repo.FindByEmail(context.Background(), "ben@example.com")
	env.expect(0, "is now admin", "promote", ben.ID)
	env.expect(0, "deleted", "delete-user", ben.ID)
	env.expect(exitFailure, "", "delete-user", ben.ID)
}

func TestCLI_ExpiredCredentialClearsSession(t *testing.T) {
	env := newCLIEnv(t)
	st := storage.NewFile(env.sessionFile)
	if err := st.SetMany(map[string]string{
		ports.SlotToken: "stale-token",
		ports.SlotUser:  `{"_id":"1","name":"Cook","email":"cook@example.com"}`,
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	env.expect(0, "role=- id=1", "whoami")

	_, errOut, code := env.run("whoami", "--remote")
	if code != exitAuthRequired || !strings.Contains(errOut, "session expired") {
		t.Fatalf("expected expiry, got code=%d stderr=%q", code, errOut)
	}
	if _, err := os.Stat(env.sessionFile); !os.IsNotExist(err) {
		t.Fatalf("session file should be removed after expiry: %v", err)
	}
	env.expect(exitAuthRequired, "", "whoami")
}
