package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/rclctl/internal/version"
)

// fakeRCL serves canned JSON per "METHOD /path" and records every request.
type fakeRCL struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
	bodies map[string][]string
	keys   []string
}

func newFakeRCL(t *testing.T, routes map[string]string) (*fakeRCL, *httptest.Server) {
	t.Helper()

	fake := &fakeRCL{t: t, routes: routes, hits: map[string]int{}, bodies: map[string][]string{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return fake, server
}

func (f *fakeRCL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.hits[route]++
	f.bodies[route] = append(f.bodies[route], string(body))
	f.keys = append(f.keys, r.Header.Get("X-API-Key"))
	payload, ok := f.routes[route]
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"detail":"Not Found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprint(w, payload)
}

func (f *fakeRCL) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeRCL) requestBodies(route string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies[route]...)
}

func (f *fakeRCL) apiKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

const (
	restraintsPayload = `{"restraints":{"HALLUCINATION_RESISTANCE":0.4,"CREATIVITY":0.6},"hard_limits":{"HALLUCINATION_RESISTANCE":0.7,"CREATIVITY":null}}`
	auditPayload      = `{"changes":[{"dimension":"CREATIVITY","old_value":0.5,"new_value":0.6,"hash":"abc123","authorized":false,"timestamp":"2026-10-01T10:00:00Z"}],"chain_valid":true,"unauthorized_attempts":[]}`
)

func restraintRoutes() map[string]string {
	return map[string]string{
		"GET /rcl2/restraints":   restraintsPayload,
		"GET /rcl2/audit-trail":  auditPayload,
		"POST /rcl2/restraints":  `{"message":"updated"}`,
		"GET /rcl2/debt":         `{"outstanding_debt":0,"debt_items":[]}`,
		"POST /rcl2/debt/repay":  `{"success":true}`,
		"POST /rcl2/eigenmemory": `{}`,
	}
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("PASSWORD_STORE_DIR", filepath.Join(home, "no-password-store"))

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// useBackend points the CLI at server with a fixed API key so no secret
// store is consulted.
func useBackend(t *testing.T, server *httptest.Server) {
	t.Helper()
	t.Setenv("RCLCTL_BASE_URL", server.URL)
	t.Setenv("RCLCTL_API_KEY", "test-key")
}

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "limit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"limit\"")
}

func TestRestraintsShowJSONOutput(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	useBackend(t, server)

	stdout, _, err := executeCLI(t, t.TempDir(), "restraints", "show", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"HALLUCINATION_RESISTANCE\": 0.4")
	assert.Contains(t, stdout, "\"ChainValid\": true")
	assert.Equal(t, 1, fake.count("GET /rcl2/restraints"))
	assert.Equal(t, 1, fake.count("GET /rcl2/audit-trail"))
	assert.Equal(t, []string{"test-key", "test-key"}, fake.apiKeys())
}

func TestRestraintsShowRendersMatrix(t *testing.T) {
	_, server := newFakeRCL(t, restraintRoutes())
	useBackend(t, server)

	stdout, _, err := executeCLI(t, t.TempDir(), "restraints", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Hallucination Resistance")
	assert.Contains(t, stdout, "chain valid")
}

func TestRestraintsSetAboveHardLimitWithoutKeySendsNothing(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	useBackend(t, server)

	_, _, err := executeCLI(t, t.TempDir(), "restraints", "set", "HALLUCINATION_RESISTANCE=0.75")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization required")
	assert.Contains(t, err.Error(), "--authorization-key")
	assert.Zero(t, fake.count("POST /rcl2/restraints"))
}

func TestRestraintsSetWithKeySendsAuthorizedUpdates(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	useBackend(t, server)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"restraints", "set",
		"hallucination_resistance=0.75",
		"CREATIVITY=0.3",
		"--authorization-key", "k3y",
		"--json",
	)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))

	bodies := fake.requestBodies("POST /rcl2/restraints")
	require.Len(t, bodies, 2)
	assert.JSONEq(t, `{"dimension":"CREATIVITY","value":0.3,"authorized":true,"authorization_key":"k3y"}`, bodies[0])
	assert.JSONEq(t, `{"dimension":"HALLUCINATION_RESISTANCE","value":0.75,"authorized":true,"authorization_key":"k3y"}`, bodies[1])
	assert.Equal(t, 2, fake.count("GET /rcl2/restraints"), "one load and one refresh")
}

func TestRestraintsSetUnchangedValueIsNoop(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	useBackend(t, server)

	stdout, _, err := executeCLI(t, t.TempDir(), "restraints", "set", "CREATIVITY=0.6005")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No pending changes.")
	assert.Zero(t, fake.count("POST /rcl2/restraints"))
}

func TestRestraintsSetRejectsMalformedArgument(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "restraints", "set", "CREATIVITY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected DIMENSION=VALUE")
}

func TestDebtRepayAllWithNothingOutstanding(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	useBackend(t, server)

	stdout, _, err := executeCLI(t, t.TempDir(), "debt", "repay-all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No cognitive debt to repay.")
	assert.Zero(t, fake.count("POST /rcl2/debt/repay"))
}

func debtRoutes() map[string]string {
	routes := restraintRoutes()
	routes["GET /rcl2/debt"] = `{"outstanding_debt":1.5,"debt_items":[
		{"decision_id":"dec-1","reason":"skipped review","priority":"low","logged_at":"2026-10-01T10:00:00Z"},
		{"decision_id":"dec-2","reason":"unverified claim","priority":"high","logged_at":"2026-10-02T10:00:00Z"}]}`
	return routes
}

func TestDebtRepayAllConfirmedByFlag(t *testing.T) {
	fake, server := newFakeRCL(t, debtRoutes())
	useBackend(t, server)

	stdout, _, err := executeCLI(t, t.TempDir(), "debt", "repay-all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Repaid 2, failed 0.")

	bodies := fake.requestBodies("POST /rcl2/debt/repay")
	require.Len(t, bodies, 2)
	assert.JSONEq(t, `{"decision_id":"dec-2"}`, bodies[0], "high priority first")
	assert.JSONEq(t, `{"decision_id":"dec-1"}`, bodies[1])
}

func TestDebtRepayAllDeclinedAtPrompt(t *testing.T) {
	fake, server := newFakeRCL(t, debtRoutes())
	useBackend(t, server)

	stdout, stderr, err := executeCLIWithInput(t, t.TempDir(), "n\n", "debt", "repay-all")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Repay all 2 debt item(s)?")
	assert.Contains(t, stdout, "Repay cancelled.")
	assert.Zero(t, fake.count("POST /rcl2/debt/repay"))
}

func TestMemoryQueryRejectsBlankQueryBeforeRequest(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	useBackend(t, server)

	_, _, err := executeCLI(t, t.TempDir(), "memory", "query", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
	assert.Empty(t, fake.apiKeys(), "no request may be sent")
}

func TestIQLQueryRejectsBlankQueryBeforeRequest(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	useBackend(t, server)

	_, _, err := executeCLI(t, t.TempDir(), "iql", "query", " ")
	require.Error(t, err)
	assert.Empty(t, fake.apiKeys())
}

func TestCouncilDeliberateSendsContextFile(t *testing.T) {
	fake, server := newFakeRCL(t, map[string]string{
		"POST /rcl2/council/deliberate": `{"decision":"approve","unanimous":true,"perspectives":[],"conflicts":[]}`,
	})
	useBackend(t, server)

	home := t.TempDir()
	contextPath := filepath.Join(home, "context.yaml")
	require.NoError(t, os.WriteFile(contextPath, []byte("source: cli\nretries: 2\ntags: [a, b]\n"), 0o600))

	stdout, _, err := executeCLI(t, home,
		"council", "deliberate",
		"--action-type", "deploy",
		"--description", "ship the new planner",
		"--stakes", "high",
		"--context-file", contextPath,
		"--json",
	)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))

	bodies := fake.requestBodies("POST /rcl2/council/deliberate")
	require.Len(t, bodies, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &sent))
	assert.Equal(t, "deploy", sent["action_type"])
	assert.Equal(t, "high", sent["stakes"])
	assert.NotEmpty(t, sent["action_id"])
	assert.Equal(t, map[string]any{"source": "cli", "retries": float64(2), "tags": []any{"a", "b"}}, sent["context"])
}

func TestApplicationErrorSurfacesServerMessage(t *testing.T) {
	_, server := newFakeRCL(t, map[string]string{
		"POST /hobby/start": `{"success":false,"error":"hobby loop already running"}`,
	})
	useBackend(t, server)

	_, _, err := executeCLI(t, t.TempDir(), "hobby", "start")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hobby loop already running")
}

func TestTransportErrorNamesTheEndpoint(t *testing.T) {
	_, server := newFakeRCL(t, map[string]string{})
	useBackend(t, server)

	_, _, err := executeCLI(t, t.TempDir(), "security", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/ui-api/security/status")
	assert.Contains(t, err.Error(), "404")
}

func TestProfileLifecycle(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "profile", "set", "local", "--url", "http://127.0.0.1:8000")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "profile", "set", "prod", "--url", "https://rcl.example.test", "--token-ref", "rclctl/prod/api_key")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "profile", "list", "--json")
	require.NoError(t, err)
	var profiles []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &profiles))
	require.Len(t, profiles, 2)
	assert.Equal(t, true, profiles[0]["Active"])
	assert.Equal(t, false, profiles[1]["Active"])

	_, _, err = executeCLI(t, home, "profile", "use", "prod")
	require.NoError(t, err)
	stdout, _, err = executeCLI(t, home, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rcl.example.test")

	_, _, err = executeCLI(t, home, "profile", "remove", "prod")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "profile", "use", "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile not found")
}

func TestProfileSetRequiresURL(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "profile", "set", "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"url\" not set")
}

func TestActiveProfileSelectsBackend(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	t.Setenv("RCLCTL_API_KEY", "test-key")
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "profile", "set", "local", "--url", server.URL, "--use")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "debt", "show", "--json")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.count("GET /rcl2/debt"))
}

func TestBaseURLFlagOverridesProfile(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	t.Setenv("RCLCTL_API_KEY", "test-key")
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "profile", "set", "dead", "--url", "http://127.0.0.1:1", "--use")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "debt", "show", "--json", "--base-url", server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.count("GET /rcl2/debt"))
}

func TestTokenSetStoresKeyThatIsSentAsHeader(t *testing.T) {
	fake, server := newFakeRCL(t, restraintRoutes())
	t.Setenv("RCLCTL_BASE_URL", server.URL)
	home := t.TempDir()

	stdout, _, err := executeCLIWithInput(t, home, "from-stdin\n", "token", "set")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rclctl/default/api_key")

	_, _, err = executeCLI(t, home, "debt", "show", "--json")
	require.NoError(t, err)
	assert.Equal(t, []string{"from-stdin"}, fake.apiKeys())

	_, _, err = executeCLI(t, home, "token", "remove")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, ".config", "rclctl", "secrets", "rclctl", "default", "api_key"))
	assert.True(t, os.IsNotExist(err))
}

func TestMissingTokenForConfiguredRefIsAnError(t *testing.T) {
	_, server := newFakeRCL(t, restraintRoutes())
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "profile", "set", "prod", "--url", server.URL, "--token-ref", "rclctl/prod/api_key", "--use")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "debt", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rclctl token set")
}

func TestWatchPrintsEventsUntilCount(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rcl2/ws" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"debt_repaid","decision_id":"dec-1"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"restraint_update"}`))
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(server.Close)
	useBackend(t, server)

	stdout, _, err := executeCLI(t, t.TempDir(), "watch", "--count", "2", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	var first watchLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "debt_repaid", first.Type)
	assert.JSONEq(t, `{"type":"debt_repaid","decision_id":"dec-1"}`, string(first.Payload))
	assert.Contains(t, lines[1], `"type":"restraint_update"`)
}
