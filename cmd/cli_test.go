package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", strings.TrimSpace(stdout))
}

func TestObserveRequestCountsMessage(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"observe", "request",
		"--url", "https://claude.ai/api/organizations/org/chat_conversations/abc/completion",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "message counted")

	stdout, _, err = executeCLI(t, home, "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"message_count\": 1")
}

func TestObserveRequestIgnoresGet(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(),
		"observe", "request",
		"--url", "https://claude.ai/api/organizations/org/chat_conversations",
		"--method", "GET",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "not counted")
}

func TestObserveResponseRateLimited(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"observe", "response",
		"--url", "https://claude.ai/api/organizations/org/chat_conversations/abc/completion",
		"--status", "429",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "limited: reset in")

	stdout, _, err = executeCLI(t, home, "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"is_limited\": true")
	assert.Contains(t, stdout, "\"limit_type\": \"rate_limit\"")
}

func TestScanDetectsLimitText(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"scan", "You have reached the usage limit. Please try again in 2 hours.")
	require.NoError(t, err)
	assert.Contains(t, stdout, "limit detected: reset in")
}

func TestScanCleanText(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "scan", "hello, how are you today")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no limit message found")
}

func TestScanRejectsEmptyInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader("   "))
	root.SetArgs([]string{"scan"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text to scan")
}

func TestPlanLifecycle(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "plan")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Free (free")

	stdout, _, err = executeCLI(t, home, "plan", "set", "max")
	require.NoError(t, err)
	assert.Contains(t, stdout, "plan pinned to max")

	stdout, _, err = executeCLI(t, home, "plan")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Max (max, via override)")

	_, _, err = executeCLI(t, home, "plan", "set", "platinum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown plan")

	stdout, _, err = executeCLI(t, home, "plan", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "override cleared")
}

func TestPlanList(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "plan", "list")
	require.NoError(t, err)
	for _, id := range []string{"free", "pro", "team", "max", "enterprise"} {
		assert.Contains(t, stdout, id)
	}
	assert.Contains(t, stdout, "5h reset")
}

func TestAddAndReset(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "add", "5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "session total 5")

	_, _, err = executeCLI(t, home, "add", "zero")
	require.Error(t, err)

	stdout, _, err = executeCLI(t, home, "reset")
	require.NoError(t, err)
	assert.Contains(t, stdout, "session reset")

	// Daily stats survive a plain reset.
	stdout, _, err = executeCLI(t, home, "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"today_messages\": 5")

	stdout, _, err = executeCLI(t, home, "reset", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "all usage data cleared")

	stdout, _, err = executeCLI(t, home, "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"today_messages\": 0")
}

func TestExportPayload(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "add", "3")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "export")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "3.0.0", payload["version"])
	assert.Contains(t, payload, "plan")
	assert.Contains(t, payload, "currentStatus")
	assert.Contains(t, payload, "dailyStats")
}

func TestExportToFile(t *testing.T) {
	home := t.TempDir()
	outPath := filepath.Join(home, "backup.json")

	stdout, _, err := executeCLI(t, home, "export", "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "exported to")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestHistoryWindow(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "history", "--days", "3", "--json")
	require.NoError(t, err)

	var samples []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &samples))
	assert.Len(t, samples, 3)
}

func TestStatusTextOutput(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Claude Usage Monitor")
	assert.Contains(t, stdout, "Status: normal")
}

func TestRefreshWithoutTokenFails(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "refresh", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authoritative usage source")
}
