package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendar-mcp/internal/google"
)

// isolate runs the test in an empty directory with an empty HOME so no
// config file or token is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	t.Setenv("DEFAULT_TIMEZONE", "UTC")
	return dir
}

func TestApplyServeEnv(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_ADDR", ":9191")
	t.Setenv("MCP_HTTP_ADDR", ":8181")

	t.Run("env fills unset flags", func(t *testing.T) {
		cmd := newServeCmd()
		opts := serveOptions{EnableMetrics: true, MetricsAddr: ":9090", HTTPAddr: ":8080"}
		applyServeEnv(cmd, &opts)

		assert.False(t, opts.EnableMetrics)
		assert.Equal(t, ":9191", opts.MetricsAddr)
		assert.Equal(t, ":8181", opts.HTTPAddr)
	})

	t.Run("explicit flags win", func(t *testing.T) {
		cmd := newServeCmd()
		require.NoError(t, cmd.Flags().Set("metrics-addr", ":7070"))
		require.NoError(t, cmd.Flags().Set("enable-metrics", "true"))
		opts := serveOptions{EnableMetrics: true, MetricsAddr: ":7070", HTTPAddr: ":8080"}
		applyServeEnv(cmd, &opts)

		assert.True(t, opts.EnableMetrics)
		assert.Equal(t, ":7070", opts.MetricsAddr)
		assert.Equal(t, ":8181", opts.HTTPAddr)
	})
}

func TestApplyServeEnv_IgnoresInvalidBool(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "sometimes")
	opts := serveOptions{EnableMetrics: true}
	applyServeEnv(newServeCmd(), &opts)
	assert.True(t, opts.EnableMetrics)
}

func TestRunServe_UnsupportedTransport(t *testing.T) {
	err := runServe(context.Background(), serveOptions{Transport: "sse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type: sse")
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCmd(t *testing.T) {
	isolate(t)

	out, err := runCommand(t, "parse", "Do I have any meetings tomorrow?", "--now", "2025-08-13T10:30:00Z")
	require.NoError(t, err)

	var got struct {
		Intent       string         `json:"intent"`
		Params       map[string]any `json:"params"`
		ResolvedZone string         `json:"resolved_zone"`
		OriginalText string         `json:"original_text"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "specific_date", got.Intent)
	assert.Equal(t, "2025-08-14T00:00:00Z", got.Params["date"])
	assert.Equal(t, "UTC", got.ResolvedZone)
	assert.Equal(t, "Do I have any meetings tomorrow?", got.OriginalText)
}

func TestParseCmd_TimezoneFlag(t *testing.T) {
	isolate(t)

	out, err := runCommand(t, "parse", "what's on today", "--now", "2025-08-13T23:30:00Z", "--timezone", "Asia/Tokyo")
	require.NoError(t, err)
	assert.Contains(t, out, `"resolved_zone": "Asia/Tokyo"`)
	assert.Contains(t, out, `"time_zone": "Asia/Tokyo"`)
	assert.Contains(t, out, `"date": "2025-08-14T00:00:00+09:00"`)
}

func TestParseCmd_InvalidNow(t *testing.T) {
	isolate(t)

	_, err := runCommand(t, "parse", "today", "--now", "yesterday-ish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --now")
}

func TestParseCmd_ConfigFromEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query:\n  default_timezone: Europe/Berlin\n"), 0o600))
	t.Setenv("DEFAULT_TIMEZONE", "")
	t.Setenv("CALENDAR_MCP_CONFIG", path)

	out, err := runCommand(t, "parse", "anything", "--now", "2025-08-13T10:30:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, `"resolved_zone": "Europe/Berlin"`)
}

func TestVersionCmd(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "calendar-mcp version "+version+"\n", out)
}

func TestAuthCmd_MissingCredentials(t *testing.T) {
	isolate(t)

	_, err := runCommand(t, "auth", "--code", "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, google.ErrNoCredentials)
}

func TestReadAuthCode(t *testing.T) {
	code, err := readAuthCode(strings.NewReader("  4/abc-def  \n"))
	require.NoError(t, err)
	assert.Equal(t, "4/abc-def", code)

	_, err = readAuthCode(strings.NewReader(""))
	assert.Error(t, err)

	_, err = readAuthCode(strings.NewReader("   \n"))
	assert.Error(t, err)
}

func TestAuthCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    bool
	}{
		{name: "code", query: "?code=4%2Fxyz&state=state-token", wantStatus: http.StatusOK, wantCode: "4/xyz"},
		{name: "denied", query: "?error=access_denied", wantStatus: http.StatusBadRequest, wantErr: true},
		{name: "missing code", query: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := make(chan string, 1)
			errs := make(chan error, 1)
			rec := httptest.NewRecorder()
			authCallbackHandler(codes, errs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			select {
			case code := <-codes:
				assert.Equal(t, tt.wantCode, code)
			default:
				assert.Empty(t, tt.wantCode, "no code delivered")
			}
			select {
			case err := <-errs:
				assert.True(t, tt.wantErr, "unexpected error %v", err)
			default:
				assert.False(t, tt.wantErr, "no error delivered")
			}
		})
	}
}

func TestToolsMarkdown(t *testing.T) {
	md, err := toolsMarkdown(context.Background())
	require.NoError(t, err)

	for _, want := range []string{
		"# MCP Tools Reference",
		"## Query Tools",
		"## Scheduling Tools",
		"## Calendar Tools",
		"### query_calendar",
		"### parse_calendar_query",
		"### get_upcoming_events",
		"### check_availability",
		"### list_calendars",
		"- `query` (string, required):",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "## Other")
}

func TestToolCategory(t *testing.T) {
	assert.Equal(t, "Query Tools", toolCategory("query_calendar"))
	assert.Equal(t, "Scheduling Tools", toolCategory("check_availability"))
	assert.Equal(t, "Calendar Tools", toolCategory("list_calendars"))
	assert.Equal(t, "Other", toolCategory("gmail_list_threads"))
}
