package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqla2lint/internal/engine"
	"github.com/leapstack-labs/sqla2lint/internal/state"
	"github.com/leapstack-labs/sqla2lint/internal/testutil"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	_ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules" // register rules
)

func setupServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Engine == nil {
		cfg.Engine = engine.New(engine.Config{Logger: testutil.NewTestLogger(t)})
	}
	cfg.Logger = testutil.NewTestLogger(t)
	cfg.Version = "test"
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postCheck(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/check", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf strings.Builder
	_, err = bufio.NewReader(resp.Body).WriteTo(&buf)
	require.NoError(t, err)
	return resp, []byte(buf.String())
}

func TestHealth(t *testing.T) {
	ts := setupServer(t, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestRules(t *testing.T) {
	eng := engine.New(engine.Config{Lint: lint.NewConfig().Disable("SA202")})
	ts := setupServer(t, Config{Engine: eng})

	tests := []struct {
		name    string
		query   string
		ids     []string
		enabled []bool
	}{
		{"all", "", []string{"SA201", "SA202", "SA203"}, []bool{true, false, true}},
		{"group", "?group=legacy", []string{"SA202", "SA203"}, []bool{false, true}},
		{"unknown group", "?group=nope", []string{}, []bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/v1/rules" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var entries []RuleEntry
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))

			ids := []string{}
			enabled := []bool{}
			for _, e := range entries {
				ids = append(ids, e.ID)
				enabled = append(enabled, e.Enabled)
				assert.NotEmpty(t, e.URL)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.enabled, enabled)
		})
	}
}

func TestRule(t *testing.T) {
	ts := setupServer(t, Config{})

	resp, err := http.Get(ts.URL + "/v1/rules/sa203")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entry RuleEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entry))
	assert.Equal(t, "SA203", entry.ID)
	assert.Equal(t, "legacy", entry.Group)
	assert.True(t, entry.Enabled)

	missing, err := http.Get(ts.URL + "/v1/rules/SA999")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCheck(t *testing.T) {
	ts := setupServer(t, Config{})

	source, err := json.Marshal(CheckRequest{Path: "app/models.py", Source: testutil.ModelsSource})
	require.NoError(t, err)

	resp, body := postCheck(t, ts, string(source))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var report FileReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "app/models.py", report.Path)
	assert.Empty(t, report.Error)

	type found struct {
		Code   string
		Line   int
		Column int
	}
	got := []found{}
	for _, d := range report.Diagnostics {
		got = append(got, found{d.Code, d.Line, d.Column})
		assert.Equal(t, "warning", d.Severity)
	}
	assert.Equal(t, []found{
		{"SA202", 6, 12},
		{"SA201", 7, 5},
		{"SA203", 8, 51},
	}, got)
	assert.Equal(t, "Use of legacy relationship `backref` consider using `back_populates` instead", report.Diagnostics[2].Message)
}

func TestCheck_Errors(t *testing.T) {
	ts := setupServer(t, Config{})

	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, body []byte)
	}{
		{
			name:   "syntax error",
			body:   `{"source": "class (:\n"}`,
			status: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var report FileReport
				require.NoError(t, json.Unmarshal(body, &report))
				assert.Equal(t, "<stdin>", report.Path)
				assert.Empty(t, report.Diagnostics)
				assert.Contains(t, report.Error, "parse error at line 1")
			},
		},
		{
			name:   "clean source",
			body:   `{"path": "clean.py", "source": ""}`,
			status: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"path": "clean.py", "diagnostics": []}`, string(body))
			},
		},
		{
			name:   "invalid json",
			body:   `{"source":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			body:   `{"src": "x = 1"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postCheck(t, ts, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestRuns(t *testing.T) {
	store := state.NewStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })

	eng := engine.New(engine.Config{Store: store})
	dir := testutil.WriteProject(t, map[string]string{"models.py": testutil.ModelsSource})
	report, err := eng.Run(context.Background(), []string{dir})
	require.NoError(t, err)

	ts := setupServer(t, Config{Engine: eng, Store: store})

	resp, err := http.Get(ts.URL + "/v1/runs?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var runs []Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, 3, runs[0].Issues)

	bad, err := http.Get(ts.URL + "/v1/runs?limit=zero")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	noStore := setupServer(t, Config{Engine: eng})
	disabled, err := http.Get(noStore.URL + "/v1/runs")
	require.NoError(t, err)
	defer disabled.Body.Close()
	assert.Equal(t, http.StatusNotFound, disabled.StatusCode)
}

func TestEvents(t *testing.T) {
	srv := New(Config{Engine: engine.New(engine.Config{}), Logger: testutil.NewTestLogger(t)})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return srv.Notifier().Len() == 1 }, time.Second, 10*time.Millisecond)

	result := srv.engine.CheckSource(ctx, "models.py", []byte(testutil.ModelsSource))
	srv.Notifier().Broadcast(&engine.Report{Files: []engine.FileResult{result}})

	var name, data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	assert.Equal(t, "check", name)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, 3, event.Issues)
	require.Len(t, event.Files, 1)
	assert.Equal(t, "models.py", event.Files[0].Path)
}

func TestServeListener_Shutdown(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{"models.py": testutil.CleanSource})
	srv := New(Config{
		Engine:     engine.New(engine.Config{}),
		WatchPaths: []string{dir},
		Logger:     testutil.NewTestLogger(t),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ch := srv.Notifier().Subscribe()
	defer srv.Notifier().Unsubscribe(ch)

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.py"), []byte(testutil.ModelsSource), 0o600))

	select {
	case report := <-ch:
		assert.Equal(t, 3, report.Issues())
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not broadcast")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNotifier(t *testing.T) {
	n := NewNotifier()
	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	assert.Equal(t, 2, n.Len())

	report := &engine.Report{}
	n.Broadcast(report)
	// A full channel drops the second broadcast instead of blocking.
	n.Broadcast(&engine.Report{})

	assert.Same(t, report, <-ch1)
	assert.Same(t, report, <-ch2)

	n.Unsubscribe(ch1)
	n.Unsubscribe(ch2)
	assert.Equal(t, 0, n.Len())
	_, open := <-ch1
	assert.False(t, open)
}
