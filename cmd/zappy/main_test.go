package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aristath/zappy/internal/persistence"
)

// isolate points HOME at a temp dir and blanks variables ApplyEnv reads, so
// the developer's own config and secrets do not leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, name := range []string{
		"GEMINI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "PERPLEXITY_API_KEY",
		"SERPAPI_API_KEY", "ZAPPY_HISTORY_DSN",
		"WORDPRESS_URL", "WORDPRESS_USERNAME", "WORDPRESS_APP_PASSWORD",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir string, cfg map[string]any) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedHistory(t *testing.T, dbPath string, recs ...persistence.BlogRecord) []string {
	t.Helper()
	store, err := persistence.NewSQLiteStore(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ids := make([]string, 0, len(recs))
	for i := range recs {
		if err := store.Append(context.Background(), &recs[i]); err != nil {
			t.Fatalf("append: %v", err)
		}
		ids = append(ids, recs[i].ID)
	}
	return ids
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"run", "batch", "history", "publish"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, name := range []string{"config", "log-level", "log-format", "metrics-addr"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s missing", name)
		}
	}

	run, _, _ := root.Find([]string{"run"})
	if f := run.Flags().Lookup("tui"); f == nil || f.DefValue != "false" {
		t.Errorf("run --tui flag = %+v", f)
	}
}

func TestReadTopics(t *testing.T) {
	got, err := readTopics(strings.NewReader("sleep apnea\n\nmigraine relief\n"), "-")
	if err != nil {
		t.Fatalf("readTopics(stdin): %v", err)
	}
	want := []string{"sleep apnea", "", "migraine relief"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("topics = %q, want %q", got, want)
	}

	path := filepath.Join(t.TempDir(), "topics.txt")
	if err := os.WriteFile(path, []byte("a\nb"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = readTopics(nil, path)
	if err != nil {
		t.Fatalf("readTopics(file): %v", err)
	}
	if len(got) != 2 || got[1] != "b" {
		t.Errorf("topics = %q", got)
	}

	if _, err := readTopics(nil, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHistoryCommands(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "history.db")
	cfgPath := writeConfig(t, dir, map[string]any{
		"history": map[string]any{"driver": "sqlite", "dsn": dbPath},
	})

	out, err := execute(t, "", "--config", cfgPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "No saved blogs.") {
		t.Errorf("empty list output = %q", out)
	}

	ids := seedHistory(t, dbPath, persistence.BlogRecord{
		Keyword: "sleep apnea", Title: "Sleep Apnea Explained", Content: "# Sleep Apnea Explained\n\nBody", Tokens: 90,
	})

	out, err = execute(t, "", "--config", cfgPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, ids[0]) || !strings.Contains(out, "Sleep Apnea Explained") {
		t.Errorf("list output = %q", out)
	}

	out, err = execute(t, "", "--config", cfgPath, "history", "show", ids[0])
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(out, "Body") {
		t.Errorf("show output = %q", out)
	}

	if _, err := execute(t, "", "--config", cfgPath, "history", "delete", ids[0]); err != nil {
		t.Fatalf("history delete: %v", err)
	}
	_, err = execute(t, "", "--config", cfgPath, "history", "show", ids[0])
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("show after delete: got %v, want ErrNotFound", err)
	}
}

func TestPublishCommand(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "history.db")

	var (
		mu   sync.Mutex
		body map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/posts" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		json.NewDecoder(r.Body).Decode(&body)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 7}`))
	}))
	defer srv.Close()

	cfgPath := writeConfig(t, dir, map[string]any{
		"history": map[string]any{"driver": "sqlite", "dsn": dbPath},
		"publish": map[string]any{
			"wordpress": map[string]any{"base_url": srv.URL, "username": "editor", "app_password": "secret"},
		},
	})
	ids := seedHistory(t, dbPath, persistence.BlogRecord{Keyword: "migraine", Title: "Migraine Relief", Content: "text"})

	out, err := execute(t, "", "--config", cfgPath, "publish", ids[0], "--target", "wordpress")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(out, `Published "Migraine Relief" to wordpress`) {
		t.Errorf("publish output = %q", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if body["title"] != "Migraine Relief" || body["status"] != "draft" {
		t.Errorf("posted body = %v", body)
	}

	if _, err := execute(t, "", "--config", cfgPath, "publish", ids[0], "--target", "myspace"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestRunWithoutProviders(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeConfig(t, dir, map[string]any{
		"history": map[string]any{"driver": "sqlite", "dsn": filepath.Join(dir, "history.db")},
		"media":   map[string]any{"storage": map[string]any{"backend": "local", "dir": filepath.Join(dir, "media")}},
	})

	_, err := execute(t, "", "--config", cfgPath, "--log-level", "error", "run", "sleep", "apnea")
	if err == nil || !strings.Contains(err.Error(), "run failed") {
		t.Fatalf("run error = %v, want run failed", err)
	}

	if _, err := execute(t, "", "--config", cfgPath, "run", "   "); err == nil {
		t.Error("expected error for blank topic")
	}
}

func TestBatchFromStdin(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeConfig(t, dir, map[string]any{
		"history": map[string]any{"driver": "sqlite", "dsn": filepath.Join(dir, "history.db")},
		"media":   map[string]any{"storage": map[string]any{"backend": "local", "dir": filepath.Join(dir, "media")}},
		"batch":   map[string]any{"pause_seconds": 0},
	})

	out, err := execute(t, "one\n\ntwo\n", "--config", cfgPath, "--log-level", "error", "batch", "-")
	if err == nil || !strings.Contains(err.Error(), "2 of 2 topics failed") {
		t.Fatalf("batch error = %v", err)
	}
	if !strings.Contains(out, "0 succeeded, 2 failed, 1 skipped") {
		t.Errorf("batch output = %q", out)
	}
}
