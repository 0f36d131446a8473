package main

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Runs before the Execute tests so no flag is marked as changed yet.
func TestLoadSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	configPath = writeFile(t, dir, "config.json", `{"max_jobs_per_run": 5, "user_agent": "file-agent", "concurrency": 3}`)
	defer func() { configPath = "" }()

	env := map[string]string{
		"JOBTRACKER_USER_AGENT": "env-agent",
		"JOBTRACKER_RUN_TIMEOUT": "5m",
	}
	cfg, err := loadSettings(rootCmd, func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxJobsPerRun)
	assert.Equal(t, "env-agent", cfg.UserAgent)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout.Std())
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "sources.json", cfg.SourcesFile)
}

func TestLoadSettings_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath = writeFile(t, dir, "config.json", `{"log_format": "xml"}`)
	defer func() { configPath = "" }()

	_, err := loadSettings(rootCmd, func(string) string { return "" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
}

func TestLoadSettings_BadEnv(t *testing.T) {
	_, err := loadSettings(rootCmd, func(k string) string {
		if k == "JOBTRACKER_MAX_JOBS_PER_RUN" {
			return "lots"
		}
		return ""
	})
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "json", false).Debug("hidden")
	newLogger(&buf, "json", false).Info("shown", "source", "RemoteOK")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "RemoteOK", entry["source"])

	buf.Reset()
	newLogger(&buf, "text", true).Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

const wwrDetail = `<html><head><title>Senior Backend Engineer at Acme Corp</title></head><body>
<h1 class="page-title">%s</h1>
<div class="company"><h2><a href="https://acme.example">Acme Corp</a></h2></div>
<div class="listing-container"><div class="listing-container-content">
<p>Proficient in Go. Experience with Kubernetes.</p></div></div>
</body></html>`

func newWWRServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories/remote-programming-jobs" {
			io.WriteString(w, `<ul></ul>`)
			return
		}
		io.WriteString(w, `<ul>
<li class="feature"><a href="/remote-jobs/101/senior-backend-engineer">a</a></li>
<li class="feature"><a href="/remote-jobs/102/staff-platform-engineer">b</a></li>
</ul>`)
	})
	mux.HandleFunc("/remote-jobs/101/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, wwrDetail, "Senior Backend Engineer")
	})
	mux.HandleFunc("/remote-jobs/102/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, wwrDetail, "Staff Platform Engineer")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeDryRunConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	sources := writeFile(t, dir, "sources.json", fmt.Sprintf(`{"sources": [
  {"name": "WeWorkRemotely", "base_url": %q, "scrape_interval": 3600, "rate_limit": 0},
  {"name": "AngelList", "base_url": "https://angel.co", "is_active": false}
]}`, baseURL))
	return writeFile(t, dir, "config.json", fmt.Sprintf(`{
  "sources_file": %q,
  "download_delay": "1ms",
  "fixed_delay": true,
  "ignore_robots": true,
  "disable_autothrottle": true
}`, sources))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScrapeCommand_DryRun(t *testing.T) {
	srv := newWWRServer(t)
	cfg := writeDryRunConfig(t, srv.URL)

	out, err := execute(t, "scrape", "--config", cfg, "--dry-run", "--source", "WeWorkRemotely", "--sync")
	require.NoError(t, err)

	assert.Contains(t, out, "WeWorkRemotely")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "Senior Backend Engineer")
	assert.Contains(t, out, "Staff Platform Engineer")
	assert.Contains(t, out, "Remote")
}

func TestSourcesListCommand_DryRun(t *testing.T) {
	cfg := writeDryRunConfig(t, "https://weworkremotely.com")

	out, err := execute(t, "sources", "list", "--config", cfg, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "AngelList")
	assert.Contains(t, out, "never")
}

func TestStatusCommand_DryRunJSON(t *testing.T) {
	cfg := writeDryRunConfig(t, "https://weworkremotely.com")

	out, err := execute(t, "status", "--config", cfg, "--dry-run", "--json")
	require.NoError(t, err)

	var status struct {
		Sources   []json.RawMessage `json:"sources"`
		TotalJobs int               `json:"total_jobs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Len(t, status.Sources, 2)
	assert.Equal(t, 0, status.TotalJobs)
}

func TestSourcesListCommand_DefaultSeedFile(t *testing.T) {
	// no sources_file: the default sources.json is found from the package directory
	cfg := writeFile(t, t.TempDir(), "config.json", `{"ignore_robots": true}`)

	out, err := execute(t, "sources", "list", "--config", cfg, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "RemoteOK")
	assert.Contains(t, out, "AngelList")
}
