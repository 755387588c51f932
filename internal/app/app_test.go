package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfmoon-studio/studiodesk/internal/config"
	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/portfolio"
	"github.com/halfmoon-studio/studiodesk/internal/store"
	"github.com/halfmoon-studio/studiodesk/internal/watcher"
)

// testConfig writes a config file pointing at a fresh database.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "db_path: " + filepath.Join(dir, "studiodesk.db") + "\noutput:\n  color: false\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

// resetFlags restores every flag in the tree to its default so that
// package-level flag variables do not leak between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the command tree with args against cfgPath.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", cfgPath, "--no-color"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	require.NoError(t, err, "studiodesk %v", args)
	return out
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"project", "req", "milestone", "post", "health", "lead", "estimate", "audit", "watch", "mcp"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, have[name], "missing subcommand %s", name)
	}
}

func TestDashboard_Empty(t *testing.T) {
	cfg := testConfig(t)
	out := mustRun(t, cfg)
	assert.Contains(t, out, "No projects yet")
	assert.Contains(t, out, "Open leads:")
}

func TestProjectLifecycle(t *testing.T) {
	cfg := testConfig(t)

	out := mustRun(t, cfg, "project", "add", "bakery", "--client", "Crumbs Ltd",
		"--status", "development", "--start", "2019-12-01", "--deadline", "2020-01-01")
	assert.Contains(t, out, "Added project bakery")
	assert.Contains(t, out, "Portal token:")

	mustRun(t, cfg, "project", "add", "florist")

	out = mustRun(t, cfg, "project", "list")
	assert.Contains(t, out, "bakery")
	assert.Contains(t, out, "Crumbs Ltd")
	assert.Contains(t, out, "florist")
	assert.Contains(t, out, "PLANNING")

	out = mustRun(t, cfg, "project", "list", "--status", "development")
	assert.Contains(t, out, "bakery")
	assert.NotContains(t, out, "florist")

	out = mustRun(t, cfg, "project", "update", "florist", "--status", "design", "--blocked", "1")
	assert.Contains(t, out, "Updated florist")

	out = mustRun(t, cfg, "project", "show", "bakery")
	assert.Contains(t, out, "OVERDUE")
	assert.Contains(t, out, "Deadline passed")
	assert.Contains(t, out, "(passed)")

	mustRun(t, cfg, "project", "rm", "florist")
	_, err := run(t, cfg, "project", "show", "florist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no project named "florist"`)
}

func TestProjectAdd_Validation(t *testing.T) {
	cfg := testConfig(t)

	_, err := run(t, cfg, "project", "add", "x", "--status", "shipping")
	assert.Error(t, err)

	_, err = run(t, cfg, "project", "add", "x", "--deadline", "next week")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--deadline")

	_, err = run(t, cfg, "project", "add", "x", "--start", "2026-05-01", "--deadline", "2026-04-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before start")

	_, err = run(t, cfg, "project", "add", "x", "--blocked", "-1")
	assert.Error(t, err)

	mustRun(t, cfg, "project", "add", "x")
	_, err = run(t, cfg, "project", "update", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestProjectImport(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`projects:
  - name: bakery
    client: Crumbs Ltd
    status: development
    deadline: 2099-01-01
    requirements:
      - title: Home page
        done: true
      - title: Menu page
    milestones:
      - title: Design sign-off
        due: 2098-06-01
    updates:
      - Kickoff call done
`), 0o644))

	out := mustRun(t, cfg, "project", "import", path)
	assert.Contains(t, out, "Created bakery")

	out = mustRun(t, cfg, "project", "import", path)
	assert.Contains(t, out, "Skipped bakery")

	out = mustRun(t, cfg, "req", "list", "bakery")
	assert.Contains(t, out, "Home page")
	assert.Contains(t, out, "Menu page")
	assert.Contains(t, out, "50%")

	out = mustRun(t, cfg, "milestone", "list", "bakery")
	assert.Contains(t, out, "Design sign-off")
	assert.Contains(t, out, "2098-06-01")
}

func TestWorkCommands(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "project", "add", "bakery", "--deadline", "2099-01-01")

	out := mustRun(t, cfg, "req", "add", "bakery", "Contact", "form")
	assert.Contains(t, out, "Added requirement #1 to bakery")

	out = mustRun(t, cfg, "req", "done", "1")
	assert.Contains(t, out, "Completed requirement #1")
	out = mustRun(t, cfg, "req", "done", "1", "--undo")
	assert.Contains(t, out, "Reopened requirement #1")

	_, err := run(t, cfg, "req", "done", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no requirement #99")

	_, err = run(t, cfg, "req", "done", "abc")
	assert.Error(t, err)

	_, err = run(t, cfg, "milestone", "add", "bakery", "Launch")
	assert.Error(t, err, "--due is required")

	out = mustRun(t, cfg, "milestone", "add", "bakery", "Launch", "--due", "2098-12-01")
	assert.Contains(t, out, "Added milestone #1 to bakery (due 2098-12-01)")
	out = mustRun(t, cfg, "milestone", "done", "1")
	assert.Contains(t, out, "Completed milestone #1")

	out = mustRun(t, cfg, "post", "bakery", "Homepage", "draft", "is", "up")
	assert.Contains(t, out, "Posted update to bakery")

	out = mustRun(t, cfg, "project", "show", "bakery")
	assert.Contains(t, out, "Contact form")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "Homepage draft is up")
}

func TestHealth_PortfolioJSON(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "project", "add", "calm", "--status", "development", "--deadline", "2099-01-01")
	mustRun(t, cfg, "project", "add", "late", "--status", "development", "--deadline", "2020-01-01")

	out := mustRun(t, cfg, "health", "--json")
	var reports []portfolio.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "late", reports[0].Project.Name)
	assert.Equal(t, health.Overdue, reports[0].Result.Health)
	assert.Equal(t, []string{"Deadline passed"}, reports[0].Result.Reasons)
	assert.Equal(t, "calm", reports[1].Project.Name)
	assert.Equal(t, health.OnTrack, reports[1].Result.Health)
	assert.NotContains(t, out, "start_date")
	assert.NotContains(t, out, "0001-01-01")

	out = mustRun(t, cfg, "health")
	assert.Contains(t, out, "1 on track")
	assert.Contains(t, out, "1 overdue")

	out = mustRun(t, cfg, "health", "calm", "--at", "2099-06-01")
	assert.Contains(t, out, "OVERDUE")
}

func TestHealth_StatusWithProjectName(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "project", "add", "calm", "--status", "development", "--deadline", "2099-01-01")

	_, err := run(t, cfg, "health", "calm", "--status", "design")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined with a project name")

	out := mustRun(t, cfg, "health", "--status", "design")
	assert.NotContains(t, out, "calm")
}

func TestHealth_RecordAndHistory(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "project", "add", "late", "--status", "development", "--deadline", "2020-01-01")

	_, err := run(t, cfg, "health", "--history", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a project name")

	out := mustRun(t, cfg, "health", "late", "--history", "5")
	assert.Contains(t, out, "No snapshots for late")

	out = mustRun(t, cfg, "health", "--record")
	assert.Contains(t, out, "Recorded 1 snapshot(s)")

	out = mustRun(t, cfg, "health", "late", "--history", "5", "--json")
	var snaps []store.HealthSnapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, health.Overdue, snaps[0].Health)
	assert.Equal(t, 10, snaps[0].Score)
}

func TestLeadCommands(t *testing.T) {
	cfg := testConfig(t)

	_, err := run(t, cfg, "lead", "add", "--name", "Dana")
	assert.Error(t, err, "--email is required")

	out := mustRun(t, cfg, "lead", "add", "--name", "Dana Reyes", "--email", "dana@example.com", "--budget", "5000")
	assert.Contains(t, out, "Recorded lead #1 from Dana Reyes (contact)")

	out = mustRun(t, cfg, "lead", "list")
	assert.Contains(t, out, "dana@example.com")
	assert.Contains(t, out, "$5,000")
	assert.Contains(t, out, "NEW")

	out = mustRun(t, cfg, "lead", "status", "1", "won")
	assert.Contains(t, out, "Lead #1 is now WON")

	out = mustRun(t, cfg, "lead", "list")
	assert.Contains(t, out, "No leads.")
	out = mustRun(t, cfg, "lead", "list", "--all")
	assert.Contains(t, out, "Dana Reyes")

	_, err = run(t, cfg, "lead", "status", "1", "maybe")
	assert.Error(t, err)

	mustRun(t, cfg, "lead", "rm", "1")
	_, err = run(t, cfg, "lead", "rm", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no lead #1")
}

func TestEstimate(t *testing.T) {
	cfg := testConfig(t)

	out := mustRun(t, cfg, "estimate", "--type", "brochure", "--pages", "8", "--features", "cms,seo")
	assert.Contains(t, out, "$5,750")
	assert.Contains(t, out, "Quote range: $4,900 to $6,600, about 3 week(s)")

	_, err := run(t, cfg, "estimate", "--type", "spaceship")
	assert.Error(t, err)

	_, err = run(t, cfg, "estimate", "--type", "landing", "--save-lead")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--save-lead needs --name and --email")

	out = mustRun(t, cfg, "estimate", "--type", "landing", "--save-lead", "--name", "Sam", "--email", "sam@example.com")
	assert.Contains(t, out, "Saved as a lead for Sam")

	out = mustRun(t, cfg, "lead", "list", "--json")
	var leads []store.Lead
	require.NoError(t, json.Unmarshal([]byte(out), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, store.SourceEstimate, leads[0].Source)
	assert.Equal(t, 1500.0, leads[0].Budget)
}

func TestAudit(t *testing.T) {
	cfg := testConfig(t)

	out := mustRun(t, cfg, "audit", "shop.example.com", "--email", "owner@example.com")
	assert.Contains(t, out, "from shop.example.com (audit)")

	out = mustRun(t, cfg, "lead", "list", "--json")
	var leads []store.Lead
	require.NoError(t, json.Unmarshal([]byte(out), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "https://shop.example.com", leads[0].Website)

	_, err := run(t, cfg, "audit", "ftp://example.com", "--email", "a@example.com")
	assert.Error(t, err)
}

func TestNormalizeSiteURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "example.com", want: "https://example.com"},
		{in: " http://example.com/about ", want: "http://example.com/about"},
		{in: "localhost", wantErr: true},
		{in: "ftp://files.example.com", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			u, err := normalizeSiteURL(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, u.String())
		})
	}
}

func TestParseInterval(t *testing.T) {
	d, err := parseInterval("5m")
	require.NoError(t, err)
	assert.Equal(t, "5m0s", d.String())

	_, err = parseInterval("10s")
	assert.Error(t, err)
	_, err = parseInterval("soon")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("lead", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("lead", "0")
	assert.Error(t, err)
	_, err = parseID("lead", "x")
	assert.Error(t, err)
}

func TestWatch_RejectsShortInterval(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "watch", "--interval", "5s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 30s")
}

func TestWatch_StopWithoutDaemon(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testConfig(t)
	_, err := run(t, cfg, "watch", "--stop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no watch daemon running")
}

func TestAcquirePID(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.MkdirAll(config.ConfigDir(), 0o755))

	release, err := acquirePID()
	require.NoError(t, err)
	pid, err := readPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	_, err = acquirePID()
	require.Error(t, err, "this process is alive, so the PID file is held")
	assert.Contains(t, err.Error(), "already running")

	release()
	_, err = os.Stat(pidFilePath())
	assert.True(t, os.IsNotExist(err))
}

func TestPrintAlert(t *testing.T) {
	output.SetNoColor(true)
	defer output.SetNoColor(false)

	var buf bytes.Buffer
	printAlert(&buf, watcher.Alert{
		Level:   watcher.LevelCritical,
		Title:   "Overdue: bakery",
		Message: "AT_RISK -> OVERDUE (score 4 -> 10): Deadline passed",
		Time:    time.Now(),
	})
	out := buf.String()
	assert.Contains(t, out, "● Overdue: bakery")
	assert.Contains(t, out, "AT_RISK -> OVERDUE")
	assert.Equal(t, " ", alertIcon("unknown"))
}
