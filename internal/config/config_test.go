package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("site:\n  title: My Web Site\n"))
	require.NoError(t, err)

	require.Equal(t, "My Web Site", cfg.Site["title"])
	require.Equal(t, ".", cfg.Build.Source)
	require.Equal(t, "liquid", cfg.Build.Engine)
	require.Equal(t, "fail-fast", cfg.Build.FailPolicy)
	require.Equal(t, 10, cfg.Build.MaxLayoutDepth)
	require.GreaterOrEqual(t, cfg.Build.Workers, 1)
	require.Equal(t, 15*time.Minute, cfg.Daemon.IntervalDuration())
	require.Equal(t, 300*time.Millisecond, cfg.Daemon.DebounceDuration())
	require.Empty(t, cfg.Metrics.Path)
	require.Nil(t, cfg.SourceGit)
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParse_FullDocument(t *testing.T) {
	cfg, err := Parse([]byte(`
build:
  source: site
  engine: go-template
  strict_front_matter: true
  default_layout: default
  workers: 3
  fail_policy: collect
  exclude: ["drafts", "*.tmp"]
source_git:
  url: https://example.com/site.git
  branch: main
output:
  copy_to: /srv/www
metrics:
  listen_addr: ":9090"
history:
  path: history.db
notify:
  nats_url: nats://localhost:4222
daemon:
  interval: 5m
  watch: true
`))
	require.NoError(t, err)
	require.Equal(t, "site", cfg.Build.Source)
	require.True(t, cfg.Build.StrictFrontMatter)
	require.Equal(t, 3, cfg.Build.Workers)
	require.Equal(t, []string{"drafts", "*.tmp"}, cfg.Build.Exclude)
	require.Equal(t, "main", cfg.SourceGit.Branch)
	require.Equal(t, "/srv/www", cfg.Output.CopyTo)
	require.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
	require.Equal(t, DefaultNotifySubject, cfg.Notify.Subject)
	require.Equal(t, 5*time.Minute, cfg.Daemon.IntervalDuration())
	require.True(t, cfg.Daemon.Watch)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SITEBUILDER_TEST_TOKEN", "s3cret")
	cfg, err := Parse([]byte("source_git:\n  url: https://example.com/x.git\n  token: ${SITEBUILDER_TEST_TOKEN}\n"))
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.SourceGit.Token)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("build:\n  sauce: .\n"))
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err))
}

func TestParse_ValidationCollectsEveryField(t *testing.T) {
	_, err := Parse([]byte(`
build:
  engine: mustache
  fail_policy: sometimes
  exclude: ["[unclosed"]
source_git:
  branch: main
daemon:
  interval: soon
`))
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryValidation, ferrors.GetCategory(err))
	for _, field := range []string{"build.engine", "build.fail_policy", "build.exclude[0]", "source_git.url", "daemon.interval"} {
		require.Contains(t, err.Error(), field)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, ferrors.CategoryConfig, classified.Category())
}

func TestLoad_ResolvesSourceRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeConfig(t, dir, "build:\n  source: website\n"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "website"), cfg.Build.Source)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	const key = "SITEBUILDER_TEST_SITE_TITLE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=From Env\n"), 0o600))
	cfg, err := Load(writeConfig(t, dir, "site:\n  title: ${"+key+"}\n"))
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.Site["title"])
}

func TestInit_WritesLoadableExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Web Site", cfg.Site["title"])
	require.Equal(t, 4, cfg.Build.Workers)

	err = Init(path, false)
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err))
	require.NoError(t, Init(path, true))
}

func TestParseLogLevel(t *testing.T) {
	l, err := ParseLogLevel("")
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, l.SlogLevel())

	l, err = ParseLogLevel("WARNING")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, l.SlogLevel())

	_, err = ParseLogLevel("loud")
	require.Error(t, err)

	f, err := ParseLogFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, LogFormatJSON, f)
}

func TestParse_GitSourceRetries(t *testing.T) {
	cfg, err := Parse([]byte("source_git:\n  url: https://example.com/x.git\n  retries: 3\n"))
	require.NoError(t, err)
	require.Equal(t, 3, cfg.SourceGit.Retries)
	require.Equal(t, "linear", cfg.SourceGit.RetryBackoff)
	require.Equal(t, time.Second, cfg.SourceGit.RetryDelayDuration())

	_, err = Parse([]byte("source_git:\n  url: https://example.com/x.git\n  retries: -1\n  retry_backoff: random\n  retry_delay: never\n"))
	require.Error(t, err)
	for _, field := range []string{"source_git.retries", "source_git.retry_backoff", "source_git.retry_delay"} {
		require.Contains(t, err.Error(), field)
	}
}

func TestValidate_CopyToOverlap(t *testing.T) {
	src := t.TempDir()
	cases := map[string]string{
		"same as source":   src,
		"parent of source": filepath.Dir(src),
		"inside output":    filepath.Join(src, "_site", "pub"),
		"inside source":    filepath.Join(src, "public"),
	}
	for name, dst := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Build.Source = src
			cfg.Output.CopyTo = dst
			err := cfg.Validate()
			require.Error(t, err)
			require.Equal(t, ferrors.CategoryValidation, ferrors.GetCategory(err))
			require.Contains(t, err.Error(), "output.copy_to")
		})
	}

	cfg := Default()
	cfg.Build.Source = filepath.Join(src, "site")
	cfg.Output.CopyTo = filepath.Join(src, "public")
	require.NoError(t, cfg.Validate())

	cfg = Default()
	ws := t.TempDir()
	cfg.SourceGit = &GitSourceConfig{URL: "https://example.com/site.git", Workspace: ws}
	applyDefaults(cfg)
	cfg.Output.CopyTo = filepath.Join(ws, "out")
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "source_git.workspace")
}
