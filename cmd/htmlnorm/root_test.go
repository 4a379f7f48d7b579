package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><nav>Menu</nav><p>Read <a href="/docs">the docs</a> before you start, they are short.</p>` +
	`<p>Some <b>bold</b> claim.</p><table><tr><td>cell</td></tr></table></body></html>`

// execute runs a fresh root command and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"formatting", "tables", "images", "links", "dedup", "base-url", "config", "env-file", "verbose", "stats", "workers"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %q", name)
	}
	assert.Equal(t, "true", cmd.Flags().Lookup("tables").DefValue)
	assert.Equal(t, "false", cmd.Flags().Lookup("formatting").DefValue)
}

func TestRootCmdStdin(t *testing.T) {
	out, err := execute(t, page)
	require.NoError(t, err)

	assert.NotContains(t, out, "Menu")
	assert.Contains(t, out, `<ref href="/docs" target="/docs">the docs</ref>`)
	assert.Contains(t, out, "<p>Some bold claim.</p>")
	assert.Contains(t, out, "<td>cell</td>")
}

func TestRootCmdFlagsOverride(t *testing.T) {
	out, err := execute(t, page, "--formatting", "--tables=false", "--base-url", "https://example.com/", "--stats")
	require.NoError(t, err)

	assert.Contains(t, out, `<hi rend="#b">bold</hi>`)
	assert.Contains(t, out, `target="https://example.com/docs"`)
	assert.NotContains(t, out, "cell")
}

func TestRootCmdFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.html")
	second := filepath.Join(dir, "b.html")
	require.NoError(t, os.WriteFile(first, []byte("<p>First document text.</p>"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("<p>Second document text.</p>"), 0o600))

	out, err := execute(t, "", first, second)
	require.NoError(t, err)

	i, j := strings.Index(out, "First document"), strings.Index(out, "Second document")
	require.True(t, i >= 0 && j >= 0, out)
	assert.Less(t, i, j, "documents are printed in argument order")

	_, err = execute(t, "", filepath.Join(dir, "missing.html"))
	assert.Error(t, err)
}

func TestRootCmdEnvironment(t *testing.T) {
	t.Setenv("HTMLNORM_LINKS", "false")

	out, err := execute(t, page)
	require.NoError(t, err)
	assert.NotContains(t, out, "<ref")
	assert.Contains(t, out, "Read the docs before you start")

	out, err = execute(t, page, "--links=true")
	require.NoError(t, err)
	assert.Contains(t, out, "<ref", "explicit flags win over the environment")
}

func TestRootCmdInvalidEnvironment(t *testing.T) {
	t.Setenv("HTMLNORM_WORKERS", "many")

	_, err := execute(t, page)
	assert.ErrorContains(t, err, "HTMLNORM_WORKERS")
}

func TestRootCmdEnvFile(t *testing.T) {
	t.Cleanup(func() { os.Unsetenv("HTMLNORM_FORMATTING") })
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("HTMLNORM_FORMATTING=true\n"), 0o600))

	out, err := execute(t, page, "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, `<hi rend="#b">bold</hi>`)
}

func TestRootCmdConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "htmlnorm.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("tables: false\nlinks: false\n"), 0o600))

	out, err := execute(t, page, "--config", cfgPath)
	require.NoError(t, err)
	assert.NotContains(t, out, "cell")
	assert.NotContains(t, out, "<ref")

	out, err = execute(t, page, "-c", cfgPath, "--tables")
	require.NoError(t, err)
	assert.Contains(t, out, "cell", "flags win over the config file")

	_, err = execute(t, page, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRootCmdInvalidBaseURL(t *testing.T) {
	_, err := execute(t, page, "--base-url", "relative/path")
	assert.Error(t, err)
}
