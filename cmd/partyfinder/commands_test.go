package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/partyfinder/core/buildinfo"
	"github.com/m3rciful/partyfinder/internal/export"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func sqliteConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := "telegram:\n  token: \"1:x\"\ndatabase:\n  driver: sqlite3\n  path: \"" +
		filepath.ToSlash(filepath.Join(dir, "pf.db")) + "\"\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, buildinfo.String(), strings.TrimSpace(out))
}

func TestExportEmptyBase(t *testing.T) {
	out, err := execute(t, "export", "--config", sqliteConfig(t))
	require.NoError(t, err)
	assert.Equal(t, export.EmptyText, strings.TrimSpace(out))
}

func TestExportMissingConfig(t *testing.T) {
	_, err := execute(t, "export", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(configEnvVar, "")
	assert.Equal(t, defaultConfigPath, resolveConfigPath(""))
	t.Setenv(configEnvVar, "env.yaml")
	assert.Equal(t, "env.yaml", resolveConfigPath(" "))
	assert.Equal(t, "flag.yaml", resolveConfigPath("flag.yaml"))
}
