package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"logodepot/internal/config"
)

// The environment-priority tests mutate process state and therefore do
// not run in parallel.

func newTestManager(t *testing.T) (*config.Manager, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	m, err := config.NewManager(path)
	require.NoError(t, err, "NewManager error")
	t.Cleanup(func() { _ = m.Close() })

	return m, path
}

func TestResolveUnconfigured(t *testing.T) {
	m, _ := newTestManager(t)

	_, ok := m.Resolve()
	require.False(t, ok, "fresh manager should be unconfigured")
}

func TestSaveActivatesAndPersists(t *testing.T) {
	m, path := newTestManager(t)

	creds := config.Credentials{CloudName: "demo", APIKey: "key", APISecret: "secret"}
	require.NoError(t, m.Save(creds), "Save error")

	got, ok := m.Resolve()
	require.True(t, ok, "saved credentials should resolve")
	require.Equal(t, creds, got, "credentials round-trip")

	// A fresh manager reads the same file back.
	reopened, err := config.NewManager(path)
	require.NoError(t, err, "reopening manager")
	defer reopened.Close()

	got, ok = reopened.Resolve()
	require.True(t, ok, "persisted credentials should resolve")
	require.Equal(t, creds, got, "persisted credentials")
}

func TestEnvironmentOverridesFile(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Save(config.Credentials{CloudName: "file", APIKey: "file", APISecret: "file"}), "Save error")

	t.Setenv(config.EnvCloudName, "env-cloud")
	t.Setenv(config.EnvAPIKey, "env-key")
	t.Setenv(config.EnvAPISecret, "env-secret")

	got, ok := m.Resolve()
	require.True(t, ok, "env credentials should resolve")
	require.Equal(t, "env-cloud", got.CloudName, "environment wins over file")
}

func TestIncompleteEnvironmentFallsBackToFile(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Save(config.Credentials{CloudName: "file", APIKey: "file-key", APISecret: "file-secret"}), "Save error")

	// Only one of three variables set: the file still wins.
	t.Setenv(config.EnvCloudName, "env-cloud")

	got, ok := m.Resolve()
	require.True(t, ok, "file credentials should resolve")
	require.Equal(t, "file", got.CloudName, "incomplete environment is ignored")
}

func TestCorruptFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600), "writing corrupt file")

	m, err := config.NewManager(path)
	require.NoError(t, err, "NewManager should tolerate corrupt file")
	defer m.Close()

	_, ok := m.Resolve()
	require.False(t, ok, "corrupt file should leave manager unconfigured")
}
