package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"serve", "density", "summary", "regions", "diagnose"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "outlet-density", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestDensityCommand_Flags(t *testing.T) {
	for _, name := range []string{"state", "district", "region", "format", "out"} {
		assert.NotNil(t, densityCmd.Flags().Lookup(name), "density should have --%s flag", name)
	}
	assert.Equal(t, "All", densityCmd.Flags().Lookup("region").DefValue)
	assert.Equal(t, "table", densityCmd.Flags().Lookup("format").DefValue)
}

func TestSummaryCommand_Flags(t *testing.T) {
	flag := summaryCmd.Flags().Lookup("top")
	require.NotNil(t, flag, "summary command should have --top flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestDiagnoseCommand_Flags(t *testing.T) {
	flag := diagnoseCmd.Flags().Lookup("strict")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadSettings(t *testing.T) {
	chdirTemp(t)
	t.Setenv("OUTLETS_DATA_OUTLETS_PATH", "/srv/outlets.csv")
	t.Cleanup(func() { cfg = nil })

	require.NoError(t, loadSettings(rootCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "/srv/outlets.csv", cfg.Data.OutletsPath)
}

func TestLoadSettings_InvalidFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("data: [unclosed"), 0o644))
	cfg = nil

	err := loadSettings(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outlet-density: load settings")
	assert.Nil(t, cfg)
}

func TestLoadSettings_BadLogLevel(t *testing.T) {
	chdirTemp(t)
	t.Setenv("OUTLETS_LOG_LEVEL", "loud")
	cfg = nil

	err := loadSettings(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outlet-density: start json logger")
	assert.Nil(t, cfg)
}
