package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DIALECT", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "test.db"))
	t.Setenv("ML_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestInterpretCommand(t *testing.T) {
	assert.Equal(t, "CONTINUE\nEnter Farmer ID:\n", run(t, "interpret", "1"))
	assert.Equal(t, "TERMINAL\nLogin failed: invalid farmer ID or password\n", run(t, "interpret", "1*F100*secret"))
}

func TestMigrateCommand(t *testing.T) {
	assert.Empty(t, run(t, "migrate"))
}
