package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqla2lint/internal/cli/output"
	"github.com/leapstack-labs/sqla2lint/internal/cli/testutil"
)

func runCacheCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCacheCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCacheCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProject(t, dir)

	out, err := runCacheCmd(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	for range 2 {
		_, err := runCheckCmd(t, "--format", "json", dir)
		require.ErrorIs(t, err, ErrIssuesFound)
	}

	t.Run("runs json", func(t *testing.T) {
		out, err := runCacheCmd(t, "runs", "--format", "json")
		require.NoError(t, err)

		var runs []output.RunInfo
		require.NoError(t, json.Unmarshal([]byte(out), &runs))
		require.Len(t, runs, 2)
		assert.Equal(t, "completed", runs[0].Status)
		assert.Equal(t, 3, runs[0].Files)
		assert.Equal(t, 3, runs[0].Issues)
		assert.NotEmpty(t, runs[0].CompletedAt)
	})

	t.Run("runs limit", func(t *testing.T) {
		out, err := runCacheCmd(t, "runs", "-n", "1", "--format", "json")
		require.NoError(t, err)

		var runs []output.RunInfo
		require.NoError(t, json.Unmarshal([]byte(out), &runs))
		assert.Len(t, runs, 1)
	})

	t.Run("runs table", func(t *testing.T) {
		out, err := runCacheCmd(t, "runs", "--format", "markdown")
		require.NoError(t, err)
		testutil.AssertContains(t, out, "# Recent Runs")
		testutil.AssertContains(t, out, "completed")
	})

	t.Run("clear", func(t *testing.T) {
		out, err := runCacheCmd(t, "clear")
		require.NoError(t, err)
		testutil.AssertContains(t, out, "Removed 3 cached results")

		out, err = runCheckCmd(t, "--format", "json", dir)
		require.ErrorIs(t, err, ErrIssuesFound)
		var result output.CheckOutput
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Zero(t, result.Summary.FilesCached)
	})
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand("test")

	assert.Equal(t, "serve [path...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"addr", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}
