package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/model/modeltest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func artifactsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, modeltest.WriteArtifacts(dir, modeltest.HybridParts()))
	t.Setenv("ANIMEREC_CACHE_BACKEND", "none")
	t.Setenv("ANIMEREC_LOG_LEVEL", "disabled")
	return dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "animerec v"+version)
}

func TestRecommendCommand(t *testing.T) {
	dir := artifactsDir(t)

	out, err := run(t, "recommend", "1", "--artifacts", dir, "--top-n", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, " 1. Delta", lines[0])
	assert.Equal(t, " 2. Echo", lines[1])
	assert.Equal(t, " 3. Charlie", lines[2])

	out, err = run(t, "recommend", "999", "--artifacts", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "User ID 999 not found or has no recommendations.")

	_, err = run(t, "recommend", "abc", "--artifacts", dir)
	assert.ErrorContains(t, err, `invalid user id "abc"`)
}

func TestSimilarCommand(t *testing.T) {
	dir := artifactsDir(t)

	out, err := run(t, "similar", "Delta", "--artifacts", dir, "--n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Echo")

	out, err = run(t, "similar", "1", "--user", "--artifacts", dir, "--n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "user 2")

	_, err = run(t, "similar", "No Such Anime", "--artifacts", dir)
	assert.True(t, core.IsNotFound(err))
}

func TestMissingArtifacts(t *testing.T) {
	t.Setenv("ANIMEREC_LOG_LEVEL", "disabled")
	_, err := run(t, "recommend", "1", "--artifacts", t.TempDir())
	require.Error(t, err)
	assert.True(t, core.IsConfig(err))
}
