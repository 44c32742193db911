package aof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAOFFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "appendonly.aof")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAllReplaysCompleteCommands(t *testing.T) {
	path := writeAOFFile(t, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n*2\r\n$3\r\nDEL\r\n$3\r\nfoo\r\n")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	result, err := r.LoadAll()
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	require.Len(t, result.Commands, 2)
	assert.Equal(t, []string{"SET", "foo", "bar"}, result.Commands[0])
	assert.Equal(t, []string{"DEL", "foo"}, result.Commands[1])
}

func TestLoadAllTreatsMissingFileAsEmpty(t *testing.T) {
	r, err := NewReader(filepath.Join(t.TempDir(), "does-not-exist.aof"))
	require.NoError(t, err)
	assert.Nil(t, r, "a missing AOF file is not an error")

	result, err := r.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, result.Commands)
	assert.False(t, result.Truncated)
}

func TestLoadAllTreatsTruncatedTailAsPartialSuccess(t *testing.T) {
	// A complete SET followed by a DEL record cut off mid-write: the second
	// argument's length header never arrived, as if the process crashed
	// while the writer was still flushing the last command.
	path := writeAOFFile(t, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n*2\r\n$3\r\nDEL\r\n")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	result, err := r.LoadAll()
	require.NoError(t, err, "a truncated tail is reported, not surfaced as an error")
	assert.True(t, result.Truncated)
	require.Len(t, result.Commands, 1, "the complete command before the damaged tail is still replayed")
	assert.Equal(t, []string{"SET", "foo", "bar"}, result.Commands[0])
}

func TestLoadAllTreatsTruncatedHeaderAsPartialSuccess(t *testing.T) {
	// Cut off entirely within the bulk-string length header of the second
	// command's first argument.
	path := writeAOFFile(t, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n*2\r\n$3")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	result, err := r.LoadAll()
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	require.Len(t, result.Commands, 1)
}
