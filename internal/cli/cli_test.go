// ABOUTME: Tests for the opusrec command tree
// ABOUTME: Runs commands against temporary files, databases and a paced tone source
package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oply/opusrec/internal/tracks"
	"github.com/oply/opusrec/internal/version"
	"github.com/oply/opusrec/pkg/audio"
	"github.com/oply/opusrec/pkg/audio/encode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeWAV writes frames of silence to a new WAV file in dir
func writeWAV(t *testing.T, dir, name string, frames int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	w, err := encode.OpenWAV(path, 0)
	require.NoError(t, err)
	frame := make([]byte, audio.FrameBytes)
	for i := 0; i < frames; i++ {
		require.NoError(t, w.WriteFrame(frame))
	}
	require.NoError(t, w.Close())
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, version.Product+" "+version.Version), out)
}

func TestInfoCommandWAV(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "five.wav", 5)

	out, _, err := execute(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Sample rate: 16000 Hz")
	assert.Contains(t, out, "Channels:    1")
	assert.Contains(t, out, "Duration:    300ms")
}

func TestInfoCommandMissingFile(t *testing.T) {
	_, _, err := execute(t, "info", filepath.Join(t.TempDir(), "missing.opus"))
	assert.Error(t, err)
}

func TestInfoCommandRequiresFile(t *testing.T) {
	_, _, err := execute(t, "info")
	assert.Error(t, err)
}

func TestTracksCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tracks.db")
	logFile := filepath.Join(dir, "opusrec.log")

	out, _, err := execute(t, "tracks", "--db", db, "--log-file", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "No recordings yet")

	store, err := tracks.Open(db, nil)
	require.NoError(t, err)
	require.NoError(t, store.RegisterCompleted(writeWAV(t, dir, "first.wav", 10)))
	require.NoError(t, store.RegisterCompleted(writeWAV(t, dir, "second.wav", 20)))
	require.NoError(t, store.Close())

	out, _, err = execute(t, "tracks", "--db", db, "--log-file", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "first.wav")
	assert.Contains(t, out, "second.wav")
	assert.Contains(t, out, "DURATION")
	assert.Contains(t, out, "1.2s")
}

func TestTracksCommandShowsOne(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tracks.db")
	logFile := filepath.Join(dir, "opusrec.log")

	store, err := tracks.Open(db, nil)
	require.NoError(t, err)
	path := writeWAV(t, dir, "solo.wav", 5)
	require.NoError(t, store.RegisterCompleted(path))
	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, store.Close())

	out, _, err := execute(t, "tracks", list[0].ID, "--db", db, "--log-file", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "ID:       "+list[0].ID)
	assert.Contains(t, out, "Path:     "+path)
	assert.Contains(t, out, "Duration: 300ms")

	_, _, err = execute(t, "tracks", "no-such-id", "--db", db, "--log-file", logFile)
	assert.Error(t, err)
}

func TestRecordHeadlessTone(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tracks.db")
	out := filepath.Join(dir, "tone.wav")

	stdout, _, err := execute(t, "record", out,
		"--no-tui",
		"--source", "tone",
		"--codec", "wav",
		"--duration", "300ms",
		"--db", db,
		"--log-file", filepath.Join(dir, "opusrec.log"),
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved tone.wav")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(audio.FrameBytes))

	store, err := tracks.Open(db, nil)
	require.NoError(t, err)
	defer store.Close()
	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "tone.wav", list[0].Name)
}

func TestRecordGeneratedName(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, "record",
		"--no-tui",
		"--source", "tone",
		"--duration", "200ms",
		"--dir", dir,
		"--prefix", "Take",
		"--db", filepath.Join(dir, "tracks.db"),
		"--log-file", filepath.Join(dir, "opusrec.log"),
	)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "Take_*.opus"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, stdout, "Saved "+filepath.Base(matches[0]))
}

func TestRecordRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "record",
		"--no-tui",
		"--bitrate", "1",
		"--db", filepath.Join(dir, "tracks.db"),
		"--log-file", filepath.Join(dir, "opusrec.log"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record.bitrate")
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.n))
	}
}
