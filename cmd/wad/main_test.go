package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
)

const januaryChat = "05/01/2026 09:15 - Ana: bom dia\n" +
	"06/01/2026 10:00 - Bruno: vejam https://example.com/a\n" +
	"12/01/2026 08:00 - Carla: semana nova\n"

// runWad executes the root command with an empty config and returns what it
// printed and the process exit code main would use.
func runWad(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WAD_CONFIG", "")
	cfg := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), apperr.ExitCode(err)
}

func writeChat(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestSegmentMissingArchive(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "conversa.zip")
	stdout, _, code := runWad(t, "segment", "-i", missing, "--start", "05/01/2026", "--end", "11/01/2026")
	assert.Equal(t, apperr.ExitNotFound, code)
	assert.Empty(t, stdout)
}

func TestSegmentCorruptArchive(t *testing.T) {
	bogus := writeChat(t, "conversa.zip", "PK\x03\x04 truncated")
	_, _, code := runWad(t, "segment", "-i", bogus, "--start", "05/01/2026", "--end", "11/01/2026")
	assert.Equal(t, apperr.ExitNotFound, code)
}

func TestSegmentEmptyWindow(t *testing.T) {
	chat := writeChat(t, "chat.txt", januaryChat)

	stdout, stderr, code := runWad(t, "segment", "-i", chat, "--start", "01/02/2026", "--end", "07/02/2026")
	assert.Equal(t, apperr.ExitOK, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "warning: no messages between 01/02/2026 and 07/02/2026")

	stdout, stderr, code = runWad(t, "segment", "-i", chat, "--start", "11/01/2026", "--end", "05/01/2026")
	assert.Equal(t, apperr.ExitOK, code, "an inverted window is empty, not an error")
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "warning: no messages")
}

func TestSegmentWindow(t *testing.T) {
	chat := writeChat(t, "chat.txt", januaryChat)

	stdout, stderr, code := runWad(t, "segment", "-i", chat, "--start", "5/1/2026", "--end", "11/01/2026")
	assert.Equal(t, apperr.ExitOK, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "05/01/2026 09:15 - Ana: bom dia\n06/01/2026 10:00 - Bruno: vejam https://example.com/a\n", stdout)

	out := filepath.Join(t.TempDir(), "semana", "out.txt")
	stdout, _, code = runWad(t, "segment", "-i", chat, "--start", "12/01/2026", "--end", "12/01/2026", "-o", out)
	assert.Equal(t, apperr.ExitOK, code)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "12/01/2026 08:00 - Carla: semana nova\n", string(data))
}

func TestSegmentArgumentErrors(t *testing.T) {
	chat := writeChat(t, "chat.txt", januaryChat)

	cases := []struct {
		name string
		args []string
	}{
		{"bad date", []string{"-i", chat, "--start", "2026-01-05", "--end", "11/01/2026"}},
		{"missing start", []string{"-i", chat, "--end", "11/01/2026"}},
		{"bad format", []string{"-i", chat, "--start", "05/01/2026", "--end", "11/01/2026", "--format", "xml"}},
		{"unknown flag", []string{"-i", chat, "--start", "05/01/2026", "--end", "11/01/2026", "--nope"}},
		{"no input", []string{"--start", "05/01/2026", "--end", "11/01/2026"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, code := runWad(t, append([]string{"segment"}, tc.args...)...)
			assert.Equal(t, apperr.ExitArgument, code)
			assert.Empty(t, stdout)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	chat := writeChat(t, "chat.txt", januaryChat)
	_, _, code := runWad(t, "--config", filepath.Join(t.TempDir(), "nope.toml"),
		"segment", "-i", chat, "--start", "05/01/2026", "--end", "11/01/2026")
	assert.Equal(t, apperr.ExitNotFound, code)
}
