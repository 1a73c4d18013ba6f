package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_WritesReportToStdout(t *testing.T) {
	input := writeInput(t, "type, client, tx, amount\ndeposit, 1, 1, 1.0\ndeposit, 2, 2, 2.0\nwithdrawal, 2, 3, 5.0\n")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{input}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "client,available,held,total,locked\n1,1.0,0.0,1.0,false\n2,2.0,0.0,2.0,false\n", stdout.String())
	assert.Contains(t, stderr.String(), "action not applied")
}

func TestRun_Journal(t *testing.T) {
	input := writeInput(t, "type,client,tx,amount\ndeposit,1,1,1.0\ndispute,1,1,\n")
	journal := filepath.Join(t.TempDir(), "journal.log")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-journal", journal, "-log-level", "error", input}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stderr.String())

	data, err := os.ReadFile(journal)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "dispute", entry["kind"])
	assert.EqualValues(t, 2, entry["seq"])
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, &stdout, &stderr)
	assert.ErrorContains(t, err, "missing input file")

	err = run(context.Background(), []string{filepath.Join(t.TempDir(), "nope.csv")}, &stdout, &stderr)
	assert.ErrorContains(t, err, "open input")

	err = run(context.Background(), []string{"-log-level", "loud", writeInput(t, "type,client,tx\n")}, &stdout, &stderr)
	assert.ErrorContains(t, err, "init logger")
}

func TestRun_Modes(t *testing.T) {
	input := writeInput(t, "type,client,tx,amount\ndeposit,1,2,2.0\nwithdrawal,1,3,1.0\ndispute,1,2,\nchargeback,1,2,\n")
	want := "client,available,held,total,locked\n1,-1.0,0.0,-1.0,true\n"

	for _, mode := range []string{"direct", "mutex", "sequencer"} {
		t.Run(mode, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), []string{"-mode", mode, input}, &stdout, &stderr)
			require.NoError(t, err)
			assert.Equal(t, want, stdout.String())
			assert.Contains(t, stderr.String(), `"mode":"`+mode+`"`)
		})
	}
}

func TestRun_UnknownMode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-mode", "lmax", writeInput(t, "type,client,tx,amount\n")}, &stdout, &stderr)
	assert.ErrorContains(t, err, "unknown engine mode")
}

func TestRun_EmptyInput(t *testing.T) {
	for _, content := range []string{"", "type,client,tx,amount\n"} {
		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{writeInput(t, content)}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Empty(t, stdout.String())
	}
}
