package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
)

func TestExitCode(t *testing.T) {
	report := &contracts.ValidationReport{
		CriticalFailures: []contracts.Defect{contracts.NewCritical("", "File count mismatch: expected 131, found 130")},
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"critical", &contracts.CriticalFailureError{Report: report}, ExitCritical},
		{"wrapped critical", fmt.Errorf("run: %w", &contracts.CriticalFailureError{Report: report}), ExitCritical},
		{"aborted", fmt.Errorf("%w: %w", contracts.ErrValidationAborted, errors.New("read footer")), ExitAborted},
		{"config", errors.New("load config: bad ENV"), ExitAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"validate", "rules", "schedule", "serve", "history"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

// captureStdout runs fn and returns what it printed
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()

	fn()
	require.NoError(t, w.Close())
	return <-done
}

func TestValidate_IgnoresUnreachableHistory(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@127.0.0.1:1/x")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_PORT", "1")
	t.Setenv("LOG_LEVEL", "error")

	input := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(input, "year=2013", "month=02"), 0o755))

	t.Cleanup(func() {
		validateInput = ""
		rootCmd.SetArgs(nil)
	})
	rootCmd.SetArgs([]string{"validate", "--input", input})

	var err error
	out := captureStdout(t, func() { err = Execute() })

	assert.Equal(t, ExitCritical, ExitCode(err), "err: %v", err)
	assert.Contains(t, out, "File count mismatch: expected 131, found 0")
}
