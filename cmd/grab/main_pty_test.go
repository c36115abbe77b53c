//go:build !windows

package main

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/grab/internal/grab"
)

func TestRunMainColorsFailureOnTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = ptmx.Close()
		_ = tty.Close()
	})
	stubRun(t, func(context.Context, grab.Options) (int, error) {
		return grab.ExitFailure, errors.New("boom")
	})

	runMain([]string{"grab"}, tty, tty, func(int) {})

	line, err := bufio.NewReader(ptmx).ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "\x1b[31m"), "%q", line)
	assert.Contains(t, line, "FAILURE: boom")
}
