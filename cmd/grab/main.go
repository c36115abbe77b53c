package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/conn-castle/grab/internal/grab"
	"github.com/conn-castle/grab/internal/messages"
	"github.com/conn-castle/grab/internal/terminal"
)

var executeFunc = execute

// Version, Commit, and BuildDate are overridden at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// execute runs the root command and returns the exit code grab should end with.
func execute(args []string, stdout io.Writer, stderr io.Writer) (int, error) {
	code := 0
	cmd := newRootCmd(stdout, stderr, &code)
	cmd.SetArgs(args[1:])
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if code == 0 {
			code = grab.ExitFailure
		}
		return code, err
	}
	return code, nil
}

// runMain executes the CLI and exits with Gradle's exit code, or 1 on failure.
func runMain(args []string, stdout io.Writer, stderr io.Writer, exit func(int)) {
	if len(args) == 0 {
		args = []string{"grab"}
	}
	code, err := executeFunc(args, stdout, stderr)
	if err != nil {
		printFailure(stderr, err)
	}
	if code != 0 {
		exit(code)
	}
}

// printFailure writes err with the failure prefix, in red when stderr is a terminal.
func printFailure(stderr io.Writer, err error) {
	c := color.New(color.FgRed)
	if terminal.IsTerminalWriter(stderr) && os.Getenv("NO_COLOR") == "" {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	_, _ = c.Fprintln(stderr, messages.FailurePrefix+err.Error())
}

// versionString formats Version with optional commit and build date metadata.
func versionString() string {
	meta := []string{}
	if Commit != "" && Commit != "unknown" {
		meta = append(meta, fmt.Sprintf(messages.VersionCommitFmt, Commit))
	}
	if BuildDate != "" && BuildDate != "unknown" {
		meta = append(meta, fmt.Sprintf(messages.VersionBuildFmt, BuildDate))
	}
	if len(meta) == 0 {
		return Version
	}
	return fmt.Sprintf(messages.VersionFullFmt, Version, strings.Join(meta, ", "))
}
