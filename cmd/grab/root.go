package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/conn-castle/grab/internal/grab"
	"github.com/conn-castle/grab/internal/messages"
)

var runFunc = grab.Run

// cliSystem is the real process with the command's output writers.
type cliSystem struct {
	grab.RealSystem
	stdout io.Writer
	stderr io.Writer
}

func (s cliSystem) Stdout() io.Writer {
	return s.stdout
}

func (s cliSystem) Stderr() io.Writer {
	return s.stderr
}

// newRootCmd builds the root command. Every argument, flags included, belongs
// to Gradle, so cobra's own flag parsing is off. code receives Gradle's exit code.
func newRootCmd(stdout io.Writer, stderr io.Writer, code *int) *cobra.Command {
	return &cobra.Command{
		Use:                messages.RootUse,
		Short:              messages.RootShort,
		Long:               messages.RootLong,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode, err := runFunc(cmd.Context(), grab.Options{
				Args:    args,
				System:  cliSystem{stdout: stdout, stderr: stderr},
				Version: versionString(),
			})
			*code = exitCode
			return err
		},
	}
}
