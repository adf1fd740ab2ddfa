package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

const (
	EnvWorkpaper = "RECON_WORKPAPER"
	EnvCurrency  = "RECON_CURRENCY"
	EnvVerbose   = "RECON_VERBOSE"
)

// RunExtension attempts to find and execute an external recon-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// Global flags are passed to the extension as environment variables, so that
// it works on the same workpaper.
func RunExtension(subcommand string, args []string) (bool, int) {
	lp, err := exec.LookPath("recon-" + subcommand)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		EnvWorkpaper+"="+*workpaperFile,
		EnvCurrency+"="+*defaultCurrency,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", lp, err)
		return true, 1
	}
	return true, 0
}
