// Package pulse binds to the PulseAudio command-line tool (pactl) to list
// per-application audio streams, resolve output sinks, and perform routing
// side effects. All tool invocations are synchronous child-process calls;
// a failed invocation degrades to an empty result rather than an error.
package pulse

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// Binary names for the external tools.
const (
	pactlBinary = "pactl"
	wpctlBinary = "wpctl"
)

// HasPactl reports whether the pactl binary is available.
func HasPactl() bool {
	return probeTool(pactlBinary)
}

// HasWpctl reports whether the wpctl binary is available.
func HasWpctl() bool {
	return probeTool(wpctlBinary)
}

// probeTool runs "<tool> --version" and reports whether it succeeded.
func probeTool(name string) bool {
	if _, err := exec.LookPath(name); err != nil {
		return false
	}
	return exec.Command(name, "--version").Run() == nil
}

// runTool executes a tool and returns its stdout. Failures are logged and
// collapse to empty output so that callers present "no streams" instead of
// propagating invocation errors.
func runTool(name string, args ...string) string {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = util.ExtractLastError(string(exitErr.Stderr))
		}
		slog.Debug("tool invocation failed", "tool", name, "args", args, "error", err, "stderr", stderr)
		return ""
	}
	return string(out)
}

// runCommand executes a tool for its side effect and returns any error,
// with the last stderr line attached for context.
func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		if last := util.ExtractLastError(string(out)); last != "" {
			return fmt.Errorf("%w: %s", err, last)
		}
		return err
	}
	return nil
}
