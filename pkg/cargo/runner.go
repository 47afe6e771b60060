// Package cargo wraps the cargo executable.
//
// [Runner] executes cargo subcommands. [Metadata] turns the output of
// `cargo metadata` into a [depgraph.Graph] and [ParseInfo] extracts version
// and repository details from `cargo info`.
package cargo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvCargo names the environment variable cargo sets for subcommands.
const EnvCargo = "CARGO"

// Runner runs `cargo <subcommand> <args>`.
type Runner struct {
	Path   string // Executable, defaults to $CARGO or "cargo"
	Dir    string // Working directory, empty for the current one
	Logger *log.Logger
}

// NewRunner returns a Runner for path. An empty path falls back to $CARGO
// and then to "cargo" on PATH.
func NewRunner(path string, logger *log.Logger) *Runner {
	if path == "" {
		path = os.Getenv(EnvCargo)
	}
	if path == "" {
		path = "cargo"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Path: path, Logger: logger}
}

// Run executes the subcommand and returns its stdout. A non-zero exit
// status is an error carrying stderr.
func (r *Runner) Run(ctx context.Context, subcommand string, args ...string) (string, error) {
	argv := append([]string{subcommand}, args...)
	cmd := exec.CommandContext(ctx, r.Path, argv...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger().Debug("running cargo", "cmd", r.Path+" "+strings.Join(argv, " "))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("cargo %s: %w: %s", subcommand, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
