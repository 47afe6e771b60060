// Package cli implements the cratediff command-line interface.
//
// The root command compares crate versions and prints what changed,
// directly and through nested dependencies. It is built on cobra, layers
// its configuration with viper (see [Config]) and logs with
// charmbracelet/log.
//
// # Commands
//
// Besides the root diff command:
//   - cache: show or clear the persistent lookup cache
//   - serve: answer diff requests over HTTP, with Prometheus metrics
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// turns off the progress spinner. Loggers are passed through
// context.Context so that helpers without access to [CLI] log to the same
// writer.
//
// # Example
//
//	import "github.com/matzehuels/cratediff/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w that filters messages below
// level. Timestamps are formatted as "HH:MM:SS.cc" (e.g. "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress remembers when a diff run started and logs its completion with
// the elapsed time. It is meant for one goroutine; concurrent calls to done
// race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing now. Call done once the run finishes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level followed by the elapsed time, rounded to the
// millisecond.
// Example output: "Compared 12 crates in workspace mode (3 nested changes) (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// loggerKey is the context key for the command logger. The unexported
// struct type keeps other packages from reading or overwriting it.
type loggerKey struct{}

// withLogger returns a copy of ctx carrying l. Retrieve it with
// loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger stored by withLogger. Without one it
// returns log.Default(), so callers always get a usable logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
