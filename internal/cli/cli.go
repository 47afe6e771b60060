package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratediff/pkg/buildinfo"
	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/pipeline"
	"github.com/matzehuels/cratediff/pkg/render"
)

// appName is used for config and cache directories.
const appName = "cratediff"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives reports; logs and progress go to the logger's writer.
	Out io.Writer
	// Progress enables the spinner while a diff runs.
	Progress bool
}

// New creates a CLI logging to w. The spinner is enabled when stderr is a
// terminal.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Out:      os.Stdout,
		Progress: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// SetLogLevel updates the logger's level. Debug logging disables the
// spinner so the two do not interleave.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		c.Progress = false
	}
}

// globalFlags are shared by the root command and its subcommands.
type globalFlags struct {
	configFile string
	noCache    bool
}

type diffFlags struct {
	showAll bool
	group   bool
	links   bool
	format  string
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var g globalFlags
	var f diffFlags

	root := &cobra.Command{
		Use:   "cratediff [flags] [crate[@[from]-[to]]...]",
		Short: "Show what changed between two versions of a Rust crate",
		Long: `cratediff compares crate versions and links to the source changes between them.

Without arguments every direct dependency of the workspace is compared with
its latest release. Crates may be named with optional versions:

  serde              locked version -> latest
  serde@1.0.226      locked version -> 1.0.226
  serde@1.0.223-     1.0.223 -> latest
  serde@1.0.223-1.0.226`,
		Example: `  cratediff
  cratediff -a serde tokio@1.47.0
  cratediff -f json --links serde@1.0.223-1.0.226`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiff(cmd, args, g, f)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "config file (default ./cratediff.yaml, then $XDG_CONFIG_HOME/cratediff/)")
	pf.StringP("manifest-path", "m", pipeline.DefaultManifestPath, "path to Cargo.toml or its directory")
	pf.StringP("cargo-path", "c", "", "cargo executable (default $CARGO, then cargo)")
	pf.String("registry", registryCargo, "registry backend: cargo or crates.io")
	pf.String("metadata", metadataCargo, "metadata backend: cargo or lockfile")
	pf.Bool("git-tags", false, "resolve missing commit hashes from release tags")
	pf.String("tags-source", tagsGit, "where release tags are listed: git or github")
	pf.BoolVar(&g.noCache, "no-cache", false, "disable the persistent lookup cache")

	fl := root.Flags()
	fl.BoolVarP(&f.showAll, "show-all", "a", false, "also diff nested dependencies")
	fl.BoolVarP(&f.group, "group", "g", false, "group changes per target and direct dependency")
	fl.StringVarP(&f.format, "format", "f", render.FormatSimple, "output format: "+strings.Join(render.Formats, ", "))
	fl.BoolVar(&f.links, "links", false, "link to diff.rs instead of looking up commits")

	root.AddCommand(c.cacheCommand(&g))
	root.AddCommand(c.serveCommand(&g))
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) runDiff(cmd *cobra.Command, args []string, g globalFlags, f diffFlags) error {
	if err := render.ValidateFormat(f.format); err != nil {
		return err
	}
	reqs, err := crate.ParseRequests(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(g.configFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx := withLogger(cmd.Context(), c.Logger)
	store, err := openCache(ctx, cfg, g.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := c.newRunner(cfg, store)
	prog := newProgress(c.Logger)

	var spin *Spinner
	if c.Progress {
		spin = newSpinnerWithContext(ctx, os.Stderr, "Comparing crate versions...")
		spin.Start()
	}
	res, err := runner.Execute(ctx, pipeline.Options{
		Requests:        reqs,
		ManifestPath:    cfg.ManifestPath,
		Nested:          f.showAll,
		ComparisonLinks: f.links,
		LookupTimeout:   cfg.LookupTimeout,
	})
	if err != nil {
		if spin != nil {
			spin.StopWithError("Diff failed")
		}
		return err
	}
	if spin != nil {
		spin.Stop()
	}

	stats := res.Report.Stats()
	prog.done(fmt.Sprintf("Compared %d crates in %s mode (%d nested changes)",
		stats.Direct, res.Mode, stats.Removed+stats.Added+stats.Updated))

	return pipeline.Render(ctx, c.Out, res.Report, f.format, render.Options{
		Flat:            !f.group,
		ComparisonLinks: f.links,
	})
}
