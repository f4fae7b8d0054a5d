package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/getmockd/reqdiff/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	jsonOutput bool
	logLevel   string
	logFormat  string
	logFile    string
	noColor    bool

	logger  *slog.Logger
	closers []io.Closer
}

// NewRootCmd builds the reqdiff command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	env := logging.FromEnv()

	cmd := &cobra.Command{
		Use:   "reqdiff",
		Short: "reqdiff explains why HTTP requests do not match stub definitions",
		Long: `reqdiff matches HTTP requests against stub definitions and renders a
side-by-side diff of every attribute that disagrees: method, URL, query
parameters, headers, cookies and bodies (plain text, JSON, XML, JSONPath
and XPath).

Stubs are read from JSON or YAML files; glob patterns with ** are expanded.
Requests are read from capture files or described with flags.

Logging defaults come from REQDIFF_LOG_LEVEL and REQDIFF_LOG_FORMAT.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			return opts.setupLogging(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")
	flags.StringVar(&opts.logLevel, "log-level", env.Level.String(), "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", string(env.Format), "Log format (text, json)")
	flags.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file, rotated by size")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newMatchCmd(opts),
		newDiffCmd(opts),
		newVerifyCmd(opts),
		newValidateCmd(opts),
		newSchemaCmd(),
		newVersionCmd(opts),
	)
	return cmd
}

// setupLogging builds the logger from the flags. Logs go to errOut, and with
// --log-file also to the file as JSON.
func (o *rootOptions) setupLogging(errOut io.Writer) error {
	cfg := logging.Config{
		Level:  logging.ParseLevel(o.logLevel),
		Format: logging.ParseFormat(o.logFormat),
		Output: errOut,
	}
	if o.logFile == "" {
		o.logger = logging.New(cfg)
		return nil
	}

	f, err := logging.OpenFile(logging.DefaultFileConfig(o.logFile))
	if err != nil {
		return err
	}
	o.closers = append(o.closers, f)
	fileCfg := logging.Config{Level: cfg.Level, Format: logging.FormatJSON, Output: f}
	o.logger = slog.New(logging.NewMultiHandler(logging.Handler(cfg), logging.Handler(fileCfg)))
	return nil
}

func (o *rootOptions) close() error {
	var first error
	for _, c := range o.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	o.closers = nil
	return first
}

// log returns the configured logger, or a no-op one before setup ran.
func (o *rootOptions) log() *slog.Logger {
	return logging.OrNop(o.logger)
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	opts := &rootOptions{}
	err := newRootCmd(opts).Execute()
	if cerr := opts.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
