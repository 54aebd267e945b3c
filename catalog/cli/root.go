package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Astemirdum/book-catalog/catalog/app"
	"github.com/Astemirdum/book-catalog/catalog/config"
	"github.com/Astemirdum/book-catalog/pkg/display"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

type flags struct {
	noColor bool
	ascii   bool
	storage string
	path    string
	name    string
	port    string

	logLevel     string
	logFile      string
	writeTimeout time.Duration
}

func (f *flags) options() ([]config.Option, error) {
	opts := []config.Option{
		config.WithStorage(f.storage, f.path),
		config.WithLibraryName(f.name),
		config.WithPort(f.port),
	}
	if f.logLevel != "" {
		level, err := zapcore.ParseLevel(f.logLevel)
		if err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		opts = append(opts, config.WithLogLevel(level))
	}
	if f.logFile != "" {
		opts = append(opts, config.WithLogSink(f.logFile))
	}
	if f.writeTimeout > 0 {
		opts = append(opts, config.WithWriteTimeout(f.writeTimeout))
	}
	return opts, nil
}

// NewRootCmd builds the command tree. The menu reads from in and writes to out.
func NewRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var (
		f   flags
		cfg *config.Config
	)

	runMenu := func(cmd *cobra.Command, _ []string) error {
		var opts []display.Option
		if f.noColor {
			opts = append(opts, display.WithoutColor())
		}
		if f.ascii {
			opts = append(opts, display.WithASCII())
		}
		return app.RunMenu(cmd.Context(), cfg, in, out, opts...)
	}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "Manage a book catalog from a text menu or over REST",
		Long: `catalog keeps a list of books with borrow/return state.

Storage is a JSON/YAML file, SQLite or Postgres (STORAGE_DRIVER).
Run 'catalog' with no arguments to open the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if f.noColor {
				color.NoColor = true
			}
			opts, err := f.options()
			if err != nil {
				return err
			}
			cfg, err = config.Load(opts...)
			return err
		},
		RunE: runMenu,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&f.ascii, "ascii", false, "Use ASCII status markers instead of symbols")
	pf.StringVar(&f.storage, "storage", "", "Storage driver: file, sqlite, postgres, memory (default from STORAGE_DRIVER)")
	pf.StringVar(&f.path, "path", "", "Data file for file and sqlite storage (default from STORAGE_PATH)")
	pf.StringVar(&f.name, "name", "", "Library name used for a new catalog (default from LIBRARY_NAME)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
	pf.StringVar(&f.logFile, "log-file", "", "Write logs to this file instead of stderr (default from LOG_SINK)")

	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "Open the numbered text menu",
		Args:  cobra.NoArgs,
		RunE:  runMenu,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			app.Run(cfg)
		},
	}
	serveCmd.Flags().StringVar(&f.port, "port", "", "HTTP port (default from HTTP_PORT)")
	serveCmd.Flags().DurationVar(&f.writeTimeout, "write-timeout", 0, "HTTP write timeout (default from HTTP_WRITE)")

	root.AddCommand(menuCmd, serveCmd)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
