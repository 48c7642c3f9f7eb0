// Package cli implements the stego command line.
//
// Every verb prints one JSON status line per result on stdout, success or not.
// The exceptions are config show, which prints YAML, and history, which prints
// one line per entry. Diagnostics go to stderr through slog.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/config"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitFailure = 2
)

type App struct {
	out          io.Writer
	errOut       io.Writer
	colorableOut io.Writer

	cfgFile    string
	pretty     bool
	verbose    bool
	ledgerPath string

	cfg    config.Config
	logger *slog.Logger
}

func newApp(stdout, stderr io.Writer) *App {
	a := &App{
		out:          stdout,
		errOut:       stderr,
		colorableOut: stdout,
		cfg:          config.Default(),
		logger:       slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
	if stdout == os.Stdout {
		a.colorableOut = colorable.NewColorableStdout()
	}
	return a
}

// Execute runs the command line against the process arguments and returns the exit code.
func Execute(version, commit string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr, fmt.Sprintf("%s (%s)", version, commit))
}

// Run executes args and returns the exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, args, stdout, stderr, "dev")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, version string) int {
	app := newApp(stdout, stderr)
	root := app.rootCmd()
	root.Version = version
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitOK
	}
	app.fail(err)
	if errors.Is(err, stego.ErrUsage) {
		if cmd == nil {
			cmd = root
		}
		fmt.Fprint(stderr, cmd.UsageString())
		return ExitUsage
	}
	return ExitFailure
}

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stego",
		Short:         "Hide text in the least significant bits of lossless images",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: missing command", stego.ErrUsage)
			}
			return fmt.Errorf("%w: unknown command %q", stego.ErrUsage, args[0])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", stego.ErrUsage, err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.stego_zero/config.yaml)")
	flags.BoolVar(&a.pretty, "pretty", false, "indent and colour the JSON output")
	flags.StringVar(&a.ledgerPath, "ledger", "", "sqlite file recording embeds (overrides the config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		a.embedCmd(),
		a.revealCmd(),
		a.capacityCmd(),
		a.qualityCmd(),
		a.historyCmd(),
		a.configCmd(),
	)
	return root
}

func (a *App) init() error {
	cfg, err := config.Read(a.cfgFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg.ApplyEnv()

	// Any set flags override the configuration
	if a.pretty {
		cfg.Pretty = true
	}
	if a.ledgerPath != "" {
		cfg.Ledger = a.ledgerPath
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	a.logger.Debug("config loaded", "path", cfg.Path())
	return nil
}

// exactArgs is cobra.ExactArgs with a usage error naming the expected arguments.
func exactArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != len(names) {
			return fmt.Errorf("%w: %s expects %d argument(s) %v, got %d", stego.ErrUsage, cmd.Name(), len(names), names, len(args))
		}
		return nil
	}
}
