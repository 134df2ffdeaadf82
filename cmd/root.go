package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abhisek/quizzer/internal/app"
	"github.com/abhisek/quizzer/internal/config"
	"github.com/abhisek/quizzer/internal/logging"
	"github.com/abhisek/quizzer/internal/screen"
	"github.com/abhisek/quizzer/internal/store"
)

// cfg and log are populated by setup before any command runs.
var (
	cfg      config.Config
	log      *logrus.Logger
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "quizzer",
	Short: "Generate quizzes from CSV files and grade answers",
	Long: "Quizzer turns a CSV of question/answer pairs into randomized quizzes and " +
		"grades free-text answers, ignoring case, whitespace and the order of comma-separated parts.",
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(*cobra.Command, []string) error { return closeLog() },
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal() {
			return cmd.Help()
		}
		return runPicker(cmd)
	},
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("db", "", "SQLite path or postgres:// URL (overrides QUIZZER_DB)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(importCmd, runCmd, serveCmd, statsCmd, resetCmd, versionCmd)
}

// setup loads configuration with flags taking precedence over env, file
// and defaults, then builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	overrideString(flags, "db", &loaded.DB)
	overrideString(flags, "log-level", &loaded.Log.Level)
	overrideString(flags, "log-format", &loaded.Log.Format)
	overrideString(flags, "log-file", &loaded.Log.File)
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, closeFn, err := logging.New(logging.Options{
		Level:  loaded.Log.Level,
		Format: loaded.Log.Format,
		File:   loaded.Log.File,
	})
	if err != nil {
		return err
	}
	cfg, log, closeLog = loaded, l, closeFn
	cmd.SetContext(logging.WithContext(cmd.Context(), log))
	return nil
}

type flagSet interface {
	Changed(name string) bool
	GetString(name string) (string, error)
}

// overrideString copies an explicitly set string flag into dst.
func overrideString(flags flagSet, name string, dst *string) {
	if !flags.Changed(name) {
		return
	}
	if v, err := flags.GetString(name); err == nil {
		*dst = v
	}
}

// openStore opens the attempt history database from cfg.DB.
func openStore() (*store.Store, error) {
	dsn, err := store.ResolveDSN(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runTUI runs the terminal UI rooted at s. Logging to stderr would corrupt
// the screen, so it is silenced unless a log file is configured.
func runTUI(ctx context.Context, s screen.Screen) error {
	if cfg.Log.File == "" {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}
	return app.Run(ctx, s)
}
