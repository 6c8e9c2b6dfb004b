package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/msto63/skriptc/internal/backend"
	"github.com/msto63/skriptc/internal/history"
	"github.com/msto63/skriptc/pkg/core/config"
	skerr "github.com/msto63/skriptc/pkg/core/error"
	"github.com/msto63/skriptc/pkg/core/logging"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "skriptc",
	Short: "skriptc - Skript-zu-C Compiler",
	Long: `skriptc übersetzt Skripte aus print-Anweisungen in ein C-Programm
und baut daraus mit einem externen Compiler ein natives Binary.

Beispiel:
  skriptc build hello.py      # erzeugt ./hello
  skriptc translate hello.py  # zeigt das erzeugte C-Programm`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Errors are printed once here.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: $SKRIPTC_CONFIG, ./skriptc.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log-Format: console, text, json")
}

// ExitCode returns the process exit status for err: the compiler's own
// status when it failed, else 1
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *skerr.Error
	if skerr.HasCode(err, skerr.CodeCompilerFailed) && errors.As(err, &e) {
		if code, ok := e.Detail("exit_code"); ok {
			if n, ok := code.(int); ok && n > 0 && n < 256 {
				return n
			}
		}
	}
	return 1
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("error:"), err.Error())
}

// app bundles what every command needs
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *backend.Registry
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	format := cfg.General.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	logger, err := logging.NewLogger(logging.LoggerConfig{
		Name:   "skriptc",
		Level:  cfg.General.LogLevel,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, skerr.Wrap(err, "invalid logging settings").
			WithCode(skerr.CodeInvalidConfig).
			WithOperation("cmd.setup")
	}
	if verbose {
		logger = logger.WithLevel(logging.LevelDebug)
	}
	logging.SetDefault(logger)
	if cfg.Source != "" {
		logger.Debug("Config loaded", "path", cfg.Source)
	}

	registry := backend.NewRegistry(logger)
	if _, err := registry.LoadDir(cfg.Backends.Dir); err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, registry: registry}, nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// openHistory opens the build history. With required unset a store that
// cannot be opened is logged and builds run without history.
func (a *app) openHistory(required bool) (history.Store, error) {
	if !a.cfg.History.Enabled {
		if required {
			return nil, skerr.New("build history is disabled").
				WithCode(skerr.CodeInvalidConfig).
				WithOperation("cmd.openHistory")
		}
		return nil, nil
	}

	store, err := history.Open(a.cfg.History.Path)
	if err != nil {
		if required {
			return nil, err
		}
		a.logger.Warn("Build history unavailable", "path", a.cfg.History.Path, "error", err)
		return nil, nil
	}
	return store, nil
}

// selectBackend resolves the backend name and compiler override from
// flags, then config
func (a *app) selectBackend(name, compiler string) (*backend.Backend, error) {
	if name == "" {
		name = a.cfg.Build.Backend
	}
	b, err := a.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if compiler == "" {
		compiler = a.cfg.Build.Compiler
	}
	if compiler != "" {
		b = b.WithCompiler(compiler)
	}
	return b, nil
}
