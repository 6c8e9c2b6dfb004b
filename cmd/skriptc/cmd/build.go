package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/skriptc/internal/driver"
	"github.com/msto63/skriptc/internal/history"
	"github.com/msto63/skriptc/internal/toolchain"
)

// buildOptions are the flags shared by build and watch
type buildOptions struct {
	backend          string
	output           string
	compiler         string
	timeout          time.Duration
	keepIntermediate bool
	force            bool
}

var buildOpts buildOptions

var buildCmd = &cobra.Command{
	Use:   "build <datei.py>",
	Short: "Übersetzt ein Skript und baut ein Binary",
	Long: `Übersetzt das Skript in ein C-Programm, ruft den Compiler auf und
entfernt die Zwischendatei wieder. Das Binary heißt wie das Skript ohne
Endung, sofern nicht mit --output anders angegeben.

Ist die Quelle seit dem letzten erfolgreichen Build unverändert und das
Binary vorhanden, wird der Compiler nicht erneut aufgerufen (--force
erzwingt den Build).`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	addBuildFlags(buildCmd, &buildOpts)
	buildCmd.Flags().StringVarP(&buildOpts.output, "output", "o", "", "Pfad des Binarys (default: Modulname)")
	buildCmd.Flags().BoolVar(&buildOpts.force, "force", false, "Build erzwingen, auch wenn das Binary aktuell ist")
	rootCmd.AddCommand(buildCmd)
}

func addBuildFlags(cmd *cobra.Command, opts *buildOptions) {
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Backend (default aus Config: c)")
	cmd.Flags().StringVar(&opts.compiler, "compiler", "", "Compiler-Programm statt des Backend-Defaults")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Maximale Laufzeit des Compilers (default aus Config)")
	cmd.Flags().BoolVar(&opts.keepIntermediate, "keep-intermediate", false, "Erzeugte C-Datei behalten")
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	store, err := a.openHistory(false)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	d, req, err := a.newBuild(cmd, store, buildOpts, args[0])
	if err != nil {
		return err
	}

	res, err := d.Build(cmd.Context(), req)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

// newBuild wires a driver and request from config and flags
func (a *app) newBuild(cmd *cobra.Command, store history.Store, opts buildOptions, input string) (*driver.Driver, driver.Request, error) {
	b, err := a.selectBackend(opts.backend, opts.compiler)
	if err != nil {
		return nil, driver.Request{}, err
	}

	timeout := opts.timeout
	if timeout == 0 {
		timeout = a.cfg.Build.Timeout.Duration
	}
	runner := toolchain.New(toolchain.Config{
		Timeout: timeout,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Logger:  a.logger,
	})

	d := driver.New(driver.Config{
		Compiler: runner,
		History:  store,
		Logger:   a.logger,
	})
	req := driver.Request{
		Input:            input,
		Backend:          b,
		Output:           opts.output,
		KeepIntermediate: opts.keepIntermediate || a.cfg.Build.KeepIntermediate,
		Force:            opts.force,
	}
	return d, req, nil
}

func printResult(w io.Writer, res *driver.Result) {
	if res.Skipped {
		fmt.Fprintf(w, "%s %s %s\n", skipStyle.Render("="), res.Output, mutedStyle.Render("(aktuell)"))
		return
	}
	fmt.Fprintf(w, "%s %s %s\n",
		okStyle.Render("✓"),
		res.Output,
		mutedStyle.Render(fmt.Sprintf("(%s, %d Zeilen, %s)", res.Backend, res.Lines, res.Duration.Round(time.Millisecond))),
	)
	if res.CleanupErr != nil {
		fmt.Fprintf(w, "  %s %v\n", skipStyle.Render("warning:"), res.CleanupErr)
	}
}
