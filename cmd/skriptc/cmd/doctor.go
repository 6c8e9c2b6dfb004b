package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/skriptc/internal/history"
	skerr "github.com/msto63/skriptc/pkg/core/error"
	"github.com/msto63/skriptc/pkg/core/health"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Prüft Compiler, Backends und Build-Historie",
	Long: `Prüft, ob die Compiler aller Backends gefunden werden, ob das
Backend-Verzeichnis lesbar ist und ob die Build-Historie geöffnet werden
kann. Fehlt der Compiler des Default-Backends, endet der Befehl mit Fehler.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	report := a.healthChecks().Check(cmd.Context())

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("skriptc doctor"))
	for _, c := range report.Checks {
		fmt.Fprintf(out, "%s %s %s\n", healthIcon(c.Status), checkColumn.Render(c.Name), mutedStyle.Render(c.Message))
	}

	if report.Status == health.StatusUnhealthy {
		return skerr.New("environment check failed").
			WithCode(skerr.CodeInvalidConfig).
			WithOperation("cmd.doctor")
	}
	return nil
}

func (a *app) healthChecks() *health.Registry {
	checks := health.NewRegistry()

	source := a.cfg.Source
	if source == "" {
		source = "defaults"
	}
	checks.RegisterFunc("config", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{Status: health.StatusHealthy, Message: source}
	})

	def, defErr := a.selectBackend("", "")
	if defErr != nil {
		checks.RegisterFunc("backend:"+a.cfg.Build.Backend, func(ctx context.Context) health.CheckResult {
			return health.CheckResult{Status: health.StatusUnhealthy, Message: defErr.Error()}
		})
	}
	for _, b := range a.registry.List() {
		required := def != nil && b.Name == def.Name
		if required {
			b = def
		}
		checks.Register(health.CompilerCheck("compiler:"+b.Name, b.Compiler, required))
	}

	if a.cfg.Backends.Dir != "" {
		checks.Register(health.DirCheck("backends-dir", a.cfg.Backends.Dir, false))
	}

	if a.cfg.History.Enabled {
		checks.Register(health.ErrorCheck("history", func(ctx context.Context) (string, error) {
			store, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return "", err
			}
			defer store.Close()
			if _, err := store.List(ctx, 1); err != nil {
				return "", err
			}
			return a.cfg.History.Path, nil
		}))
	}
	return checks
}

func healthIcon(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return okStyle.Render("[+]")
	case health.StatusUnhealthy:
		return errorStyle.Render("[-]")
	default:
		return skipStyle.Render("[~]")
	}
}

