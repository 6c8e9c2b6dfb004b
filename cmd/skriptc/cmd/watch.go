package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/msto63/skriptc/internal/watch"
)

var watchOpts buildOptions

var watchCmd = &cobra.Command{
	Use:   "watch <datei.py>",
	Short: "Baut das Skript bei jeder Änderung neu",
	Long: `Baut das Skript einmal und danach bei jeder Änderung der Datei erneut.
Fehlgeschlagene Builds werden gemeldet, das Beobachten läuft weiter.
Beenden mit Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addBuildFlags(watchCmd, &watchOpts)
	watchCmd.Flags().StringVarP(&watchOpts.output, "output", "o", "", "Pfad des Binarys (default: Modulname)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	d, req, err := a.newBuild(cmd, store, watchOpts, args[0])
	if err != nil {
		return err
	}
	// a change is a reason to build, whatever the history says
	req.Force = true

	out := cmd.OutOrStdout()
	w, err := watch.New(watch.Config{
		Path:     args[0],
		Debounce: a.cfg.Watch.Debounce.Duration,
		Logger:   a.logger,
		Build: func(ctx context.Context) error {
			res, err := d.Build(ctx, req)
			if err != nil {
				return err
			}
			printResult(out, res)
			return nil
		},
	})
	if err != nil {
		return err
	}
	return w.Run(cmd.Context())
}
