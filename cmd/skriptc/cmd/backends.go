package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Listet die verfügbaren Backends",
	Long: `Listet die eingebauten Backends und die aus dem konfigurierten
Verzeichnis geladenen YAML-Definitionen.`,
	Args: cobra.NoArgs,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Backends"))
	for _, b := range a.registry.List() {
		marker := " "
		if b.Name == a.cfg.Build.Backend {
			marker = okStyle.Render("*")
		}
		fmt.Fprintf(out, "%s %s%s %s %s\n",
			marker,
			nameColumn.Render(b.Name),
			originColumn.Render(originLabel(b.Origin)),
			fmt.Sprintf("%s → %s  %s %s", b.SourceExt, b.IntermediateExt, b.Compiler, strings.Join(b.Args, " ")),
			mutedStyle.Render(b.Description),
		)
	}
	return nil
}

func originLabel(origin string) string {
	if origin == "builtin" {
		return origin
	}
	return "yaml"
}
