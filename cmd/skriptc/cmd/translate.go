package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/skriptc/internal/driver"
)

var translateBackend string

var translateCmd = &cobra.Command{
	Use:   "translate <datei.py>",
	Short: "Gibt das erzeugte C-Programm aus",
	Long: `Übersetzt das Skript und schreibt das erzeugte Programm nach stdout.
Es werden keine Dateien geschrieben und kein Compiler aufgerufen.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&translateBackend, "backend", "", "Backend (default aus Config: c)")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	b, err := a.selectBackend(translateBackend, "")
	if err != nil {
		return err
	}

	d := driver.New(driver.Config{Logger: a.logger})
	res, err := d.Translate(cmd.Context(), driver.Request{Input: args[0], Backend: b})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Program.String())
	return nil
}
