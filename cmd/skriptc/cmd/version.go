package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/skriptc/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Zeigt die Version an",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "skriptc v%s\n", info.Version)
		fmt.Fprintf(out, "  Git Commit:     %s\n", info.GitCommit)
		fmt.Fprintf(out, "  Build Date:     %s\n", info.BuildDate)
		fmt.Fprintf(out, "  Backend Format: %s\n", version.ComponentVersion("backend"))
		fmt.Fprintf(out, "  History Schema: %s\n", version.ComponentVersion("history"))
		fmt.Fprintf(out, "  Go Version:     %s\n", info.GoVersion)
		fmt.Fprintf(out, "  OS/Arch:        %s\n", info.Platform)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
