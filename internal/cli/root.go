package cli

import (
	"fmt"

	"github.com/morozRed/fura/internal/output"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fura",
		Short: "Dependency graph analysis for JavaScript and TypeScript projects",
		Long: `Fura scans a JS/TS project, records every file, directory, declared
package and import reference in a SQLite store under .fura/, and answers
questions about the resulting graph: which files and runtime packages are
unused, and how files relate to each other.

Settings are read from .furarc at the project root and can be overridden
with flags.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: <path>/.furarc)")
	rootCmd.PersistentFlags().String("project", "", "Project name used for the store file")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "Names or globs to skip at any depth")
	rootCmd.PersistentFlags().StringToString("alias", nil, "Import alias, e.g. @=./src (repeatable)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "Parallel translators (default: number of CPUs)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log analysis phases to stderr")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Scan the project and rebuild the dependency graph",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunAnalyze,
	}
	analyzeCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	unusedCmd := &cobra.Command{
		Use:   "unused [path]",
		Short: "Report files and runtime packages not reachable from the entry files",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunUnused,
	}
	unusedCmd.Flags().StringSlice("entry", nil, "Entry files relative to the project root")
	unusedCmd.Flags().StringSlice("include", nil, "Directories analyzed for unused files")
	unusedCmd.Flags().Bool("strict", false, "Also report import cycles unreachable from the entry")
	unusedCmd.Flags().String("format", string(output.FormatText), "Output format: text|json")

	relationCmd := &cobra.Command{
		Use:   "relation <file|package> [path]",
		Short: "Show what a file imports, what imports it, or who uses a package",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  RunRelation,
	}
	relationCmd.Flags().String("direction", "down", "Traversal direction: down|up|both")
	relationCmd.Flags().Bool("package", false, "Treat the first argument as a package name")
	relationCmd.Flags().String("format", string(output.FormatText), "Output format: text|json|mermaid")
	relationCmd.Flags().StringP("out", "o", "", "Write the result to a file instead of stdout")

	treeCmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Print the scanned directory tree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunTree,
	}
	treeCmd.Flags().Bool("json", false, "Print machine-readable tree")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fura %s\n", version)
		},
	}

	rootCmd.AddCommand(
		analyzeCmd,
		unusedCmd,
		relationCmd,
		treeCmd,
		versionCmd,
	)

	return rootCmd
}
