package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/treelint/treelint/pkg/logging"
)

// Populated by the linker at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errViolations marks a run that completed but found errors
var errViolations = errors.New("violations found")

var (
	verbosity int

	rootCmd = &cobra.Command{
		Use:   "treelint",
		Short: "Lint a repository's directory structure",
		Long: `treelint checks a directory tree against a declarative description of
the layout it is expected to have: required files, naming conventions,
forbidden paths, companion files, and mirrored structures.

Configuration is read from .treelint.yaml (or .treelint.toml) at the
checked root.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the CLI and reports the terminal error, if any
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errViolations) {
		fmt.Fprintf(os.Stderr, "treelint: %v\n", err)
	}
	return err
}

// exitCodeFor distinguishes "the tree has problems" from "the run
// itself failed".
func exitCodeFor(err error) int {
	if errors.Is(err, errViolations) {
		return 1
	}
	return 2
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("treelint version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(treelint completion bash)

Zsh:
  $ treelint completion zsh > "${fpath[1]}/_treelint"

Fish:
  $ treelint completion fish | source

PowerShell:
  PS> treelint completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}
