// Command herbal browses a medicinal plant catalog.
//
// Usage:
//
//	herbal                  Interactive browser (TUI)
//	herbal search <query>   Filter the catalog from the shell
//	herbal show <name>      Print one plant's details
//	herbal systems          List body systems
//	herbal fav list|toggle  Manage favorites
//	herbal login [name]     Sign in (prompts when no name is given)
//	herbal logout           Sign out
//	herbal theme [mode]     Show or set the light/dark theme
//	herbal serve            JSON API with Prometheus metrics
//	herbal events           JSONL event log viewer
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abelbrown/herbal/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "herbal",
		Short: "Browse a catalog of medicinal plants",
		Long: `herbal filters a catalog of medicinal plants by disease or by plant,
keeps per-user favorites and shows preparation, dosage and safety notes.
Run without a command to open the interactive browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// The TUI owns the terminal and logs to a file instead.
			if cmd != cmd.Root() {
				logging.InitWriter(cmd.ErrOrStderr(), opts.verbose)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.herbal/config.yaml)")
	flags.StringVarP(&opts.user, "user", "u", "", "act as this user instead of the signed-in one")
	flags.StringVar(&opts.catalog, "catalog", "", "catalog location: file, http(s):// or s3:// URL")
	flags.StringVar(&opts.db, "db", "", "sqlite database path")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newSystemsCmd(opts))
	rootCmd.AddCommand(newFavCmd(opts))
	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
	rootCmd.AddCommand(newThemeCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newEventsCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "herbal %s (%s)\n", version, commit)
		},
	}
}
