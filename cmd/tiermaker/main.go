package main

import (
	"context"
	"fmt"
	"os"

	"github.com/meur/tiermaker/internal/config"
	"github.com/meur/tiermaker/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg     config.Config
	logger  zerolog.Logger
	rootCmd = &cobra.Command{
		Use:   "tiermaker",
		Short: "Rank items into tiers and keep them in a SQLite file",
		Long: `tiermaker organizes named, URL-tagged items (with optional thumbnails)
into ranked tiers plus an unranked pool, and stores the whole list in a
single SQLite file.

Use 'tiermaker serve' to run the local API used by the front end, or the
other subcommands to create, import and inspect tier list files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			logger = logging.NewFromConfigValues(cfg.LogLevel, cfg.LogFormat)
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			return nil
		},
	}
)

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "trace, debug, info, warn or error")
	rootCmd.AddCommand(serveCmd(), seedCmd(), importCmd(), showCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dbPathArg resolves the store path from args or TIERMAKER_DB
func dbPathArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return "", fmt.Errorf("no database path: pass one or set TIERMAKER_DB")
}
