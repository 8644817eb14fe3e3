// Command reportctl runs the wealthdesk reports against a local replica file
// and prints the results as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/reports"
	"github.com/masterc/wealthdesk/pkg/logger"
)

var (
	store   *database.Store
	service *reports.Service
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Query wealthdesk reports from a replica file",
	Long:  "Opens a replica file read-only and prints client, contract and book reports as JSON.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("replica")
		level, _ := cmd.Flags().GetString("log-level")
		limit, _ := cmd.Flags().GetInt("display-limit")

		log := logger.New(logger.Config{Level: level, Pretty: true, Output: os.Stderr})

		s, err := openStore(path, log)
		if err != nil {
			return err
		}
		store = s
		service = reports.NewService(store, limit, log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
			store = nil
		}
	},
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("replica", "data/Base.sqlite", "path to the replica file")
	f.String("log-level", "warn", "log level (debug, info, warn, error)")
	f.Int("display-limit", reports.DefaultDisplayLimit, "labels kept before folding distributions into \"Other\"")
}

func openStore(path string, log zerolog.Logger) (*database.Store, error) {
	s, err := database.New(database.Config{Path: path, Name: "replica"}, log)
	if err != nil {
		return nil, fmt.Errorf("open replica: %w", err)
	}
	if !s.Available() {
		_ = s.Close()
		return nil, fmt.Errorf("open replica %s: %w", path, database.ErrStorageUnavailable)
	}
	return s, nil
}

// entityArgs parses "<client|contract> <id>"
func entityArgs(args []string) (domain.EntityKind, int64, error) {
	kind, err := domain.ParseEntityKind(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, args[1])
	}
	return kind, id, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
