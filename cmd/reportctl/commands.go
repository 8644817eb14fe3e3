package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/masterc/wealthdesk/internal/domain"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <client|contract> <id>",
	Short: "Latest valuation, volatility and risk class of an entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, id, err := entityArgs(args)
		if err != nil {
			return err
		}
		m, err := service.LatestMetrics(kind, id)
		if err != nil {
			return err
		}
		return printJSON(cmd, m)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile <client|contract> <id>",
	Short: "Identity of an entity; clients include their contracts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, id, err := entityArgs(args)
		if err != nil {
			return err
		}
		if kind == domain.EntityClient {
			p, err := service.ClientProfile(id)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}
		c, err := service.Contract(id)
		if err != nil {
			return err
		}
		return printJSON(cmd, c)
	},
}

var positionCmd = &cobra.Command{
	Use:   "position <contract-id> <instrument-id>",
	Short: "Units, unit value, cost basis and valuation of a holding over time",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, contractID, err := entityArgs([]string{string(domain.EntityContract), args[0]})
		if err != nil {
			return err
		}
		instrumentID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid instrument id %q", domain.ErrInvalidInput, args[1])
		}
		points, err := service.PositionHistory(contractID, instrumentID)
		if err != nil {
			return err
		}
		return printJSON(cmd, points)
	},
}

var distributionCmd = &cobra.Command{
	Use:   "distribution <client|contract|book> [id]",
	Short: "Holdings grouped by an instrument dimension",
	Long:  "Groups the latest positions of a client, contract or the whole book by instrument dimension, with percentages folded past the display limit.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dimName, _ := cmd.Flags().GetString("dimension")
		limit, _ := cmd.Flags().GetInt("limit")
		date, _ := cmd.Flags().GetString("date")

		dim, err := domain.ParseDimension(dimName)
		if err != nil {
			return err
		}

		if args[0] == "book" {
			d, err := service.BookDistribution(date, dim, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, d)
		}

		if len(args) != 2 {
			return fmt.Errorf("%w: an id is required for %s", domain.ErrInvalidInput, args[0])
		}
		kind, id, err := entityArgs(args)
		if err != nil {
			return err
		}
		d, err := service.LatestDistribution(kind, id, dim, limit)
		if err != nil {
			return err
		}
		return printJSON(cmd, d)
	},
}

var esgCmd = &cobra.Command{
	Use:   "esg <client|contract> <id>",
	Short: "Valuation-weighted E/S/G letters and global grade",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")

		kind, id, err := entityArgs(args)
		if err != nil {
			return err
		}
		e, err := service.ScopeESG(domain.EntityScope(kind, id), date)
		if err != nil {
			return err
		}
		return printJSON(cmd, e)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <client|contract> <id>",
	Short: "Rebase an entity and a benchmark to 100 on their common dates",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		benchmark, _ := cmd.Flags().GetString("benchmark")

		kind, id, err := entityArgs(args)
		if err != nil {
			return err
		}
		c, err := service.CompareEntityToBenchmark(kind, id, benchmark)
		if err != nil {
			return err
		}
		return printJSON(cmd, c)
	},
}

var volumetryCmd = &cobra.Command{
	Use:   "volumetry",
	Short: "Client count and valuation per tranche",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		date, _ := cmd.Flags().GetString("date")

		v, err := service.Volumetry(date)
		if err != nil {
			return err
		}
		return printJSON(cmd, v)
	},
}

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "List benchmark names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		names, err := service.Benchmarks()
		if err != nil {
			return err
		}
		return printJSON(cmd, names)
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Row counts and columns of every replica table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stats, err := store.TableStats()
		if err != nil {
			return err
		}
		return printJSON(cmd, stats)
	},
}

func init() {
	distributionCmd.Flags().String("dimension", string(domain.DimensionGeneral), "instrument dimension (instrument, general, principal, detailed, geography, promoter, risk)")
	distributionCmd.Flags().Int("limit", 0, "labels kept before folding into \"Other\" (0 uses --display-limit)")
	distributionCmd.Flags().String("date", "", "book distribution date, YYYY-MM-DD (default latest)")

	esgCmd.Flags().String("date", "", "position date, YYYY-MM-DD (default latest)")

	compareCmd.Flags().String("benchmark", "", "benchmark name")
	_ = compareCmd.MarkFlagRequired("benchmark")

	volumetryCmd.Flags().String("date", "", "valuation date, YYYY-MM-DD (default last position date)")

	rootCmd.AddCommand(metricsCmd, profileCmd, positionCmd, distributionCmd, esgCmd, compareCmd, volumetryCmd, benchmarksCmd, tablesCmd)
}
