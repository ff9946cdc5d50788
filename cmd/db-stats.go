package cmd

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/meteohub/weatherstation/config"
	"github.com/meteohub/weatherstation/database"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display row counts per table and the age of the newest reading.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.Stats()
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		tables := make([]string, 0, len(stats))
		for table := range stats {
			tables = append(tables, table)
		}
		sort.Strings(tables)

		fmt.Println("Database Statistics:")
		for _, table := range tables {
			fmt.Printf("%s: %s rows\n", table, humanize.Comma(stats[table]))
		}

		newest, err := db.NewestMeasurementTime(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get newest measurement: %w", err)
		}
		if newest != nil {
			fmt.Printf("Newest reading: %s\n", humanize.Time(*newest))
		}
		return nil
	},
}
