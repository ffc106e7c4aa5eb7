package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/indexadvisor/internal/config"
	"github.com/seenimoa/indexadvisor/internal/datasource"
	"github.com/seenimoa/indexadvisor/internal/store"
)

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  indexadvisor System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		cfgFile := cfg.File
		if cfgFile == "" {
			cfgFile = "(defaults)"
		}
		fmt.Printf("  Config:        %s\n", cfgFile)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Base currency: %s\n", cfg.Investor.BaseCurrency)
		fmt.Printf("    Default risk:  %s\n", cfg.DefaultRisk())
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println("    Indices:")
		for _, id := range cfg.IndexIDs() {
			p := cfg.Indices[id]
			fmt.Printf("      %-8s %-10s %s, %s\n", id, p.Ticker, p.Currency, p.Region)
		}
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
			if k.Hint != "" {
				fmt.Printf("    %-25s %s\n", "", k.Hint)
			}
		}
		fmt.Println()

		fmt.Println("  Database:")
		fmt.Printf("    Path:          %s\n", cfg.Data.DBPath)
		fmt.Printf("    Last update:   %s\n", lastUpdate(cmd))

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// lastUpdate reads the refresh timestamp without creating a database.
func lastUpdate(cmd *cobra.Command) string {
	if _, err := os.Stat(cfg.Data.DBPath); err != nil {
		return "never (no database)"
	}
	db, err := openStore()
	if err != nil {
		return err.Error()
	}
	defer db.Close()

	v, err := db.Metadata(cmd.Context(), datasource.MetaLastUpdate)
	if errors.Is(err, store.ErrNoData) {
		return "never"
	}
	if err != nil {
		return err.Error()
	}
	return v
}
