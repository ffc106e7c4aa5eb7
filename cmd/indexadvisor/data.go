package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/indexadvisor/internal/datasource"
	"github.com/seenimoa/indexadvisor/internal/report"
)

// --- Update Command ---

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch all configured series and news into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		plan := datasource.PlanFor(cfg.AdvisorConfig())
		r := datasource.NewRefresher(liveSources(), db, plan, log)
		rep, err := r.Refresh(cmd.Context())
		if rep != nil {
			printRefresh(rep)
		}
		return err
	},
}

func printRefresh(rep *datasource.RefreshReport) {
	keys := make([]string, 0, len(rep.Rows))
	for k := range rep.Rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tROWS")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%d\n", k, rep.Rows[k])
	}
	tw.Flush()

	for _, err := range rep.Errors {
		fmt.Printf("  ✗ %v\n", err)
	}
	fmt.Printf("\n%d items updated, %d failed in %s\n",
		len(rep.Rows), len(rep.Errors), report.FormatDuration(rep.Finished.Sub(rep.Started)))
}

// --- Stats Command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts and date ranges of the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatRaw, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatRaw)
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return err
		}

		switch format {
		case report.FormatJSON:
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		case report.FormatYAML:
			return yaml.NewEncoder(os.Stdout).Encode(stats)
		case report.FormatCSV:
			return fmt.Errorf("stats does not support csv output")
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TABLE\tSERIES\tROWS\tFROM\tTO")
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Table, s.Series, s.Rows, s.From, s.To)
		}
		return tw.Flush()
	},
}

func init() {
	statsCmd.Flags().StringP("format", "f", "text", "output format: text, json, yaml")
}
