package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/seenimoa/indexadvisor/internal/advisor"
	"github.com/seenimoa/indexadvisor/internal/compare"
	"github.com/seenimoa/indexadvisor/internal/report"
	"github.com/seenimoa/indexadvisor/internal/store"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// --- Evaluate Command ---

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [index...]",
	Short: "Evaluate one or more indices (all configured when none given)",
	Long: `Evaluate fetches prices, exchange rates, money supply and news, extracts
the four factor families and scores each index for the chosen risk
tolerance. With --offline everything is read from the local database
filled by "indexadvisor update".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaluate(cmd, args, false)
	},
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare [index...]",
	Short: "Evaluate indices and rank them side by side",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaluate(cmd, args, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{evaluateCmd, compareCmd} {
		c.Flags().StringP("risk", "r", "", "risk tolerance: conservative, moderate, aggressive (default from config)")
		c.Flags().Bool("offline", false, "read data from the local database instead of the network")
		c.Flags().Bool("save", true, "log recommendations to the local database")
		c.Flags().StringP("format", "f", "text", "output format: text, json, csv, yaml")
		c.Flags().StringP("out", "o", "", "write output to a file instead of stdout")
	}
}

func runEvaluate(cmd *cobra.Command, args []string, withComparison bool) error {
	riskRaw, _ := cmd.Flags().GetString("risk")
	offline, _ := cmd.Flags().GetBool("offline")
	save, _ := cmd.Flags().GetBool("save")
	formatRaw, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	risk, err := riskFlag(riskRaw)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatRaw)
	if err != nil {
		return err
	}

	var db *store.Store
	if offline || save {
		if db, err = openStore(); err != nil {
			return err
		}
		defer db.Close()
	}

	adv := newAdvisor(db, offline, save)
	batch, err := adv.EvaluateAll(cmd.Context(), indexArgs(args), risk)
	if err != nil {
		return err
	}

	var rank rankFunc
	if withComparison {
		rank = adv.Compare
	}
	doc := batchDocument(batch, risk, cfg.Analysis.Compare.Names, rank)

	if err := writeDocument(outPath, format, doc); err != nil {
		return err
	}
	if len(batch.Recommendations) == 0 {
		return fmt.Errorf("no index could be evaluated")
	}
	return nil
}

type rankFunc func(map[string]models.Recommendation) (models.ComparisonResult, error)

// batchDocument builds the report for one run. A ranking failure is logged
// and the document goes out without a comparison, so the individual
// recommendations are never lost.
func batchDocument(batch *advisor.Batch, risk models.RiskTolerance, names map[string]string, rank rankFunc) report.Document {
	doc := report.NewDocument(batch.RunID, batch.AsOf, risk, batch.Recommendations, batch.Failures)
	doc.Names = names
	if rank == nil {
		return doc
	}
	res, err := rank(batch.Recommendations)
	if err != nil {
		log.Warn().Err(err).Int("evaluated", len(batch.Recommendations)).Msg("comparison skipped")
		return doc
	}
	doc.Comparison = &res
	return doc
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a logged evaluation run",
	Long:  "Export reads one run from the recommendations log (the latest by default) and writes it as text, JSON, CSV or YAML.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		formatRaw, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		format, err := report.ParseFormat(formatRaw)
		if err != nil {
			return err
		}
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		if runID == "" {
			if runID, err = db.LastRunID(ctx); err != nil {
				return fmt.Errorf("no logged run: %w", err)
			}
		}
		recs, err := db.Recommendations(ctx, store.RecommendationFilter{RunID: runID})
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return fmt.Errorf("run %s not found", runID)
		}

		doc := runDocument(runID, recs)
		return writeDocument(outPath, format, doc)
	},
}

func init() {
	exportCmd.Flags().String("run", "", "run id to export (default: latest)")
	exportCmd.Flags().StringP("format", "f", "json", "output format: text, json, csv, yaml")
	exportCmd.Flags().StringP("out", "o", "", "write output to a file instead of stdout")
}

// runDocument rebuilds a report from logged recommendations, re-ranking
// them when the run covered several indices.
func runDocument(runID string, recs []models.Recommendation) report.Document {
	sort.Slice(recs, func(i, j int) bool { return recs[i].IndexID < recs[j].IndexID })
	doc := report.Document{
		RunID:           runID,
		GeneratedAt:     recs[0].EvaluatedAt,
		RiskTolerance:   recs[0].RiskTolerance,
		Recommendations: recs,
		Names:           cfg.Analysis.Compare.Names,
	}
	if len(recs) >= 2 {
		byID := make(map[string]models.Recommendation, len(recs))
		for _, r := range recs {
			byID[r.IndexID] = r
		}
		if res, err := compare.NewRanker(cfg.Analysis.Compare).Compare(byID); err == nil {
			doc.Comparison = &res
		}
	}
	return doc
}

func writeDocument(path string, f report.Format, doc report.Document) error {
	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer file.Close()
		w = file
	}
	if err := report.Write(w, f, doc); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if path != "" {
		log.Info().Str("path", path).Str("format", string(f)).Msg("report written")
	}
	return nil
}
