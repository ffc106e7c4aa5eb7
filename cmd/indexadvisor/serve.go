package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/indexadvisor/api"
)

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, _ := cmd.Flags().GetBool("offline")
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.API.Port
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		adv := newAdvisor(db, offline, true)
		srv := api.NewServer(cfg, adv, log, api.WithHistory(db))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, port)
		fmt.Printf("🌐 indexadvisor API listening on http://%s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().Bool("offline", false, "evaluate from the local database instead of the network")
	serveCmd.Flags().IntP("port", "p", 0, "port override (default from config)")
}
