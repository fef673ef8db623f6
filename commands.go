package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"standup-service/internal/gateway"
	"standup-service/internal/localstore"
	"standup-service/internal/remote"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Move locally stored standups and tickets to the remote backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.svc.Sync(cmd.Context())
			if errors.Is(err, gateway.ErrNotConfigured) {
				return fmt.Errorf("no remote backend configured; save one with PUT /api/settings/backend first")
			}
			if res != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Synced %d standups and %d tickets\n", res.StandupsSynced, res.TicketsSynced)
				if res.StandupsError != "" {
					fmt.Fprintf(out, "standups: %s\n", res.StandupsError)
				}
				if res.TicketsError != "" {
					fmt.Fprintf(out, "tickets: %s\n", res.TicketsError)
				}
			}
			return err
		},
	}
}

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the standup history as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if outPath == "-" {
				_, err := rt.svc.Export(cmd.Context(), cmd.OutOrStdout())
				return err
			}
			if outPath == "" {
				outPath = gateway.ExportFilename(time.Now())
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if _, err := rt.svc.Export(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", `output file, "-" for stdout (default standup-history-<date>.json)`)
	return cmd
}

func newMigrateRemoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-remote",
		Short: "Create the remote tables from the stored backend config",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg, err := localstore.LoadBackendConfig(cmd.Context(), rt.store)
			if err != nil {
				return err
			}
			if !cfg.IsConfigured() {
				return gateway.ErrNotConfigured
			}
			db, err := remote.Open(*cfg)
			if err != nil {
				return err
			}
			defer remote.Close(db)
			if err := remote.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables on %s\n", len(remote.AllModels()), cfg.URL)
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the setup SQL for the remote backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSchema(cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "wrap the SQL in a JSON object")
	return cmd
}

func writeSchema(w io.Writer, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(map[string]string{"sql": remote.SchemaSQL})
	}
	_, err := io.WriteString(w, remote.SchemaSQL)
	return err
}
