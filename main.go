package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"standup-service/internal/config"
	"standup-service/internal/email"
	"standup-service/internal/gateway"
	"standup-service/internal/generation"
	"standup-service/internal/localstore"
	"standup-service/internal/service"
	"standup-service/internal/sse"
	"standup-service/utils"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standup-service",
		Short: "Daily standup generator and history service",
		Long:  "Formats daily standups with Gemini and keeps their history locally or in a Postgres backend.",
		// no subcommand means serve
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newMigrateRemoteCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "standup-service %s\n", Version)
		},
	})
	return cmd
}

// runtime holds the wired service and what must be closed with it.
type runtime struct {
	cfg      *config.Config
	store    *localstore.SQLite
	provider *gateway.Provider
	svc      *service.StandupService
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := localstore.OpenSQLite(cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", cfg.LocalDBPath, err)
	}
	log.Printf("✅ [LOCAL] Local store at %s", cfg.LocalDBPath)

	provider := gateway.NewProvider(store, nil, cfg.RemoteAutoMigrate)
	gen := generation.NewGemini(store, cfg.GeminiModel, cfg.GeminiRefineModel)

	var sender *email.Sender
	if cfg.SMTPEnabled() {
		sender = email.NewSender(cfg)
		log.Printf("✅ [EMAIL] SMTP sender via %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	} else {
		log.Println("⚠️ [EMAIL] Sharing disabled (no SMTP_HOST/SMTP_FROM)")
	}

	var bucket *utils.ExportBucket
	if cfg.ExportBucketEnabled() {
		bucket, err = utils.NewExportBucket(ctx, utils.ExportBucketConfig{
			Bucket:          cfg.ExportBucket,
			Endpoint:        cfg.ExportEndpoint,
			Region:          cfg.ExportRegion,
			AccessKeyID:     cfg.ExportAccessKeyID,
			SecretAccessKey: cfg.ExportSecretAccessKey,
			PublicURL:       cfg.ExportPublicURL,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("export bucket: %w", err)
		}
		if err := bucket.Check(ctx); err != nil {
			log.Printf("⚠️ [EXPORT] %v", err)
		} else {
			log.Printf("✅ [EXPORT] Bucket %s reachable", cfg.ExportBucket)
		}
	}

	svc := service.NewStandupService(store, provider, gen, sse.NewBroker(), sender, bucket)
	return &runtime{cfg: cfg, store: store, provider: provider, svc: svc}, nil
}

func (r *runtime) Close() {
	if err := r.provider.Close(); err != nil {
		log.Printf("⚠️ [SHUTDOWN] Closing remote backend: %v", err)
	}
	if err := r.store.Close(); err != nil {
		log.Printf("⚠️ [SHUTDOWN] Closing local store: %v", err)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
