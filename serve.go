package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	transport "standup-service/internal/transport/http"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.cfg

	handler := transport.NewHandler(rt.svc)
	app := transport.NewApp(transport.AppConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AppToken:       cfg.AppToken,
	}, handler)
	log.Println("✅ [SERVICE] StandupService & Handler initialized")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("🛑 [SHUTDOWN] Graceful shutdown initiated...")
		// open event streams never end on their own
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Printf("❌ [SHUTDOWN] Error: %v", err)
		}
	}()

	mode := "local"
	if g, err := rt.svc.Gateway(cmd.Context()); err == nil {
		mode = string(g.Mode())
	}

	log.Printf("🚀 standup-service %s starting...", Version)
	log.Printf("   🔗 Listening on port: %s", cfg.ServerPort)
	log.Printf("   🌐 CORS allowed origins: %s", cfg.AllowedOrigins)
	log.Printf("   🗄️  Persistence mode: %s", mode)
	if cfg.ExportBucketEnabled() {
		log.Printf("   📦 Export bucket: %s", cfg.ExportBucket)
	}
	log.Println("✅ Server ready.")

	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Printf("❌ [STARTUP] Server failed to start: %v", err)
		return err
	}
	return nil
}
