package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RIMANOuk/gallery-grabber/internal/server"
	"github.com/RIMANOuk/gallery-grabber/pkg/gallery"
	"github.com/RIMANOuk/gallery-grabber/pkg/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Long: `Starts the HTTP server with the scan form, gallery pages and
download endpoints. Scan results live in memory and expire after the
configured TTL; nothing survives a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if serveAddr != "" {
		flags["addr"] = serveAddr
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	service := gallery.New(cfg, log)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(service, log),
	}

	// reap expired results even when no requests arrive
	sweeperDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Store.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if evicted := service.EvictExpired(); evicted > 0 {
					log.DebugWithFields("evicted expired scan results", map[string]interface{}{
						"count": evicted,
					})
				}
			case <-sweeperDone:
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.InfoWithFields("server listening", map[string]interface{}{
			"addr": cfg.Server.Addr,
		})
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		close(sweeperDone)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-stop:
		log.InfoWithFields("shutting down", map[string]interface{}{
			"signal": sig.String(),
		})
		close(sweeperDone)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}
