// Command debrepod-server runs the upload service: an authenticated HTTP
// surface in front of the deb/repogen packages that accepts package
// uploads and triggers repository regeneration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/etnz/debrepod/server"
)

func main() {
	confPath := flag.String("c", "debrepod.toml", "path to the server configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *confPath); err != nil {
		log.Fatalf("debrepod-server: %v", err)
	}
}

func run(ctx context.Context, confPath string) error {
	cfg, err := server.LoadConfig(confPath)
	if err != nil {
		return err
	}

	handler, err := server.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	srv := &http.Server{Addr: cfg.Server.Bind, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownGracePeriod)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("debrepod-server: listening on %s", cfg.Server.Bind)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
