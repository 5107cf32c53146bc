package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"picklist/pkg/config"
	_ "picklist/pkg/contour/cvcontour"
	"picklist/pkg/logging"
	"picklist/pkg/scan"
)

var Version = "dev"

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "picklist",
		Short:        "Scan picklist photos for check and cross marks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default config.yaml)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting picklist server", zap.String("version", Version))

	if cfg.Upload.KeepFiles {
		if err := os.MkdirAll(cfg.Upload.Dir, 0755); err != nil {
			return fmt.Errorf("create upload dir: %w", err)
		}
	}

	scanner, err := scan.Build(ctx, cfg, log)
	if err != nil {
		log.Error("scanner setup failed", zap.Error(err))
		return err
	}
	defer scanner.Close()

	gin.SetMode(cfg.Server.Mode)
	r := newRouter(&server{cfg: cfg, scanner: scanner, log: log})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))
	r.MaxMultipartMemory = s.cfg.Upload.MaxSize
	setupRoutes(r, s)
	return r
}
