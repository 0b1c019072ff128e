/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/api"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/container"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the myScheduling API server.
The server will listen on the configured host and port,
and provide REST API interfaces for the record approval workflow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyServerFlags(cmd, cfg)

		if config.IsProduction(cfg) {
			gin.SetMode(gin.ReleaseMode)
		}

		if cfg.Tracing.Enabled {
			if err := api.InitTracing(cfg.Tracing); err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
		}

		ctr, err := container.NewContainer(cfg, configPath)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()
		if err := ctr.Start(); err != nil {
			return err
		}
		logger := ctr.Logger()

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:         addr,
			Handler:      ctr.Router(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", addr).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case err := <-errCh:
			return fmt.Errorf("failed to start server: %w", err)
		}

		logger.Info("shutting down server")

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("server forced to shutdown")
		}
		if cfg.Tracing.Enabled {
			if err := api.ShutdownTracing(ctx); err != nil {
				logger.WithError(err).Warn("failed to flush traces")
			}
		}

		logger.Info("server exited")
		return nil
	},
}

// applyServerFlags 显式指定的命令行参数覆盖配置
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}
