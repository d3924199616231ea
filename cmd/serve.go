package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/picshare/api/core"
	"github.com/anoixa/picshare/internal/lifecycle"
	"github.com/anoixa/picshare/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server and the album expiry scheduler",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	cfg, logger := bootstrap()
	defer func() { _ = logger.Sync() }()

	container := newContainer(cfg, logger)

	scheduler, err := lifecycle.NewScheduler(
		container.NewSweeper(false),
		cfg.LifecycleSweepSchedule,
		cfg.LifecycleSweepOnStart,
		logger.Named("scheduler"),
	)
	if err != nil {
		logger.Fatal("failed to create sweep scheduler", zap.Error(err))
	}
	scheduler.Start()

	local, _ := container.GetStorage().(*storage.LocalStorage)
	router := core.NewRouter(core.DependenciesFromContainer(container), local)
	server := core.NewServer(cfg, router)

	go func() {
		logger.Info("server started", zap.String("addr", cfg.Addr()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// 先停调度器，正在运行的清理会收到取消信号
	scheduler.Stop(shutdownTimeout)

	if err := container.Close(); err != nil {
		logger.Error("error closing container", zap.Error(err))
	}

	logger.Info("server exited")
}
