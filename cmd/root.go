package cmd

import (
	"fmt"
	"os"

	"github.com/anoixa/picshare/config"
	"github.com/anoixa/picshare/internal/di"
	"github.com/anoixa/picshare/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "picshare",
	Short:   "Time-limited photo album sharing service",
	Version: config.VersionString(),
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (eg: /etc/picshare/.env)")
	err := viper.BindPFlag("config_file_path", rootCmd.PersistentFlags().Lookup("config"))
	if err != nil {
		return
	}
}

// bootstrap 加载配置并初始化全局 logger
func bootstrap() (*config.Config, *zap.Logger) {
	config.InitConfig()
	cfg := config.Get()

	logger, err := utils.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	utils.SetLogger(logger)
	return cfg, logger
}

// newContainer 初始化全部服务并迁移表结构，失败时退出
func newContainer(cfg *config.Config, logger *zap.Logger) *di.Container {
	container := di.NewContainer(cfg, logger)
	if err := container.Init(); err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}
	if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
		logger.Fatal("failed to auto migrate database", zap.Error(err))
	}
	return container
}
