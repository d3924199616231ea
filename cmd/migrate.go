package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anoixa/picshare/database"
	"github.com/anoixa/picshare/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := bootstrap()
		defer func() { _ = log.Sync() }()

		container := di.NewContainer(cfg, log)
		if err := container.InitDatabase(); err != nil {
			log.Fatal("failed to initialize database", zap.Error(err))
		}
		defer container.Close()

		if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		fmt.Println("Database schema is up to date.")
	},
}

// migrateCopyCmd 在两个数据库之间复制数据
var migrateCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy all data from one database to another",
	Long: `Copy users, albums, photos and access logs between databases (e.g., SQLite to PostgreSQL).

Examples:
  # Migrate from SQLite to PostgreSQL
  picshare migrate copy --from-type sqlite --from-dsn ./data/picshare.db \
    --to-type postgres --to-dsn "host=localhost user=postgres password=secret dbname=picshare port=5432"

  # Replace rows that already exist in the target
  picshare migrate copy ... --on-conflict=overwrite`,
	Run: func(cmd *cobra.Command, args []string) {
		fromType, _ := cmd.Flags().GetString("from-type")
		toType, _ := cmd.Flags().GetString("to-type")
		fromDSN, _ := cmd.Flags().GetString("from-dsn")
		toDSN, _ := cmd.Flags().GetString("to-dsn")
		skipConfirm, _ := cmd.Flags().GetBool("yes")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")

		if err := runCopy(fromType, fromDSN, toType, toDSN, skipConfirm, batchSize, onConflict); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateCopyCmd)

	migrateCopyCmd.Flags().String("from-type", "sqlite", "Source database type (sqlite, postgres, mysql)")
	migrateCopyCmd.Flags().String("to-type", "", "Target database type (sqlite, postgres, mysql)")
	migrateCopyCmd.Flags().String("from-dsn", "", "Source database DSN/connection string")
	migrateCopyCmd.Flags().String("to-dsn", "", "Target database DSN/connection string")
	migrateCopyCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	migrateCopyCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
	migrateCopyCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default), overwrite, error")
}

func runCopy(fromType, fromDSN, toType, toDSN string, skipConfirm bool, batchSize int, onConflict string) error {
	strategy, err := database.ParseConflictStrategy(onConflict)
	if err != nil {
		return err
	}
	if fromType == "" || toType == "" {
		return fmt.Errorf("both --from-type and --to-type are required")
	}
	if fromDSN == "" || toDSN == "" {
		return fmt.Errorf("both --from-dsn and --to-dsn are required")
	}
	if fromType == toType && fromDSN == toDSN {
		return fmt.Errorf("source and target databases are the same")
	}

	_, log := bootstrap()
	defer func() { _ = log.Sync() }()

	log.Info("migrating database",
		zap.String("from", fromType), zap.String("source", maskDSN(fromDSN)),
		zap.String("to", toType), zap.String("target", maskDSN(toDSN)),
		zap.String("on_conflict", onConflict),
	)

	src, err := openDatabase(fromType, fromDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer src.Close()

	dst, err := openDatabase(toType, toDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %w", err)
	}
	defer dst.Close()

	// 确认迁移
	if !skipConfirm {
		fmt.Println("\nWarning: This will copy all data from source to target database.")
		fmt.Printf("Conflict resolution strategy: %s\n", onConflict)
		fmt.Print("Do you want to continue? [y/N]: ")
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Migration cancelled.")
			return nil
		}
	}

	stats, err := database.CopyAll(context.Background(), src, dst, batchSize, strategy, log.Named("migrate"))
	if stats != nil {
		printCopyStats(stats)
	}
	return err
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (database.Provider, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn + "?_foreign_keys=1")
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return database.NewProviderFromDB(db, dbType), nil
}

// maskDSN 隐藏敏感信息
func maskDSN(dsn string) string {
	if len(dsn) > 50 {
		return dsn[:50] + "..."
	}
	return dsn
}

// printCopyStats 打印迁移统计
func printCopyStats(stats *database.CopyStats) {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("       Migration Statistics")
	fmt.Println("========================================")
	fmt.Printf("Users copied:        %d\n", stats.Users)
	fmt.Printf("Albums copied:       %d\n", stats.Albums)
	fmt.Printf("Photos copied:       %d\n", stats.Photos)
	fmt.Printf("Access logs copied:  %d\n", stats.AccessLogs)
	fmt.Println("========================================")
}
