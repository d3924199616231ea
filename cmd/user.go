package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anoixa/picshare/database/models"
	"github.com/anoixa/picshare/internal/di"
	"github.com/anoixa/picshare/utils/password"
	"github.com/spf13/cobra"
)

// userCmd 账号管理
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage photographer accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a photographer or admin account",
	Long: `Create an account that albums can be attached to.

Examples:
  picshare user create --email lin@example.com --name Lin --password 's3cret'
  picshare user create --email ops@example.com --name Ops --password 's3cret' --role admin`,
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		plain, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		if err := createUser(email, name, plain, role); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().String("email", "", "Account email (required)")
	userCreateCmd.Flags().String("name", "", "Display name shown on shared albums")
	userCreateCmd.Flags().String("password", "", "Account password (required)")
	userCreateCmd.Flags().String("role", models.RolePhotographer, "Role: photographer or admin")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
}

func createUser(email, name, plain, role string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email: %q", email)
	}
	if len(plain) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if role != models.RolePhotographer && role != models.RoleAdmin {
		return fmt.Errorf("invalid role: %s", role)
	}
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	cfg, logger := bootstrap()
	defer func() { _ = logger.Sync() }()

	container := di.NewContainer(cfg, logger)
	if err := container.InitDatabase(); err != nil {
		return err
	}
	defer container.Close()
	if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
		return err
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := container.GetRepositories().Users.Create(context.Background(), user); err != nil {
		return err
	}

	fmt.Printf("Created %s account %s (id %d)\n", user.Role, user.Email, user.ID)
	return nil
}
