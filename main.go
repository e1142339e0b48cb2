package main

import (
	"fmt"
	"os"
	"scrapbook/db"
	"scrapbook/models"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scrapbook",
	Short: "Self-hosted photo album scrapbook server",
	Long: `Albums with free-form pages: stickers, images and text fields placed with
position, scale and rotation. Running without a command starts the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openDB(); err != nil {
			return err
		}
		defer db.Close()
		fmt.Println("Database schema is up to date")
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user that can log in and create albums",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		admin, _ := cmd.Flags().GetBool("admin")
		if email == "" || password == "" {
			return fmt.Errorf("--email and --password are required")
		}
		if name == "" {
			name = email
		}
		if err := openDB(); err != nil {
			return err
		}
		defer db.Close()

		permissions := []models.Permission{models.PermissionAlbums}
		if admin {
			permissions = append(permissions, models.PermissionAdmin)
		}
		user, err := models.UserCreate(name, email, password, permissions...)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)
		return nil
	},
}

// openDB connects and migrates, the database settings come from config
func openDB() error {
	if err := db.Init(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := models.Init(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func init() {
	userAddCmd.Flags().String("name", "", "Display name (defaults to the email)")
	userAddCmd.Flags().String("email", "", "Login email")
	userAddCmd.Flags().String("password", "", "Password")
	userAddCmd.Flags().Bool("admin", false, "Grant admin permission")

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
