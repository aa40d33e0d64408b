package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"pollsite/internal/config"
	"pollsite/internal/platform/database"
)

var flagSteps int

var rootCmd = &cobra.Command{
	Use:           "migrator",
	Short:         "Apply or roll back the polls database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	upCmd.Flags().IntVar(&flagSteps, "steps", 0, "number of migrations to apply (0 = all)")
	downCmd.Flags().IntVar(&flagSteps, "steps", 0, "number of migrations to roll back (0 = all)")

	rootCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd)
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			if flagSteps > 0 {
				return m.Steps(flagSteps)
			}
			return m.Up()
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			if flagSteps > 0 {
				return m.Steps(-flagSteps)
			}
			return m.Down()
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("no migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("version: %d, dirty: %v\n", version, dirty)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Mark VERSION as applied and clear the dirty flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			return m.Force(version)
		})
	},
}

func withMigrator(ctx context.Context, fn func(m *migrate.Migrate) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.NewPostgres(ctx, cfg.DB_DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	m, err := database.NewMigrator(db.DB)
	if err != nil {
		return err
	}

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	fmt.Println("done")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrator:", err)
		os.Exit(1)
	}
}
