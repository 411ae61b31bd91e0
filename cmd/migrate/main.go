// Command migrate applies the embedded Postgres schema for the mood store.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wellnessbuddy/wellness-platform/migrations"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logger := logging.New(os.Getenv("LOG_LEVEL"))
	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *logging.Logger) *cobra.Command {
	var databaseURL string
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the wellness database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")

	// step opens a migrator, runs fn, and always releases the connection.
	step := func(fn func(*migrate.Migrate) error) func(*cobra.Command, []string) error {
		return func(*cobra.Command, []string) error {
			m, closeDB, err := openMigrator(databaseURL)
			if err != nil {
				return err
			}
			defer closeDB()
			return fn(m)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: step(func(m *migrate.Migrate) error {
				if err := ignoreNoChange(m.Up()); err != nil {
					return fmt.Errorf("migrate up: %w", err)
				}
				logger.Info("schema up to date")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: step(func(m *migrate.Migrate) error {
				if err := ignoreNoChange(m.Down()); err != nil {
					return fmt.Errorf("migrate down: %w", err)
				}
				logger.Info("schema rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return step(func(m *migrate.Migrate) error {
					if err := m.Force(version); err != nil {
						return fmt.Errorf("force %d: %w", version, err)
					}
					logger.Info("schema version forced", "version", version)
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: step(func(m *migrate.Migrate) error {
				v, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Println("no migrations applied")
					return nil
				}
				if err != nil {
					return fmt.Errorf("read version: %w", err)
				}
				fmt.Printf("version %d (dirty=%t)\n", v, dirty)
				return nil
			}),
		},
	)
	return root
}

func openMigrator(databaseURL string) (*migrate.Migrate, func(), error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("postgres driver: %w", err)
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", target)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, func() { _, _ = m.Close() }, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
