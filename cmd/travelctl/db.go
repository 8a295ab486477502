package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	intconfig "travelagency/internal/config"
	intdb "travelagency/internal/db"
)

type migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
	Close() error
}

var openMigrator = func() (migrator, error) {
	return intdb.OpenMigrator(intconfig.LoadEnv().DB.MySQLDSN())
}

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(mg migrator) error {
					if err := mg.Up(); err != nil {
						return fmt.Errorf("migrate up: %w", err)
					}
					return printVersion(cmd, mg)
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps, err := parseSteps(args)
				if err != nil {
					return err
				}
				return withMigrator(func(mg migrator) error {
					if err := mg.Down(steps); err != nil {
						return fmt.Errorf("migrate down %d: %w", steps, err)
					}
					return printVersion(cmd, mg)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied schema version and embedded migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(mg migrator) error {
					if err := printVersion(cmd, mg); err != nil {
						return err
					}
					files, err := intdb.MigrationFiles()
					if err != nil {
						return err
					}
					for _, f := range files {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func withMigrator(fn func(migrator) error) error {
	mg, err := openMigrator()
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func printVersion(cmd *cobra.Command, mg migrator) error {
	v, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return n, nil
}
