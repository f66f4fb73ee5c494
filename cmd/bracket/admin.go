package main

import (
	"fmt"
	"log"

	"bracket/config"
	"bracket/engine"
	"bracket/store"

	"github.com/spf13/cobra"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and seed the cast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(root.configPath)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Printf("database ready (%s)", db.Driver())
			return nil
		},
	}
}

func newDeleteUserCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <email>",
		Short: "Delete an account and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB(root.configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			eng := engine.New(engine.Config{AppConfig: cfg, DB: db, LogFunc: log.Printf})
			if err := eng.DeleteAccount(args[0]); err != nil {
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

// openDB loads config and opens the database, which applies migrations.
func openDB(configPath string) (*config.Config, *store.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := store.Open(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}
