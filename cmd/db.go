package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"saree-api/seed"
	"saree-api/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMigrated()
		if err != nil {
			return err
		}
		closeDB(db)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default admin, driver, catalog and settings (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMigrated()
		if err != nil {
			return err
		}
		defer closeDB(db)
		return wrap("seed", seed.Run(cmd.Context(), db, seedOptions()))
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild customer order counters from the orders table",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMigrated()
		if err != nil {
			return err
		}
		defer closeDB(db)
		n, err := services.NewStatsService(db, cfg.Location).RecomputeCustomers(cmd.Context())
		if err != nil {
			return wrap("recompute", err)
		}
		logrus.WithField("customers", n).Info("customer counters recomputed")
		return nil
	},
}

func seedOptions() seed.Options {
	return seed.Options{
		AdminEmail:     cfg.SeedAdminEmail,
		AdminPassword:  cfg.SeedAdminPassword,
		DriverPhone:    cfg.SeedDriverPhone,
		DriverPassword: cfg.SeedDriverPassword,
	}
}
