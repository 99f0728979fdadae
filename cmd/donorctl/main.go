package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blooddrive-backend/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "donorctl",
		Short: "donorctl - operator tools for the BloodDrive backend",
		Long: `donorctl talks directly to the BloodDrive database and services.
It bootstraps admins, imports and exports donors, and runs scheduled jobs on demand.`,
		SilenceUsage: true,
	}
	cli.AddConfigFlag(rootCmd)

	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.CreateAdminCmd())
	rootCmd.AddCommand(cli.ResetDonationsCmd())
	rootCmd.AddCommand(cli.RunJobCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
