package cli

import (
	"fmt"
	"os"
	"strconv"

	"blooddrive-backend/internal/repository"
	"blooddrive-backend/internal/service"

	"github.com/spf13/cobra"
)

// CreateAdminCmd bootstraps an administrator account.
func CreateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("BLOODDRIVE_ADMIN_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("password is required\nHint: use --password or set BLOODDRIVE_ADMIN_PASSWORD")
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.Auth.CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created admin %d: %s <%s>\n", okMark, user.ID, user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().String("name", "Administrator", "Display name")
	cmd.Flags().String("email", "", "Login email")
	cmd.Flags().String("password", "", "Password (or BLOODDRIVE_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// ResetDonationsCmd clears a donor's donation history.
func ResetDonationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-donations [donor-id]",
		Short: "Delete every donation of a donor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid donor id %q", args[0])
			}
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return fmt.Errorf("refusing to delete donations without --yes")
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Donations.ResetDonations(cmd.Context(), operator, int32(id))
			if err != nil {
				return fmt.Errorf("failed to reset donations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %d donations of donor %d\n", okMark, n, id)
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm the deletion")
	return cmd
}

// RunJobCmd executes one scheduled job immediately.
func RunJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-job [name]",
		Short: "Run a scheduled job once",
		Long:  "Runs one of: all, database-health-probe, eligibility-reminders, purge-expired-exports, warm-dashboard-cache.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			jr := a.JobRunner()
			if err := jr.Run(args[0]); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", failMark, err)
				for _, name := range jr.JobNames() {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", name)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Job %s finished (see logs for details)\n", okMark, args[0])
			return nil
		},
	}
}

// ExportCmd writes the donor workbook to a local file.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export donors to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			donors, err := a.Store.DonorRepository.List(ctx, repository.DonorQuery{})
			if err != nil {
				return fmt.Errorf("failed to list donors: %w", err)
			}
			ids := make([]int32, len(donors))
			for i, d := range donors {
				ids[i] = d.ID
			}
			counts, err := a.Store.DonationRepository.CountByDonor(ctx, ids)
			if err != nil {
				return fmt.Errorf("failed to count donations: %w", err)
			}

			f, err := service.BuildDonorWorkbook(donors, counts)
			if err != nil {
				return fmt.Errorf("failed to build workbook: %w", err)
			}
			defer f.Close()
			if err := f.SaveAs(out); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			if len(donors) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s No donors registered, wrote header only\n", warnMark)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d donors to %s\n", okMark, len(donors), out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "donors.xlsx", "Output file")
	return cmd
}
