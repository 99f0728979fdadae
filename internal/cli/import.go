package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/service"
	"blooddrive-backend/internal/utils"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

// columnAliases maps normalized header text to donor fields. Unknown columns
// are ignored so an exported workbook can be imported back.
var columnAliases = map[string]string{
	"name":               "name",
	"donor_name":         "name",
	"email":              "email",
	"phone":              "phone",
	"contact":            "phone",
	"age":                "age",
	"weight":             "weight_kg",
	"weight_kg":          "weight_kg",
	"blood_type":         "blood_type",
	"blood_group":        "blood_type",
	"city":               "city",
	"address":            "address",
	"latitude":           "latitude",
	"lat":                "latitude",
	"longitude":          "longitude",
	"lng":                "longitude",
	"last_donation":      "last_donation_date",
	"last_donation_date": "last_donation_date",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// ParseDonorSheet reads donors from a sheet whose first row is a header.
// Blank rows are skipped. Cell-level parse failures are collected into a
// *service.BulkError keyed by spreadsheet row number.
func ParseDonorSheet(f *excelize.File, sheet string) ([]*domain.Donor, error) {
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, domain.NewValidationError("sheet", "%q is empty", sheet)
	}

	cols := map[int]string{}
	for i, h := range rows[0] {
		if field, ok := columnAliases[normalizeHeader(h)]; ok {
			cols[i] = field
		}
	}
	hasName := false
	for _, field := range cols {
		hasName = hasName || field == "name"
	}
	if !hasName {
		return nil, domain.NewValidationError("sheet", "header row has no name column")
	}

	var (
		donors  []*domain.Donor
		bulkErr service.BulkError
	)
	for r, row := range rows[1:] {
		sheetRow := r + 2
		if blankRow(row) {
			continue
		}
		d := &domain.Donor{}
		for i, cell := range row {
			field, ok := cols[i]
			if !ok {
				continue
			}
			if err := setDonorField(d, field, strings.TrimSpace(cell)); err != nil {
				bulkErr.Rows = append(bulkErr.Rows, service.RowError{Row: sheetRow, Err: err})
			}
		}
		donors = append(donors, d)
	}
	if len(bulkErr.Rows) > 0 {
		return nil, &bulkErr
	}
	return donors, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func setDonorField(d *domain.Donor, field, v string) error {
	if v == "" {
		return nil
	}
	switch field {
	case "name":
		d.Name = v
	case "email":
		d.Email = v
	case "phone":
		d.Phone = v
	case "blood_type":
		d.BloodType = domain.BloodType(v)
	case "city":
		d.City = v
	case "address":
		d.Address = v
	case "age":
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.NewValidationError("age", "must be a whole number, got %q", v)
		}
		d.Age = n
	case "weight_kg", "latitude", "longitude":
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.NewValidationError(field, "must be a number, got %q", v)
		}
		switch field {
		case "weight_kg":
			d.WeightKg = &x
		case "latitude":
			d.Latitude = &x
		default:
			d.Longitude = &x
		}
	case "last_donation_date":
		t, err := utils.ParseDate(v)
		if err != nil {
			return domain.NewValidationError(field, "must be YYYY-MM-DD, got %q", v)
		}
		t = t.UTC()
		d.LastDonationDate = &t
	}
	return nil
}

// ImportCmd bulk-loads donors from an XLSX workbook. The whole file is
// rejected when any row is invalid.
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-xlsx [file]",
		Short: "Import donors from an Excel workbook",
		Long: `Reads donors from the first sheet (or --sheet) of an .xlsx file.
The first row must be a header; recognised columns are name, email, phone,
age, weight, blood type, city, address, latitude, longitude and last donation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, _ := cmd.Flags().GetString("sheet")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			f, err := excelize.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			donors, err := ParseDonorSheet(f, sheet)
			if err != nil {
				printRowErrors(cmd, err, "row")
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Parsed %d donors from %s\n", okMark, len(donors), args[0])
			if dryRun {
				return nil
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			if err := a.Donors.BulkCreateDonors(cmd.Context(), operator, donors); err != nil {
				printRowErrors(cmd, err, "donor")
				return fmt.Errorf("import rejected: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %d donors in %s\n", okMark, len(donors), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().String("sheet", "", "Sheet name (default: active sheet)")
	cmd.Flags().Bool("dry-run", false, "Parse and report without writing")
	return cmd
}

// printRowErrors lists each bad row. Parse errors carry spreadsheet rows;
// service errors carry the 1-based position among imported donors.
func printRowErrors(cmd *cobra.Command, err error, label string) {
	var bulkErr *service.BulkError
	if !errors.As(err, &bulkErr) {
		return
	}
	for _, re := range bulkErr.Rows {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %d: %v\n", failMark, label, re.Row, re.Err)
	}
}
