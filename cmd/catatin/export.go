package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/naufalhakim/catatin/internal/export"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export expenses to CSV or JSON",
		Long: `Write your expenses to a file, category names included. The format is
inferred from the file extension (.csv or .json) unless --format is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}

	cmd.Flags().String("format", "", "output format: csv or json (default: from extension)")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		switch {
		case len(path) > 5 && path[len(path)-5:] == ".json":
			format = "json"
		default:
			format = "csv"
		}
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("unsupported format %q", format)
	}

	filter := service.ExpenseFilter{}
	if v, _ := cmd.Flags().GetString("start"); v != "" {
		t, err := time.Parse(model.DateLayout, v)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		filter.StartDate = &t
	}
	if v, _ := cmd.Flags().GetString("end"); v != "" {
		t, err := time.Parse(model.DateLayout, v)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		filter.EndDate = &t
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ownerID := localOwnerID()
	expenses, err := store.ListExpenses(ctx, ownerID, filter)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(expenses)+1,
		progressbar.OptionSetDescription("exporting"),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionClearOnFinish(),
	)
	_ = bar.Add(1) // category lookup counts as a step

	rows, err := export.BuildRows(ctx, store, ownerID, expenses)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	switch format {
	case "csv":
		if err := export.WriteCSV(file, rows); err != nil {
			return err
		}
	case "json":
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("writing json: %w", err)
		}
	}
	_ = bar.Add(len(expenses))
	_ = bar.Finish()

	cmd.Printf("Exported %d expense(s) to %s\n", len(rows), path)
	return nil
}
