package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scheduler-assistant/internal/repository"
	"scheduler-assistant/internal/service"
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a JSON or YAML schedule into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := service.DecodeSchedule(f, scheduleFormat(path))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				events, problems := service.NewImportService(nil, nil, a.log).Validate(items)
				printImport(out, len(items), len(events), problems)
				return nil
			}

			db, err := repository.NewDB(a.cfg.DatabaseURL, a.log)
			if err != nil {
				return fmt.Errorf("db: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			result, err := service.NewImportService(repository.NewEventRepository(db), nil, a.log).Import(cmd.Context(), items)
			if err != nil {
				return err
			}
			printImport(out, result.TotalReceived, result.TotalImported, result.Errors)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing anything")
	return cmd
}

func scheduleFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func printImport(w io.Writer, received, imported int, problems []service.ImportError) {
	fmt.Fprintf(w, "received: %d, imported: %d, errors: %d\n", received, imported, len(problems))
	for _, p := range problems {
		fmt.Fprintf(w, "  #%d %q: %s\n", p.Index, p.Title, p.Error)
	}
}
