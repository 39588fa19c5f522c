package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taskdeck/taskdeck/internal/catalog"
	"github.com/taskdeck/taskdeck/internal/validation"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog-dir>",
		Short: "Validate a catalog directory against the schemas",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := args[0]
	out := cmd.OutOrStdout()

	indexPath := filepath.Join(dir, catalog.CatalogFileName)
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return fmt.Errorf("reading catalog index: %w", err)
	}

	problems := 0
	for _, msg := range validation.ValidateCatalogBytes(data) {
		fmt.Fprintf(out, "%s: %s\n", catalog.CatalogFileName, msg)
		problems++
	}

	// Task files are checked even when the index has problems, as long
	// as the references parse.
	var index struct {
		Sections []struct {
			Tasks []struct {
				File string `yaml:"file"`
			} `yaml:"tasks"`
		} `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &index); err == nil {
		for _, sec := range index.Sections {
			for _, entry := range sec.Tasks {
				taskData, err := os.ReadFile(filepath.Join(dir, entry.File))
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", entry.File, err)
					problems++
					continue
				}
				for _, msg := range validation.ValidateTaskBytes(taskData) {
					fmt.Fprintf(out, "%s: %s\n", entry.File, msg)
					problems++
				}
			}
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d validation problem(s) found", problems)
	}
	fmt.Fprintln(out, "Catalog is valid")
	return nil
}
