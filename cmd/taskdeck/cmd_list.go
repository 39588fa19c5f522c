package main

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/catalog"
)

var listCatalogDir string

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks available in the catalog",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().StringVar(&listCatalogDir, "catalog", "catalog", "Catalog directory")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(listCatalogDir)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	// Column width from the widest label, runewidth so wide glyphs
	// line up.
	width := 0
	for _, sec := range cat.Sections {
		for _, d := range sec.Entries {
			if w := runewidth.StringWidth(d.Label); w > width {
				width = w
			}
		}
	}

	out := cmd.OutOrStdout()
	for _, sec := range cat.Sections {
		fmt.Fprintf(out, "%s\n", sec.Title)
		for _, d := range sec.Entries {
			fmt.Fprintf(out, "  %s  (%s)\n", runewidth.FillRight(d.Label, width), d.TaskID)
		}
		fmt.Fprintln(out)
	}
	return nil
}
