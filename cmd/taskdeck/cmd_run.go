package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/artifacts"
	"github.com/taskdeck/taskdeck/internal/catalog"
	"github.com/taskdeck/taskdeck/internal/coordinator"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/runner"
	"github.com/taskdeck/taskdeck/internal/timing"
)

var (
	runCatalogDir     string
	runOutputDir      string
	runID             string
	runAuto           bool
	runUploadURL      string
	runUploadContainer string
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <task-id | label>",
		Short: "Present a task and collect its result",
		Long: `Present a task from the catalog.

The participant is walked through the task's steps; wait steps show
simulated progress. The session's result and event log are written to
a per-run directory under the output root.`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}

	cmd.Flags().StringVar(&runCatalogDir, "catalog", "catalog", "Catalog directory")
	cmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", coordinator.DefaultOutputRoot(), "Root directory for session artifacts")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run identifier (default: generated)")
	cmd.Flags().BoolVar(&runAuto, "auto", false, "Run without interaction, answering questions with empty values")
	cmd.Flags().StringVar(&runUploadURL, "upload-url", "", "Azure Blob service URL to upload results to")
	cmd.Flags().StringVar(&runUploadContainer, "upload-container", "results", "Blob container for uploaded results (requires --upload-url)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(runCatalogDir)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	desc, ok := cat.Find(args[0])
	if !ok {
		return fmt.Errorf("no task %q in catalog (try 'taskdeck list')", args[0])
	}

	var presenter runner.Presenter
	if runAuto {
		presenter = &runner.Scripted{}
	} else {
		presenter = runner.NewConsole(os.Stdin, cmd.OutOrStdout())
	}

	opts := []coordinator.Option{coordinator.WithOutputRoot(runOutputDir)}
	if runUploadURL != "" {
		sink, err := artifacts.NewBlobSink(runUploadURL, runUploadContainer)
		if err != nil {
			return fmt.Errorf("configuring result upload: %w", err)
		}
		opts = append(opts, coordinator.WithBlobSink(sink))
	}

	coord := coordinator.New(runner.New(presenter), timing.Real{}, opts...)

	var result *models.TaskResult
	coord.SetResultCallback(func(r *models.TaskResult) {
		result = r
	})

	sess, err := coord.PresentTask(cmd.Context(), desc, runID)
	if err != nil {
		return err
	}
	<-sess.Done()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nSession %s ended: %s\n", sess.RunID(), result.Reason)
	fmt.Fprintf(out, "Artifacts: %s\n", sess.OutputDir())

	if result.Reason == models.FinishFailed {
		return &SessionFailedError{Message: fmt.Sprintf("session failed: %s", result.Err)}
	}
	return nil
}
