package cli

import (
	"context"
	"fmt"
	"io"

	"tracksync/internal/config"
	"tracksync/internal/export"
	"tracksync/internal/services"
)

// SyncCommand handles the sync command
type SyncCommand struct {
	config    *config.Config
	newEngine EngineFactory

	projectsOnly bool
	entriesOnly  bool
}

// NewSyncCommand creates a new sync command handler
func NewSyncCommand(cfg *config.Config, newEngine EngineFactory) *SyncCommand {
	return &SyncCommand{config: cfg, newEngine: newEngine}
}

// Execute runs one reconciliation pass and prints its summary
func (c *SyncCommand) Execute(ctx context.Context, out io.Writer) error {
	engine, err := c.newEngine(c.config)
	if err != nil {
		return fmt.Errorf("failed to build reconciliation engine: %w", err)
	}

	report, err := engine.Run(ctx, services.RunOptions{
		ProjectsOnly: c.projectsOnly,
		EntriesOnly:  c.entriesOnly,
	})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	c.printSummary(out, report)

	if c.config.Sync.CSVPath != "" && report.Entries != nil {
		if err := export.WriteTimeEntriesFile(c.config.Sync.CSVPath, report.Entries.CreatedEntries); err != nil {
			return fmt.Errorf("failed to export created entries: %w", err)
		}
		fmt.Fprintf(out, "Created entries exported to %s\n", c.config.Sync.CSVPath)
	}

	return nil
}

// printSummary writes a human-readable pass summary
func (c *SyncCommand) printSummary(out io.Writer, report *services.Report) {
	if report.Projects != nil {
		p := report.Projects
		fmt.Fprintf(out, "Projects and tasks: %d issues seen, %d projects created, %d tasks created, %d tasks updated, %d issues skipped\n",
			p.IssuesSeen, p.ProjectsCreated, p.TasksCreated, p.TasksUpdated, p.IssuesSkipped)
	}
	if report.Entries != nil {
		e := report.Entries
		fmt.Fprintf(out, "Time entries: %d seen, %d created, %d duplicates skipped, %d invalid, %d failed\n",
			e.EntriesSeen, e.Created, e.SkippedDuplicate, len(e.Invalid), e.Failed)
		for _, invalid := range e.Invalid {
			fmt.Fprintf(out, "  unmatched entry %s: %s\n", invalid.EntryID, invalid.Reason)
		}
	}
}
