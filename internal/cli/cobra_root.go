package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tracksync/internal/config"
	"tracksync/internal/services"
)

// EngineFactory builds a reconciliation engine from the resolved
// configuration. Injected so tests can substitute fakes.
type EngineFactory func(cfg *config.Config) (services.Engine, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd       *cobra.Command
	config    *config.Config
	newEngine EngineFactory
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(cfg *config.Config, newEngine EngineFactory) *RootCommand {
	root := &RootCommand{
		config:    cfg,
		newEngine: newEngine,
	}

	root.cmd = &cobra.Command{
		Use:   "tracksync",
		Short: "Reconcile tracker issues with timer projects and time entries",
		Long: `tracksync mirrors issues from the tracker into timer projects and tasks,
and mirrors timer time entries back into tracker time entries.

A reconciliation pass has two halves:
  1. Projects and tasks: every recent tracker issue gets a timer project
     named after its tracker project and a task named "[<id>] <subject>".
  2. Time entries: every timer entry in the lookback window is recorded
     against its tracker issue, at most once.

EXAMPLES:
  tracksync sync                           # Full reconciliation pass
  tracksync sync --projects-only           # Only mirror issues into tasks
  tracksync sync --entries-only            # Only mirror time entries
  tracksync sync --lookback-days 14        # Widen the entry window
  tracksync sync --csv entries.csv         # Export created entries

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > defaults

  Tracker Configuration:
    TS_TRACKER_URL                         Tracker API base URL (required)
    TS_TRACKER_API_KEY                     Tracker API key (required)
    TS_TRACKER_PAGE_SIZE                   Issue page size (default: 100)

  Timer Configuration:
    TS_TIMER_URL                           Timer API base URL (required)
    TS_TIMER_API_KEY                       Timer API key (required)
    TS_TIMER_WORKSPACE                     Timer workspace name (required)
    TS_TIMER_USER_EMAIL                    Timer user email (required)

  Sync Configuration:
    TS_SYNC_LOOKBACK_DAYS                  Entry lookback window in days (default: 7)
    TS_SYNC_CUTOFF_DAYS                    Issue cutoff window in days (default: 30)
    TS_SYNC_CSV_PATH                       CSV export path for created entries

  Retry Configuration:
    TS_RETRY_MAX_ATTEMPTS                  Attempts per remote call (default: 3)
    TS_RETRY_DELAY                         Delay between create retries (default: 5s)

  Application Configuration:
    TS_HTTP_TIMEOUT                        HTTP client timeout (default: 30s)
    TS_VERBOSE                             Enable verbose output (default: false)
    TS_LOG_LEVEL                           Log level (default: info)
    TS_LOG_FORMAT                          Log format, json or console (default: json)

GETTING HELP:
  tracksync [command] --help               # Get help for any specific command`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.getConfigFromFlags()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// ExecuteContext runs the root command with the given context
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.Int("lookback-days", 0, "Time entry lookback window in days (overrides TS_SYNC_LOOKBACK_DAYS)")
	flags.Int("cutoff-days", 0, "Issue cutoff window in days (overrides TS_SYNC_CUTOFF_DAYS)")
	flags.String("csv", "", "CSV export path for created entries (overrides TS_SYNC_CSV_PATH)")
	flags.Int("max-attempts", 0, "Attempts per remote call (overrides TS_RETRY_MAX_ATTEMPTS)")
	flags.Bool("verbose", false, "Enable verbose output (overrides TS_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass",
		Long: `Run one reconciliation pass between the tracker and the timer.

By default both halves run: issues become projects and tasks, then timer
entries become tracker time entries. Use --projects-only or
--entries-only to run a single half.

Examples:
  tracksync sync
  tracksync sync --projects-only
  tracksync sync --entries-only --lookback-days 14
  tracksync sync --csv created-entries.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A pass runs to completion; the only way to stop it early
			// is the interrupt handled by the signal-aware context.
			handler := NewSyncCommand(r.config, r.newEngine)
			handler.projectsOnly, _ = cmd.Flags().GetBool("projects-only")
			handler.entriesOnly, _ = cmd.Flags().GetBool("entries-only")
			return handler.Execute(cmd.Context(), cmd.OutOrStdout())
		},
	}
	syncCmd.Flags().Bool("projects-only", false, "Only mirror issues into projects and tasks")
	syncCmd.Flags().Bool("entries-only", false, "Only mirror time entries into the tracker")
	syncCmd.MarkFlagsMutuallyExclusive("projects-only", "entries-only")

	r.cmd.AddCommand(syncCmd)
}

// getConfigFromFlags updates the configuration with values from command-line flags
func (r *RootCommand) getConfigFromFlags() error {
	if r.config == nil {
		return fmt.Errorf("configuration not initialized")
	}

	flags := r.cmd.PersistentFlags()

	if lookback, _ := flags.GetInt("lookback-days"); lookback > 0 {
		r.config.Sync.LookbackDays = lookback
	}
	if cutoff, _ := flags.GetInt("cutoff-days"); cutoff > 0 {
		r.config.Sync.CutoffDays = cutoff
	}
	if csvPath, _ := flags.GetString("csv"); csvPath != "" {
		r.config.Sync.CSVPath = csvPath
	}
	if attempts, _ := flags.GetInt("max-attempts"); attempts > 0 {
		r.config.Retry.MaxAttempts = attempts
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		r.config.Application.Verbose = verbose
	}

	return r.config.Validate()
}
