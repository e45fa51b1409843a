package services

import (
	"context"
	"time"

	"tracksync/internal/domain"
)

// TrackerClient is the contract the engine needs from the issue tracker
type TrackerClient interface {
	// ListIssuesSince returns every issue created on or after the cutoff.
	// A failure here is batch-fatal: a partial list would corrupt
	// reconciliation decisions.
	ListIssuesSince(ctx context.Context, cutoff time.Time) ([]domain.Issue, error)

	// FindIssueBySubject returns the issue exactly matching the subject,
	// or nil when absent
	FindIssueBySubject(ctx context.Context, subject string) (*domain.Issue, error)

	// ProjectIDForIssue resolves the project an issue belongs to
	ProjectIDForIssue(ctx context.Context, issueID string) (int, error)

	// IssueExists reports whether an issue id resolves
	IssueExists(ctx context.Context, issueID string) (bool, error)

	// ProjectExists reports whether a project id resolves
	ProjectExists(ctx context.Context, projectID int) (bool, error)

	// ListRecentTimeEntries returns the time entries spent in the window
	ListRecentTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TrackerTimeEntry, error)

	// CreateTimeEntry records worked hours against an issue
	CreateTimeEntry(ctx context.Context, issueID string, hours float64, comments string, spentOn time.Time) (*domain.TrackerTimeEntry, error)
}

// TimerClient is the contract the engine needs from the time tracker.
// Mutating calls perform no deduplication of their own; the engine must
// check existence first.
type TimerClient interface {
	ResolveWorkspace(ctx context.Context, name string) (string, error)
	ResolveUserID(ctx context.Context, email string) (string, error)

	FindProjectByName(ctx context.Context, name string) (*domain.TimerProject, error)
	CreateProject(ctx context.Context, name string) (*domain.TimerProject, error)

	ListTasks(ctx context.Context, projectID string) ([]domain.TimerTask, error)
	GetTask(ctx context.Context, projectID, taskID string) (*domain.TimerTask, error)
	CreateTask(ctx context.Context, projectID string, fields domain.TaskFields) (*domain.TimerTask, error)
	UpdateTask(ctx context.Context, projectID, taskID string, fields domain.TaskFields) error

	ListTimeEntriesForUser(ctx context.Context, userID string, since time.Time) ([]domain.TimerTimeEntry, error)
}

// InvalidEntry describes a Timer time entry that could not be matched to
// a Tracker issue during a pass
type InvalidEntry struct {
	EntryID string `json:"entry_id"`
	TaskID  string `json:"task_id,omitempty"`
	Reason  string `json:"reason"`
}

// Invalid-entry reasons surfaced in the end-of-run summary
const (
	ReasonMissingTaskID = "entry has no task id"
	ReasonInvalidEntry  = "entry failed validation"
	ReasonTaskNotFound  = "task does not exist in the timer"
	ReasonNoIssueMatch  = "no tracker issue matches the task name"
	ReasonIssueNotFound = "decoded issue id does not exist in the tracker"
)

// ProjectSyncReport summarises one project/task sync pass
type ProjectSyncReport struct {
	IssuesSeen      int `json:"issues_seen"`
	IssuesSkipped   int `json:"issues_skipped"`
	ProjectsCreated int `json:"projects_created"`
	TasksCreated    int `json:"tasks_created"`
	TasksUpdated    int `json:"tasks_updated"`
}

// EntrySyncReport summarises one time-entry sync pass
type EntrySyncReport struct {
	EntriesSeen      int                       `json:"entries_seen"`
	Created          int                       `json:"created"`
	SkippedDuplicate int                       `json:"skipped_duplicate"`
	Failed           int                       `json:"failed"`
	Invalid          []InvalidEntry            `json:"invalid,omitempty"`
	CreatedEntries   []domain.TrackerTimeEntry `json:"created_entries,omitempty"`
}

// Report is the outcome of one full reconciliation pass
type Report struct {
	Projects *ProjectSyncReport `json:"projects,omitempty"`
	Entries  *EntrySyncReport   `json:"entries,omitempty"`
}

// RunOptions selects which halves of a pass to execute
type RunOptions struct {
	ProjectsOnly bool
	EntriesOnly  bool
}

// Engine runs reconciliation passes between the Tracker and the Timer
type Engine interface {
	Run(ctx context.Context, opts RunOptions) (*Report, error)
}
