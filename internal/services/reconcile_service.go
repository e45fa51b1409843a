package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"tracksync/internal/domain"
	"tracksync/internal/errors"
	"tracksync/internal/logging"
	"tracksync/internal/taskname"
	"tracksync/internal/validation"
)

// BlockedTaskName is the one task name exempt from issue-id prefixing
// and from update comparisons: it is created when absent and never
// diffed afterwards.
const BlockedTaskName = "Bloqueio"

// Settings holds the engine's reconciliation knobs
type Settings struct {
	WorkspaceName string
	UserEmail     string
	CutoffDays    int
	LookbackDays  int
	VerifiedTTL   time.Duration
}

// reconciliationEngine implements the Engine interface. It is strictly
// sequential: one pass processes issues and entries one at a time, and
// the only state shared across runs is the verified-task cache.
type reconciliationEngine struct {
	tracker        TrackerClient
	timer          TimerClient
	settings       Settings
	verified       *VerifiedTaskCache
	entryValidator *validation.TimeEntryValidator
	log            *logging.Logger
	now            func() time.Time

	// userID is resolved once per run before any mutation
	userID string
}

// NewReconciliationEngine creates a new Engine with injected clients
func NewReconciliationEngine(tracker TrackerClient, timer TimerClient, settings Settings) Engine {
	return &reconciliationEngine{
		tracker:        tracker,
		timer:          timer,
		settings:       settings,
		verified:       NewVerifiedTaskCache(settings.VerifiedTTL),
		entryValidator: validation.NewTimeEntryValidator(),
		log:            logging.Named("engine"),
		now:            time.Now,
	}
}

// Run executes one reconciliation pass. Workspace and user resolution
// happen first and are fatal on failure, before any mutation occurs.
func (e *reconciliationEngine) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if _, err := e.timer.ResolveWorkspace(ctx, e.settings.WorkspaceName); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeNotFound, "cannot start reconciliation without a workspace")
	}

	userID, err := e.timer.ResolveUserID(ctx, e.settings.UserEmail)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeNotFound, "cannot start reconciliation without a user")
	}
	e.userID = userID

	report := &Report{}
	if !opts.EntriesOnly {
		report.Projects, err = e.syncProjectsAndTasks(ctx)
		if err != nil {
			return report, err
		}
	}
	if !opts.ProjectsOnly {
		report.Entries, err = e.syncTimeEntries(ctx)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// syncProjectsAndTasks mirrors Tracker issues into Timer projects and
// tasks. Failures are isolated per issue: one bad issue never aborts
// the batch.
func (e *reconciliationEngine) syncProjectsAndTasks(ctx context.Context) (*ProjectSyncReport, error) {
	report := &ProjectSyncReport{}
	cutoff := e.now().AddDate(0, 0, -e.settings.CutoffDays)

	issues, err := e.tracker.ListIssuesSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	// Per-run cache, discarded with the pass
	projects := make(map[string]*domain.TimerProject)

	for _, issue := range issues {
		report.IssuesSeen++

		if !issue.IsValid() {
			e.log.Warn().Int("issue_id", issue.ID).Msg("issue missing subject or project, skipped")
			report.IssuesSkipped++
			continue
		}

		project, created, err := e.ensureProject(ctx, projects, issue.Project.Name)
		if err != nil {
			e.log.Error().Err(err).Str("project", issue.Project.Name).Int("issue_id", issue.ID).
				Msg("could not resolve or create project, issue skipped")
			report.IssuesSkipped++
			continue
		}
		if created {
			report.ProjectsCreated++
		}

		if err := e.ensureTask(ctx, project, issue, report); err != nil {
			e.log.Error().Err(err).Int("issue_id", issue.ID).Str("subject", issue.Subject).
				Msg("could not reconcile task, issue skipped")
			report.IssuesSkipped++
		}
	}

	e.log.Info().
		Int("issues", report.IssuesSeen).
		Int("projects_created", report.ProjectsCreated).
		Int("tasks_created", report.TasksCreated).
		Int("tasks_updated", report.TasksUpdated).
		Int("skipped", report.IssuesSkipped).
		Msg("project and task sync finished")
	return report, nil
}

// ensureProject resolves a Timer project by exact name, creating it when
// absent, through the per-run cache.
func (e *reconciliationEngine) ensureProject(ctx context.Context, cache map[string]*domain.TimerProject, name string) (*domain.TimerProject, bool, error) {
	if project, ok := cache[name]; ok {
		return project, false, nil
	}

	project, err := e.timer.FindProjectByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if project != nil {
		cache[name] = project
		return project, false, nil
	}

	e.log.Info().Str("project", name).Msg("project not found in timer, creating")
	project, err = e.timer.CreateProject(ctx, name)
	if err != nil {
		return nil, false, err
	}
	cache[name] = project
	return project, true, nil
}

// ensureTask creates or refreshes the Timer task for an issue. The
// composed name carries the issue id; "Bloqueio" is created bare and
// never updated.
func (e *reconciliationEngine) ensureTask(ctx context.Context, project *domain.TimerProject, issue domain.Issue, report *ProjectSyncReport) error {
	blocked := issue.Subject == BlockedTaskName
	composed := taskname.Encode(issue.ID, issue.Subject)
	if blocked {
		composed = BlockedTaskName
	}

	cacheKey := project.ID + "/" + composed
	if e.verified.Verified(cacheKey) {
		return nil
	}

	tasks, err := e.timer.ListTasks(ctx, project.ID)
	if err != nil {
		return err
	}

	match := findTaskByStrippedName(tasks, composed)
	if match == nil {
		fields := e.desiredFields(issue, composed)
		if _, err := e.timer.CreateTask(ctx, project.ID, fields); err != nil {
			return err
		}
		e.log.Info().Str("task", composed).Str("project", project.Name).
			Str("assignee", issue.AssigneeName()).Msg("task created")
		report.TasksCreated++
	} else if !blocked {
		if fields, stale := e.taskNeedsUpdate(match, issue, composed); stale {
			if err := e.timer.UpdateTask(ctx, project.ID, match.ID, fields); err != nil {
				return err
			}
			e.log.Info().Str("task", composed).Str("task_id", match.ID).Msg("task updated")
			report.TasksUpdated++
		}
	}

	e.verified.Mark(cacheKey)
	return nil
}

// findTaskByStrippedName matches tasks by their name with any leading
// issue-id bracket removed, case-insensitively.
func findTaskByStrippedName(tasks []domain.TimerTask, composed string) *domain.TimerTask {
	want := strings.ToLower(taskname.StripIssueID(composed))
	for i := range tasks {
		if strings.ToLower(taskname.StripIssueID(tasks[i].Name)) == want {
			return &tasks[i]
		}
	}
	return nil
}

func (e *reconciliationEngine) desiredFields(issue domain.Issue, composed string) domain.TaskFields {
	return domain.TaskFields{
		Name:        composed,
		Status:      StatusForIssue(issue.Status),
		AssigneeIDs: []string{e.userID},
		Description: issue.Description,
	}
}

// taskNeedsUpdate diffs the existing task against the issue and returns
// the replacement fields when any of name, description, assignee or
// status differ.
func (e *reconciliationEngine) taskNeedsUpdate(existing *domain.TimerTask, issue domain.Issue, composed string) (domain.TaskFields, bool) {
	desired := e.desiredFields(issue, composed)

	stale := existing.Name != desired.Name ||
		existing.Description != desired.Description ||
		!existing.HasAssignee(e.userID) ||
		existing.Status != desired.Status
	return desired, stale
}

// syncTimeEntries mirrors Timer time entries into Tracker time entries,
// creating each at most once. Per-entry failures are isolated.
func (e *reconciliationEngine) syncTimeEntries(ctx context.Context) (*EntrySyncReport, error) {
	report := &EntrySyncReport{}
	now := e.now()
	since := now.AddDate(0, 0, -e.settings.LookbackDays)

	entries, err := e.timer.ListTimeEntriesForUser(ctx, e.userID, since)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		e.log.Info().Msg("no timer entries in the lookback window, nothing to sync")
		return report, nil
	}

	recorded, err := e.tracker.ListRecentTimeEntries(ctx, since, now)
	if err != nil {
		return nil, err
	}

	// Lowercased issue ids already recorded, per-run
	existing := make(map[string]struct{}, len(recorded))
	for _, entry := range recorded {
		existing[strings.ToLower(strconv.Itoa(entry.IssueID))] = struct{}{}
	}

	for _, entry := range entries {
		report.EntriesSeen++
		e.syncOneEntry(ctx, entry, existing, report)
	}

	for _, invalid := range report.Invalid {
		e.log.Warn().Str("entry_id", invalid.EntryID).Str("task_id", invalid.TaskID).
			Str("reason", invalid.Reason).Msg("time entry could not be matched")
	}
	e.log.Info().
		Int("entries", report.EntriesSeen).
		Int("created", report.Created).
		Int("duplicates", report.SkippedDuplicate).
		Int("invalid", len(report.Invalid)).
		Int("failed", report.Failed).
		Msg("time entry sync finished")
	return report, nil
}

func (e *reconciliationEngine) syncOneEntry(ctx context.Context, entry domain.TimerTimeEntry, existing map[string]struct{}, report *EntrySyncReport) {
	if entry.TaskID == "" {
		report.Invalid = append(report.Invalid, InvalidEntry{EntryID: entry.ID, Reason: ReasonMissingTaskID})
		return
	}
	if err := e.entryValidator.Validate(entry); err != nil {
		e.log.Warn().Err(err).Str("entry_id", entry.ID).Msg("time entry failed validation")
		report.Invalid = append(report.Invalid, InvalidEntry{EntryID: entry.ID, TaskID: entry.TaskID, Reason: ReasonInvalidEntry})
		return
	}

	issueID, reason, err := e.resolveIssueID(ctx, entry)
	if err != nil {
		e.log.Error().Err(err).Str("entry_id", entry.ID).Msg("issue resolution failed")
		report.Failed++
		return
	}
	if reason != "" {
		report.Invalid = append(report.Invalid, InvalidEntry{EntryID: entry.ID, TaskID: entry.TaskID, Reason: reason})
		return
	}

	key := strings.ToLower(issueID)
	if _, done := existing[key]; done {
		report.SkippedDuplicate++
		return
	}

	hours, err := entry.Hours()
	if err != nil {
		report.Invalid = append(report.Invalid, InvalidEntry{EntryID: entry.ID, TaskID: entry.TaskID, Reason: ReasonInvalidEntry})
		return
	}

	created, err := e.tracker.CreateTimeEntry(ctx, issueID, hours, entry.Description, entry.SpentOn())
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeConflict) {
			e.log.Info().Str("issue_id", issueID).Msg("tracker rejected duplicate entry, treating as synced")
			existing[key] = struct{}{}
			report.SkippedDuplicate++
			return
		}
		e.log.Error().Err(err).Str("issue_id", issueID).Str("entry_id", entry.ID).Msg("could not create time entry")
		report.Failed++
		return
	}

	e.log.Info().Str("issue_id", issueID).Float64("hours", hours).
		Time("spent_on", created.SpentOn).Msg("time entry mirrored to tracker")
	existing[key] = struct{}{}
	report.Created++
	report.CreatedEntries = append(report.CreatedEntries, *created)
}

// resolveIssueID finds the Tracker issue an entry belongs to: decode the
// id from the task name, verify it resolves, and fall back to a subject
// lookup on the stripped name. An empty reason means success.
func (e *reconciliationEngine) resolveIssueID(ctx context.Context, entry domain.TimerTimeEntry) (string, string, error) {
	task, err := e.timer.GetTask(ctx, entry.ProjectID, entry.TaskID)
	if err != nil {
		return "", "", err
	}
	if task == nil {
		return "", ReasonTaskNotFound, nil
	}

	decoded := false
	if issueID, ok := taskname.Decode(task.Name); ok {
		decoded = true
		exists, err := e.tracker.IssueExists(ctx, issueID)
		if err != nil {
			return "", "", err
		}
		if exists {
			return issueID, "", nil
		}
		// A stale bracketed id falls through to the subject lookup
		e.log.Warn().Str("issue_id", issueID).Str("task", task.Name).
			Msg("decoded issue id does not resolve, trying subject lookup")
	}

	issue, err := e.tracker.FindIssueBySubject(ctx, taskname.StripIssueID(task.Name))
	if err != nil {
		return "", "", err
	}
	if issue == nil {
		if decoded {
			return "", ReasonIssueNotFound, nil
		}
		return "", ReasonNoIssueMatch, nil
	}
	return strconv.Itoa(issue.ID), "", nil
}
