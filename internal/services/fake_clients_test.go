package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"tracksync/internal/domain"
	"tracksync/internal/errors"
)

// fakeTracker is an in-memory TrackerClient for engine tests.
type fakeTracker struct {
	issues         []domain.Issue
	recorded       []domain.TrackerTimeEntry
	createdEntries []domain.TrackerTimeEntry
	rejectConflict bool
	createErr      error
	nextEntryID    int
}

func (f *fakeTracker) ListIssuesSince(_ context.Context, cutoff time.Time) ([]domain.Issue, error) {
	return f.issues, nil
}

func (f *fakeTracker) FindIssueBySubject(_ context.Context, subject string) (*domain.Issue, error) {
	for _, issue := range f.issues {
		if issue.Subject == subject {
			return &issue, nil
		}
	}
	return nil, nil
}

func (f *fakeTracker) ProjectIDForIssue(_ context.Context, issueID string) (int, error) {
	id, err := strconv.Atoi(issueID)
	if err != nil {
		return 0, errors.NewValidationError("issue id must be numeric", err)
	}
	for _, issue := range f.issues {
		if issue.ID == id {
			return issue.Project.ID, nil
		}
	}
	return 0, errors.NewNotFoundError("issue", issueID)
}

func (f *fakeTracker) IssueExists(_ context.Context, issueID string) (bool, error) {
	id, err := strconv.Atoi(issueID)
	if err != nil {
		return false, nil
	}
	for _, issue := range f.issues {
		if issue.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTracker) ProjectExists(_ context.Context, projectID int) (bool, error) {
	for _, issue := range f.issues {
		if issue.Project.ID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTracker) ListRecentTimeEntries(_ context.Context, from, to time.Time) ([]domain.TrackerTimeEntry, error) {
	return f.recorded, nil
}

func (f *fakeTracker) CreateTimeEntry(_ context.Context, issueID string, hours float64, comments string, spentOn time.Time) (*domain.TrackerTimeEntry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.rejectConflict {
		return nil, errors.NewConflictError("time entry", issueID)
	}
	id, err := strconv.Atoi(issueID)
	if err != nil {
		return nil, errors.NewValidationError("issue id must be numeric", err)
	}
	f.nextEntryID++
	entry := domain.TrackerTimeEntry{
		ID:       f.nextEntryID,
		IssueID:  id,
		Hours:    hours,
		Comments: comments,
		SpentOn:  spentOn,
	}
	f.createdEntries = append(f.createdEntries, entry)
	return &entry, nil
}

// fakeTimer is an in-memory TimerClient for engine tests.
type fakeTimer struct {
	workspaceName string
	userEmail     string
	userID        string

	projects []domain.TimerProject
	tasks    map[string][]domain.TimerTask // projectID -> tasks
	entries  []domain.TimerTimeEntry

	nextID       int
	taskUpdates  int
	listTaskHits int
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{
		workspaceName: "Turia",
		userEmail:     "dev@example.com",
		userID:        "user-1",
		tasks:         make(map[string][]domain.TimerTask),
	}
}

func (f *fakeTimer) ResolveWorkspace(_ context.Context, name string) (string, error) {
	if name != f.workspaceName {
		return "", errors.NewNotFoundError("workspace", name)
	}
	return "ws-1", nil
}

func (f *fakeTimer) ResolveUserID(_ context.Context, email string) (string, error) {
	if email != f.userEmail {
		return "", errors.NewNotFoundError("user", email)
	}
	return f.userID, nil
}

func (f *fakeTimer) FindProjectByName(_ context.Context, name string) (*domain.TimerProject, error) {
	for _, project := range f.projects {
		if project.Name == name {
			return &project, nil
		}
	}
	return nil, nil
}

func (f *fakeTimer) CreateProject(_ context.Context, name string) (*domain.TimerProject, error) {
	f.nextID++
	project := domain.TimerProject{ID: "proj-" + strconv.Itoa(f.nextID), Name: name}
	f.projects = append(f.projects, project)
	return &project, nil
}

func (f *fakeTimer) ListTasks(_ context.Context, projectID string) ([]domain.TimerTask, error) {
	f.listTaskHits++
	return f.tasks[projectID], nil
}

func (f *fakeTimer) GetTask(_ context.Context, projectID, taskID string) (*domain.TimerTask, error) {
	for _, task := range f.tasks[projectID] {
		if task.ID == taskID {
			return &task, nil
		}
	}
	return nil, nil
}

func (f *fakeTimer) CreateTask(_ context.Context, projectID string, fields domain.TaskFields) (*domain.TimerTask, error) {
	f.nextID++
	task := domain.TimerTask{
		ID:          "task-" + strconv.Itoa(f.nextID),
		Name:        fields.Name,
		Status:      fields.Status,
		AssigneeIDs: fields.AssigneeIDs,
		Description: fields.Description,
	}
	f.tasks[projectID] = append(f.tasks[projectID], task)
	return &task, nil
}

func (f *fakeTimer) UpdateTask(_ context.Context, projectID, taskID string, fields domain.TaskFields) error {
	for i, task := range f.tasks[projectID] {
		if task.ID == taskID {
			f.tasks[projectID][i] = domain.TimerTask{
				ID:          taskID,
				Name:        fields.Name,
				Status:      fields.Status,
				AssigneeIDs: fields.AssigneeIDs,
				Description: fields.Description,
			}
			f.taskUpdates++
			return nil
		}
	}
	return errors.NewNotFoundError("task", taskID)
}

func (f *fakeTimer) ListTimeEntriesForUser(_ context.Context, userID string, since time.Time) ([]domain.TimerTimeEntry, error) {
	return f.entries, nil
}

// taskNames returns the task names for a project, for assertions.
func (f *fakeTimer) taskNames(projectID string) []string {
	names := make([]string, 0, len(f.tasks[projectID]))
	for _, task := range f.tasks[projectID] {
		names = append(names, task.Name)
	}
	return names
}

func (f *fakeTimer) projectByName(name string) *domain.TimerProject {
	for _, project := range f.projects {
		if strings.EqualFold(project.Name, name) {
			return &project
		}
	}
	return nil
}
