package timer

import (
	"time"

	"tracksync/internal/domain"
)

// Wire representations of the Timer REST payloads.

type workspaceJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userJSON struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type projectJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"isPublic"`
	Billable bool   `json:"billable"`
}

type taskJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	AssigneeIDs []string `json:"assigneeIds"`
	Description string   `json:"description,omitempty"`
}

type createProjectRequest struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"isPublic"`
	Billable bool   `json:"billable"`
}

type timeIntervalJSON struct {
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Duration string     `json:"duration,omitempty"`
}

type timeEntryJSON struct {
	ID           string           `json:"id"`
	TaskID       string           `json:"taskId"`
	ProjectID    string           `json:"projectId"`
	Description  string           `json:"description"`
	TimeInterval timeIntervalJSON `json:"timeInterval"`
}

func (p projectJSON) toDomain() domain.TimerProject {
	return domain.TimerProject{
		ID:       p.ID,
		Name:     p.Name,
		IsPublic: p.IsPublic,
		Billable: p.Billable,
	}
}

func (t taskJSON) toDomain() domain.TimerTask {
	return domain.TimerTask{
		ID:          t.ID,
		Name:        t.Name,
		Status:      domain.TaskStatus(t.Status),
		AssigneeIDs: t.AssigneeIDs,
		Description: t.Description,
	}
}

func (e timeEntryJSON) toDomain() domain.TimerTimeEntry {
	return domain.TimerTimeEntry{
		ID:          e.ID,
		TaskID:      e.TaskID,
		ProjectID:   e.ProjectID,
		Description: e.Description,
		Interval: domain.TimeInterval{
			Start:    e.TimeInterval.Start,
			End:      e.TimeInterval.End,
			Duration: e.TimeInterval.Duration,
		},
	}
}
