package domain

// TaskStatus is the lifecycle state of a Timer task.
type TaskStatus string

const (
	TaskStatusActive TaskStatus = "ACTIVE"
	TaskStatusDone   TaskStatus = "DONE"
)

// TimerProject represents a project in the Timer service.
type TimerProject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"isPublic"`
	Billable bool   `json:"billable"`
}

// TimerTask represents a task in the Timer service. Task names carry the
// Tracker issue id as a leading bracketed prefix ("[42] Fix login"),
// with the literal name "Bloqueio" as the one exemption.
type TimerTask struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      TaskStatus `json:"status"`
	AssigneeIDs []string   `json:"assigneeIds"`
	Description string     `json:"description,omitempty"`
}

// TaskFields carries the writable fields for Timer task creation and
// update calls.
type TaskFields struct {
	Name        string     `json:"name"`
	Status      TaskStatus `json:"status"`
	AssigneeIDs []string   `json:"assigneeIds"`
	Description string     `json:"description,omitempty"`
}

// HasAssignee returns true if the given user id is among the task assignees.
func (t TimerTask) HasAssignee(userID string) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}
