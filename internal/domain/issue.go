package domain

// ProjectRef identifies the Tracker project an issue belongs to.
type ProjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Issue represents a Tracker work item in the domain model.
// Issues are owned by the Tracker and read-only to the engine.
type Issue struct {
	ID          int        `json:"id"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Project     ProjectRef `json:"project"`
	Assignee    *string    `json:"assignee,omitempty"`
}

// IsValid checks if the issue has the data the engine needs.
func (i Issue) IsValid() bool {
	return i.ID > 0 && i.Subject != "" && i.Project.Name != ""
}

// AssigneeName returns the assignee display name, or empty when unassigned.
func (i Issue) AssigneeName() string {
	if i.Assignee == nil {
		return ""
	}
	return *i.Assignee
}
